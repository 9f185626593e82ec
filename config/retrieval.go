package config

import (
	"fmt"
	"strings"
)

// Distance names the pgvector operator used for nearest-neighbour ordering.
type Distance string

const (
	DistanceL2           Distance = "l2"
	DistanceCosine       Distance = "cosine"
	DistanceInnerProduct Distance = "inner_product"
)

// Source names the table(s) retrieval reads from. The default, all, covers both
// uploaded chunks and the seeded corpus.
type Source string

const (
	SourceChunks Source = "chunks"
	SourceSeed   Source = "seed"
	SourceAll    Source = "all"
)

// RetrievalConfig controls nearest-neighbour lookups.
type RetrievalConfig struct {
	TopK     int      `mapstructure:"top_k"`
	Distance Distance `mapstructure:"distance"`
	Source   Source   `mapstructure:"source"`
}

// Normalize trims and lower-cases enum values and fills defaults.
func (c RetrievalConfig) Normalize() RetrievalConfig {
	norm := c
	norm.Distance = Distance(strings.ToLower(strings.TrimSpace(string(norm.Distance))))
	if norm.Distance == "" {
		norm.Distance = DistanceL2
	}
	norm.Source = Source(strings.ToLower(strings.TrimSpace(string(norm.Source))))
	if norm.Source == "" {
		norm.Source = SourceAll
	}
	if norm.TopK == 0 {
		norm.TopK = 5
	}
	return norm
}

// Validate ensures the operator, source and k are usable.
func (c RetrievalConfig) Validate() error {
	norm := c.Normalize()
	if norm.TopK < 0 {
		return fmt.Errorf("retrieval.top_k must be > 0")
	}
	switch norm.Distance {
	case DistanceL2, DistanceCosine, DistanceInnerProduct:
	default:
		return fmt.Errorf("retrieval.distance %q unknown (l2, cosine, inner_product)", c.Distance)
	}
	switch norm.Source {
	case SourceChunks, SourceSeed, SourceAll:
	default:
		return fmt.Errorf("retrieval.source %q unknown (chunks, seed, all)", c.Source)
	}
	return nil
}
