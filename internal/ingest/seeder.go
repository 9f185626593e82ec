package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// SeedStore is the persistence the seeder needs.
type SeedStore interface {
	InsertSeedDocument(ctx context.Context, content string, vec []float32) (int64, error)
	CountSeedDocuments(ctx context.Context) (int, error)
}

// SeedEmbedder embeds one text at a time.
type SeedEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Seeder struct {
	Store    SeedStore
	Embedder SeedEmbedder
	// SkipIfSeeded leaves a non-empty seed table untouched.
	SkipIfSeeded bool
	Logger       *log.Logger
}

// SeedResult reports what Seed did.
type SeedResult struct {
	Inserted int
	Skipped  bool
}

// Seed embeds and stores each text as one seed row, in order. Blank entries are
// ignored. It stops at the first failure; rows already written stay.
func (s *Seeder) Seed(ctx context.Context, docs []string) (SeedResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[SEED] ", log.LstdFlags)
	}
	if s.SkipIfSeeded {
		n, err := s.Store.CountSeedDocuments(ctx)
		if err != nil {
			return SeedResult{}, err
		}
		if n > 0 {
			logger.Printf("seed table already holds %d rows; skipping", n)
			return SeedResult{Skipped: true}, nil
		}
	}

	var res SeedResult
	for i, doc := range docs {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		vec, err := s.Embedder.Embed(ctx, doc)
		if err != nil {
			return res, fmt.Errorf("seed document %d: %w", i, err)
		}
		if _, err := s.Store.InsertSeedDocument(ctx, doc, vec); err != nil {
			return res, fmt.Errorf("seed document %d: %w", i, err)
		}
		res.Inserted++
	}
	logger.Printf("seed complete: %d documents", res.Inserted)
	return res, nil
}
