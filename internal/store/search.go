package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mohammad-safakhou/opticqa/config"
)

// Result sources.
const (
	SourceChunk = "chunk"
	SourceSeed  = "seed"
)

// SimilarChunk is one retrieval hit. Seed rows carry no parent document, so
// DocumentID is empty and ChunkIndex is -1 for them.
type SimilarChunk struct {
	Source     string
	ID         int64
	DocumentID string
	ChunkIndex int
	Content    string
	Distance   float64
}

const chunkSearchSelect = `SELECT 'chunk' AS source, id, document_id::text AS document_id, chunk_index, content, embedding %[1]s $1::vector AS distance
FROM document_chunks
ORDER BY embedding %[1]s $1::vector
LIMIT $2`

const seedSearchSelect = `SELECT 'seed' AS source, id, NULL::text AS document_id, NULL::int AS chunk_index, content, embedding %[1]s $1::vector AS distance
FROM seed_documents
ORDER BY embedding %[1]s $1::vector
LIMIT $2`

// DistanceOperator maps a configured metric to its pgvector operator.
func DistanceOperator(d config.Distance) string {
	switch d {
	case config.DistanceCosine:
		return "<=>"
	case config.DistanceInnerProduct:
		return "<#>"
	default:
		return "<->"
	}
}

func similarQuery(d config.Distance, src config.Source) string {
	op := DistanceOperator(d)
	switch src {
	case config.SourceChunks:
		return fmt.Sprintf(chunkSearchSelect, op)
	case config.SourceSeed:
		return fmt.Sprintf(seedSearchSelect, op)
	default:
		return fmt.Sprintf("(%s)\nUNION ALL\n(%s)\nORDER BY distance\nLIMIT $2",
			fmt.Sprintf(chunkSearchSelect, op), fmt.Sprintf(seedSearchSelect, op))
	}
}

// FindSimilar returns up to k stored passages closest to vec, nearest first.
func (s *Store) FindSimilar(ctx context.Context, vec []float32, k int) ([]SimilarChunk, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("vector must not be empty")
	}
	if k <= 0 {
		k = 5
	}
	rows, err := s.DB.QueryContext(ctx, similarQuery(s.Distance, s.Source), VectorLiteral(vec), k)
	if err != nil {
		return nil, wrap("find similar", err)
	}
	defer rows.Close()

	var out []SimilarChunk
	for rows.Next() {
		var (
			hit        SimilarChunk
			documentID sql.NullString
			chunkIndex sql.NullInt64
		)
		if err := rows.Scan(&hit.Source, &hit.ID, &documentID, &chunkIndex, &hit.Content, &hit.Distance); err != nil {
			return nil, wrap("find similar", err)
		}
		hit.DocumentID = documentID.String
		hit.ChunkIndex = -1
		if chunkIndex.Valid {
			hit.ChunkIndex = int(chunkIndex.Int64)
		}
		out = append(out, hit)
	}
	return out, wrap("find similar", rows.Err())
}
