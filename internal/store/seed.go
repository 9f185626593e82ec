package store

import (
	"context"
	"fmt"
	"strings"
)

// InsertSeedDocument stores a fixed reference passage and returns its id.
func (s *Store) InsertSeedDocument(ctx context.Context, content string, vec []float32) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("content required")
	}
	if err := s.checkEmbedding(vec); err != nil {
		return 0, err
	}
	var id int64
	err := s.DB.QueryRowContext(ctx, `INSERT INTO seed_documents (content, embedding) VALUES ($1,$2::vector) RETURNING id`, content, VectorLiteral(vec)).Scan(&id)
	if err != nil {
		return 0, wrap("insert seed document", err)
	}
	return id, nil
}

func (s *Store) CountSeedDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM seed_documents`).Scan(&n); err != nil {
		return 0, wrap("count seed documents", err)
	}
	return n, nil
}
