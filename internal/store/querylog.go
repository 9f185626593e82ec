package store

import (
	"context"
	"time"
)

// InsertQueryLog records a handled question and its answering latency.
func (s *Store) InsertQueryLog(ctx context.Context, question string, latency time.Duration) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO logging (question, latency_ms) VALUES ($1,$2)`, question, latency.Milliseconds())
	return wrap("insert query log", err)
}

// PruneQueryLogs deletes query log rows created before the cutoff.
func (s *Store) PruneQueryLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM logging WHERE created_at < $1`, before)
	if err != nil {
		return 0, wrap("prune query logs", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("prune query logs", err)
	}
	return n, nil
}
