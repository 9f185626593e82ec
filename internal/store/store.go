package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/pgvector/pgvector-go"
)

// DefaultEmbeddingDimensions indicates the expected length of vectors stored in pgvector columns.
const DefaultEmbeddingDimensions = 1536

const uniqueViolation = "23505"

var (
	// ErrDuplicateHash is returned when a document with the same file hash exists.
	ErrDuplicateHash = errors.New("document with this file hash already exists")
	// ErrDocumentNotFound is returned when a delete or lookup matched nothing.
	ErrDocumentNotFound = fmt.Errorf("document not found: %w", sql.ErrNoRows)
	// ErrInvalidEmbedding is returned for empty vectors or vectors whose length
	// differs from the store's configured dimensionality.
	ErrInvalidEmbedding = errors.New("invalid embedding")
	// ErrDimensionMismatch is returned when a vector column's declared size
	// differs from the configured embedding dimensions.
	ErrDimensionMismatch = errors.New("embedding column dimension mismatch")
)

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

type Store struct {
	DB *sql.DB

	// Dimensions, when positive, is enforced on every vector before insert.
	Dimensions int
	Distance   config.Distance
	Source     config.Source
}

// Option customises a Store built by NewWithDSN.
type Option func(*Store)

// WithPool applies connection pool limits.
func WithPool(maxOpen, maxIdle int, lifetime time.Duration) Option {
	return func(s *Store) {
		if maxOpen > 0 {
			s.DB.SetMaxOpenConns(maxOpen)
		}
		if maxIdle > 0 {
			s.DB.SetMaxIdleConns(maxIdle)
		}
		if lifetime > 0 {
			s.DB.SetConnMaxLifetime(lifetime)
		}
	}
}

// WithRetrieval selects the distance operator and the searched tables.
func WithRetrieval(distance config.Distance, source config.Source) Option {
	return func(s *Store) {
		s.Distance = distance
		s.Source = source
	}
}

// WithDimensions enforces the vector length on writes.
func WithDimensions(n int) Option {
	return func(s *Store) { s.Dimensions = n }
}

func NewWithDSN(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db, Dimensions: DefaultEmbeddingDimensions}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrap("ping", s.DB.PingContext(ctx))
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// VectorLiteral formats a vector in pgvector's text form, e.g. [0.1,0.2].
func VectorLiteral(vec []float32) string {
	return pgvector.NewVector(vec).String()
}

func (s *Store) checkEmbedding(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrInvalidEmbedding)
	}
	if s.Dimensions > 0 && len(vec) != s.Dimensions {
		return fmt.Errorf("%w: got %d dimensions, want %d", ErrInvalidEmbedding, len(vec), s.Dimensions)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
