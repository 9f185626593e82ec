package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is an uploaded source file.
type DocumentRecord struct {
	ID        string
	Filename  string
	FileHash  string
	FileSize  int64
	CreatedAt time.Time
}

// ChunkRecord is one embedded segment of a document.
type ChunkRecord struct {
	Index     int
	Content   string
	Embedding []float32
}

const insertDocumentSQL = `INSERT INTO documents (id, filename, file_hash, file_size) VALUES ($1,$2,$3,$4)`

const insertChunkSQL = `INSERT INTO document_chunks (document_id, chunk_index, content, embedding) VALUES ($1,$2,$3,$4::vector)`

func validateDocument(rec *DocumentRecord) error {
	if strings.TrimSpace(rec.Filename) == "" {
		return fmt.Errorf("filename required")
	}
	if strings.TrimSpace(rec.FileHash) == "" {
		return fmt.Errorf("file hash required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return nil
}

// InsertDocument stores a document row and returns its id.
func (s *Store) InsertDocument(ctx context.Context, rec DocumentRecord) (string, error) {
	if err := validateDocument(&rec); err != nil {
		return "", err
	}
	if _, err := s.DB.ExecContext(ctx, insertDocumentSQL, rec.ID, rec.Filename, rec.FileHash, rec.FileSize); err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateHash
		}
		return "", wrap("insert document", err)
	}
	return rec.ID, nil
}

// InsertChunk stores a single chunk for an existing document.
func (s *Store) InsertChunk(ctx context.Context, documentID string, index int, content string, vec []float32) error {
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("document id required")
	}
	if index < 0 {
		return fmt.Errorf("chunk index must be >= 0")
	}
	if err := s.checkEmbedding(vec); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx, insertChunkSQL, documentID, index, content, VectorLiteral(vec))
	return wrap("insert chunk", err)
}

// CreateDocumentWithChunks writes the document and all of its chunks in one
// transaction. Chunk indices must run contiguously from 0.
func (s *Store) CreateDocumentWithChunks(ctx context.Context, rec DocumentRecord, chunks []ChunkRecord) (id string, err error) {
	if err := validateDocument(&rec); err != nil {
		return "", err
	}
	for i, ch := range chunks {
		if ch.Index != i {
			return "", fmt.Errorf("chunk indices must be contiguous from 0: position %d has index %d", i, ch.Index)
		}
		if err := s.checkEmbedding(ch.Embedding); err != nil {
			return "", fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", wrap("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, insertDocumentSQL, rec.ID, rec.Filename, rec.FileHash, rec.FileSize); err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateHash
		}
		return "", wrap("insert document", err)
	}
	for _, ch := range chunks {
		if _, err = tx.ExecContext(ctx, insertChunkSQL, rec.ID, ch.Index, ch.Content, VectorLiteral(ch.Embedding)); err != nil {
			return "", wrap("insert chunk", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return "", wrap("commit", err)
	}
	return rec.ID, nil
}

// DeleteDocument removes a document; its chunks go with it via ON DELETE CASCADE.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("document id required")
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM documents WHERE id=$1`, id)
	if err != nil {
		return wrap("delete document", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrDocumentNotFound
	} else if err != nil {
		return wrap("delete document", err)
	}
	return nil
}

// ListDocuments returns every document, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, filename, file_hash, file_size, created_at FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap("list documents", err)
	}
	defer rows.Close()
	out := []DocumentRecord{}
	for rows.Next() {
		var d DocumentRecord
		if err := rows.Scan(&d.ID, &d.Filename, &d.FileHash, &d.FileSize, &d.CreatedAt); err != nil {
			return nil, wrap("list documents", err)
		}
		out = append(out, d)
	}
	return out, wrap("list documents", rows.Err())
}

// GetDocument loads a single document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (DocumentRecord, error) {
	var d DocumentRecord
	err := s.DB.QueryRowContext(ctx, `SELECT id, filename, file_hash, file_size, created_at FROM documents WHERE id=$1`, id).
		Scan(&d.ID, &d.Filename, &d.FileHash, &d.FileSize, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return DocumentRecord{}, ErrDocumentNotFound
	}
	if err != nil {
		return DocumentRecord{}, wrap("get document", err)
	}
	return d, nil
}

// ExistsByHash reports whether a document with the given content hash is stored.
func (s *Store) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE file_hash=$1)`, hash).Scan(&exists); err != nil {
		return false, wrap("exists by hash", err)
	}
	return exists, nil
}

// CountChunks returns the number of chunks stored for a document.
func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks WHERE document_id=$1`, documentID).Scan(&n); err != nil {
		return 0, wrap("count chunks", err)
	}
	return n, nil
}
