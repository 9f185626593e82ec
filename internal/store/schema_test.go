package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestCheckEmbeddingColumnsMatches(t *testing.T) {
	st, mock := newMockStore(t, 1536)
	rows := sqlmock.NewRows([]string{"relname", "atttypmod"}).
		AddRow("document_chunks", 1536).
		AddRow("seed_documents", 1536)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.relname, a.atttypmod")).WillReturnRows(rows)

	if err := st.CheckEmbeddingColumns(context.Background()); err != nil {
		t.Fatalf("CheckEmbeddingColumns: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCheckEmbeddingColumnsMismatch(t *testing.T) {
	st, mock := newMockStore(t, 3072)
	rows := sqlmock.NewRows([]string{"relname", "atttypmod"}).
		AddRow("document_chunks", 1536).
		AddRow("seed_documents", 1536)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.relname, a.atttypmod")).WillReturnRows(rows)

	err := st.CheckEmbeddingColumns(context.Background())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCheckEmbeddingColumnsUnsizedColumn(t *testing.T) {
	st, mock := newMockStore(t, 768)
	rows := sqlmock.NewRows([]string{"relname", "atttypmod"}).AddRow("document_chunks", -1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.relname, a.atttypmod")).WillReturnRows(rows)

	if err := st.CheckEmbeddingColumns(context.Background()); err != nil {
		t.Fatalf("unsized column should accept any dimension: %v", err)
	}
}

func TestCheckEmbeddingColumnsQueryFailure(t *testing.T) {
	st, mock := newMockStore(t, 1536)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.relname, a.atttypmod")).WillReturnError(errors.New("conn reset"))

	var se *StorageError
	if err := st.CheckEmbeddingColumns(context.Background()); !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}
