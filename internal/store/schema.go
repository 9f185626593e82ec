package store

import (
	"context"
	"fmt"
)

// vectorColumnsQuery reads the declared size of each embedding column. For
// pgvector columns atttypmod is the dimension count, or -1 when unsized.
const vectorColumnsQuery = `SELECT c.relname, a.atttypmod
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
WHERE a.attname = 'embedding'
  AND c.relname IN ('document_chunks', 'seed_documents')
  AND c.relkind = 'r'
  AND NOT a.attisdropped
  AND pg_table_is_visible(c.oid)
ORDER BY c.relname`

// CheckEmbeddingColumns verifies the migrated vector columns accept vectors of
// the configured length. Changing embedding.dimensions needs a migration that
// alters both columns and rebuilds their indexes.
func (s *Store) CheckEmbeddingColumns(ctx context.Context) error {
	if s.Dimensions <= 0 {
		return nil
	}
	rows, err := s.DB.QueryContext(ctx, vectorColumnsQuery)
	if err != nil {
		return wrap("check embedding columns", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			table string
			dims  int
		)
		if err := rows.Scan(&table, &dims); err != nil {
			return wrap("check embedding columns", err)
		}
		if dims > 0 && dims != s.Dimensions {
			return fmt.Errorf("%w: %s.embedding is vector(%d) but embedding.dimensions is %d; add a migration to resize it",
				ErrDimensionMismatch, table, dims, s.Dimensions)
		}
	}
	return wrap("check embedding columns", rows.Err())
}
