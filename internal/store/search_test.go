package store

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/mohammad-safakhou/opticqa/config"
)

func TestFindSimilarChunksL2(t *testing.T) {
	st, mock := newMockStore(t, 2)
	st.Source = config.SourceChunks

	query := regexp.QuoteMeta(`SELECT 'chunk' AS source, id, document_id::text AS document_id, chunk_index, content, embedding <-> $1::vector AS distance
FROM document_chunks
ORDER BY embedding <-> $1::vector
LIMIT $2`)
	rows := sqlmock.NewRows([]string{"source", "id", "document_id", "chunk_index", "content", "distance"}).
		AddRow("chunk", int64(7), "doc-1", int64(0), "Appointments can be cancelled 24 hours in advance without penalty.", 0.12).
		AddRow("chunk", int64(9), "doc-1", int64(1), "Late cancellations may incur a fee.", 0.4)
	mock.ExpectQuery(query).WithArgs("[0.5,0.25]", 5).WillReturnRows(rows)

	hits, err := st.FindSimilar(context.Background(), []float32{0.5, 0.25}, 5)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected min(k, corpus)=2 hits, got %d", len(hits))
	}
	if hits[0].Distance > hits[1].Distance {
		t.Fatalf("hits not nearest first: %+v", hits)
	}
	if hits[0].DocumentID != "doc-1" || hits[0].ChunkIndex != 0 || hits[0].Source != SourceChunk {
		t.Fatalf("unexpected hit: %+v", hits[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindSimilarSeedRowsHaveNoParent(t *testing.T) {
	st, mock := newMockStore(t, 2)
	st.Distance = config.DistanceCosine
	st.Source = config.SourceSeed

	rows := sqlmock.NewRows([]string{"source", "id", "document_id", "chunk_index", "content", "distance"}).
		AddRow("seed", int64(3), nil, nil, "Opening hours are 9 to 5.", 0.05)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM seed_documents
ORDER BY embedding <=> $1::vector`)).WithArgs("[1,0]", 3).WillReturnRows(rows)

	hits, err := st.FindSimilar(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != "" || hits[0].ChunkIndex != -1 || hits[0].Source != SourceSeed {
		t.Fatalf("unexpected seed hit: %+v", hits)
	}
}

func TestFindSimilarDefaultRetrievalIncludesSeedRows(t *testing.T) {
	st, mock := newMockStore(t, 2)
	def := config.RetrievalConfig{}.Normalize()
	WithRetrieval(def.Distance, def.Source)(st)

	rows := sqlmock.NewRows([]string{"source", "id", "document_id", "chunk_index", "content", "distance"}).
		AddRow("seed", int64(4), nil, nil, "Appointments can be cancelled 24 hours in advance without penalty.", 0.03).
		AddRow("chunk", int64(11), "doc-2", int64(0), "Frames are adjusted for free.", 0.5)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM seed_documents
ORDER BY embedding <-> $1::vector
LIMIT $2)
ORDER BY distance
LIMIT $2`)).WithArgs("[1,0]", 5).WillReturnRows(rows)

	hits, err := st.FindSimilar(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(hits) != 2 || hits[0].Source != SourceSeed || !strings.Contains(hits[0].Content, "cancelled 24 hours") {
		t.Fatalf("expected the seeded passage first, got %+v", hits)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindSimilarDefaultsK(t *testing.T) {
	st, mock := newMockStore(t, 1)
	st.Source = config.SourceChunks
	mock.ExpectQuery(regexp.QuoteMeta(`FROM document_chunks`)).WithArgs("[1]", 5).
		WillReturnRows(sqlmock.NewRows([]string{"source", "id", "document_id", "chunk_index", "content", "distance"}))

	hits, err := st.FindSimilar(context.Background(), []float32{1}, 0)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits on empty corpus, got %d", len(hits))
	}
	if _, err := st.FindSimilar(context.Background(), nil, 5); err == nil {
		t.Fatalf("expected empty vector to fail")
	}
}

func TestSimilarQueryOperators(t *testing.T) {
	cases := map[config.Distance]string{
		config.DistanceL2:           "<->",
		config.DistanceCosine:       "<=>",
		config.DistanceInnerProduct: "<#>",
		"":                          "<->",
	}
	for d, op := range cases {
		if got := DistanceOperator(d); got != op {
			t.Fatalf("%q: expected %s, got %s", d, op, got)
		}
	}

	all := similarQuery(config.DistanceL2, config.SourceAll)
	if !strings.Contains(all, "UNION ALL") || !strings.HasSuffix(all, "ORDER BY distance\nLIMIT $2") {
		t.Fatalf("unexpected union query:\n%s", all)
	}
	if strings.Count(all, "<->") != 4 {
		t.Fatalf("expected operator in both halves:\n%s", all)
	}
}

func TestSeedDocuments(t *testing.T) {
	st, mock := newMockStore(t, 2)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO seed_documents (content, embedding) VALUES ($1,$2::vector) RETURNING id`)).
		WithArgs("Opening hours are 9 to 5.", "[0.1,0.2]").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM seed_documents`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	id, err := st.InsertSeedDocument(context.Background(), "Opening hours are 9 to 5.", []float32{0.1, 0.2})
	if err != nil || id != 11 {
		t.Fatalf("InsertSeedDocument: %d %v", id, err)
	}
	n, err := st.CountSeedDocuments(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("CountSeedDocuments: %d %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueryLogs(t *testing.T) {
	st, mock := newMockStore(t, 0)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO logging (question, latency_ms) VALUES ($1,$2)`)).
		WithArgs("What are your hours?", int64(1250)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM logging WHERE created_at < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	if err := st.InsertQueryLog(context.Background(), "What are your hours?", 1250*time.Millisecond); err != nil {
		t.Fatalf("InsertQueryLog: %v", err)
	}
	n, err := st.PruneQueryLogs(context.Background(), cutoff)
	if err != nil || n != 4 {
		t.Fatalf("PruneQueryLogs: %d %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
