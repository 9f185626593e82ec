// Package ingest turns uploaded files into stored, embedded chunks.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/opticqa/internal/chunker"
	"github.com/mohammad-safakhou/opticqa/internal/extract"
	"github.com/mohammad-safakhou/opticqa/internal/helpers"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	"github.com/mohammad-safakhou/opticqa/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxUploadBytes   = 5 << 20
	DefaultEmbedConcurrency = 4
	DefaultBatchSize        = 16
	DefaultLockTTL          = 5 * time.Minute
)

// Store is the persistence the pipeline needs.
type Store interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	CreateDocumentWithChunks(ctx context.Context, rec store.DocumentRecord, chunks []store.ChunkRecord) (string, error)
}

// Embedder embeds a batch of texts, preserving order.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	ChunkSize        int
	EmbedConcurrency int
	BatchSize        int
	MaxUploadBytes   int64
	LockTTL          time.Duration
	Extractor        extract.Extractor
	Locker           Locker
	Metrics          *runtime.Metrics
	Logger           *log.Logger
	Tracer           trace.Tracer
}

// Upload is a raw file handed to the pipeline.
type Upload struct {
	Filename string
	Data     []byte
}

// Result describes a committed document.
type Result struct {
	DocumentID string
	Filename   string
	Hash       string
	Size       int64
	Chunks     int
}

type Pipeline struct {
	store    Store
	embedder Embedder
	opts     Options
	logger   *log.Logger
	tracer   trace.Tracer
}

func NewPipeline(st Store, embedder Embedder, opts Options) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultSize
	}
	if opts.EmbedConcurrency <= 0 {
		opts.EmbedConcurrency = DefaultEmbedConcurrency
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.PDF{}
	}
	if opts.Locker == nil {
		opts.Locker = newLocalLocker()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/mohammad-safakhou/opticqa/internal/ingest")
	}
	return &Pipeline{
		store:    st,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
		tracer:   tracer,
	}
}

// HashBytes returns the hex sha256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Ingest validates, deduplicates, extracts, chunks, embeds and commits one
// upload. Nothing is written unless every chunk embedded successfully.
func (p *Pipeline) Ingest(ctx context.Context, up Upload) (res Result, err error) {
	ctx, span := p.tracer.Start(ctx, "ingest.document", trace.WithAttributes(attribute.Int("ingest.bytes", len(up.Data))))
	defer func() {
		p.opts.Metrics.ObserveIngest(outcome(err), res.Chunks)
		span.SetAttributes(attribute.Int("ingest.chunks", res.Chunks))
		runtime.EndSpan(span, err)
	}()

	if len(up.Data) == 0 {
		return Result{}, ErrNoFile
	}
	if int64(len(up.Data)) > p.opts.MaxUploadBytes {
		return Result{}, ErrFileTooLarge
	}
	if !p.opts.Extractor.Accepts(up.Data) {
		return Result{}, ErrUnsupportedFile
	}

	hash := HashBytes(up.Data)
	release, ok, lockErr := p.opts.Locker.Acquire(ctx, hash, p.opts.LockTTL)
	switch {
	case lockErr != nil:
		// the unique index on file_hash still rejects a racing duplicate
		p.logger.Printf("upload lock unavailable for %s: %v", shortHash(hash), lockErr)
	case !ok:
		return Result{}, fmt.Errorf("%w: identical upload in progress", ErrDuplicateDocument)
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				p.logger.Printf("release upload lock %s: %v", shortHash(hash), err)
			}
		}()
	}

	exists, err := p.store.ExistsByHash(ctx, hash)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return Result{}, ErrDuplicateDocument
	}

	text, err := p.opts.Extractor.Extract(ctx, up.Data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) {
			return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
		}
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyDocument
	}

	chunks := chunker.Chunk(text, p.opts.ChunkSize)
	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return Result{}, err
	}

	records := make([]store.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = store.ChunkRecord{Index: i, Content: c, Embedding: vectors[i]}
	}
	filename := helpers.SanitizeFilename(up.Filename)
	id, err := p.commit(ctx, store.DocumentRecord{
		Filename: filename,
		FileHash: hash,
		FileSize: int64(len(up.Data)),
	}, records)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateHash) {
			return Result{}, ErrDuplicateDocument
		}
		return Result{}, err
	}

	p.logger.Printf("stored document %s (%d bytes, %d chunks)", id, len(up.Data), len(chunks))
	return Result{DocumentID: id, Filename: filename, Hash: hash, Size: int64(len(up.Data)), Chunks: len(chunks)}, nil
}

// embedChunks embeds chunks in batches with bounded concurrency. The result is
// index-aligned with chunks.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []string) (_ [][]float32, err error) {
	ctx, span := p.tracer.Start(ctx, "ingest.embed", trace.WithAttributes(attribute.Int("ingest.chunks", len(chunks))))
	defer func() { runtime.EndSpan(span, err) }()

	out := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.EmbedConcurrency)

	for start := 0; start < len(chunks); start += p.opts.BatchSize {
		start := start
		end := min(start+p.opts.BatchSize, len(chunks))
		g.Go(func() error {
			vecs, err := p.embedder.EmbedMany(gctx, chunks[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), end-start)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicateDocument):
		return "duplicate"
	case errors.Is(err, ErrEmptyDocument), errors.Is(err, ErrUnsupportedFile), errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrNoFile):
		return "rejected"
	default:
		return "error"
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func (p *Pipeline) commit(ctx context.Context, rec store.DocumentRecord, chunks []store.ChunkRecord) (id string, err error) {
	ctx, span := p.tracer.Start(ctx, "ingest.commit")
	defer func() { runtime.EndSpan(span, err) }()
	return p.store.CreateDocumentWithChunks(ctx, rec, chunks)
}
