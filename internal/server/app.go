package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/extract"
	"github.com/mohammad-safakhou/opticqa/internal/ingest"
	"github.com/mohammad-safakhou/opticqa/internal/pii"
	"github.com/mohammad-safakhou/opticqa/internal/rag"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	"github.com/mohammad-safakhou/opticqa/internal/store"
	openai_provider "github.com/mohammad-safakhou/opticqa/provider/openai"
	"github.com/mohammad-safakhou/opticqa/repository"
	"github.com/mohammad-safakhou/opticqa/tools/embedding"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	queryLogTimeout       = 5 * time.Second
	telemetryFlushTimeout = 5 * time.Second
)

// App holds the shared dependencies built once per process and handed to the
// HTTP handlers, the scheduler and the CLI commands.
type App struct {
	Config    *config.Config
	Store     *store.Store
	Redis     *repository.Redis
	LLM       *openai_provider.Client
	Embedding *embedding.Client
	Pipeline  *ingest.Pipeline
	RAG       *rag.Service
	Metrics   *runtime.Metrics
	Telemetry *runtime.Telemetry
	Tracer    trace.Tracer
}

// NewApp connects postgres (and redis when configured) and wires the ingestion
// and answering components from cfg. It fails when the migrated vector columns
// do not match embedding.dimensions.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	filter, err := pii.New(string(cfg.Guardrails.PIIMode))
	if err != nil {
		return nil, err
	}
	llm, err := runtime.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	st, err := runtime.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.CheckEmbeddingColumns(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	rdb, err := repository.NewRedis(ctx, cfg.Storage.Redis)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	tel, tracer, err := runtime.SetupTelemetry(ctx, cfg.Telemetry, runtime.TelemetryOptions{ServiceName: cfg.Telemetry.ServiceName})
	if err != nil {
		_ = rdb.Close()
		_ = st.Close()
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Store:     st,
		Redis:     rdb,
		LLM:       llm,
		Metrics:   runtime.NewMetrics(),
		Telemetry: tel,
		Tracer:    tracer,
	}
	app.Embedding = newEmbeddingClient(cfg, llm, rdb, app.Metrics)
	app.Pipeline = app.NewPipeline(nil)
	app.RAG = newRAGService(cfg, st, app.Embedding, llm, filter, app.Metrics, tracer)
	return app, nil
}

func newEmbeddingClient(cfg *config.Config, llm *openai_provider.Client, rdb *repository.Redis, m *runtime.Metrics) *embedding.Client {
	opts := embedding.Options{
		Model:      llm.EmbeddingModel(),
		Dimensions: cfg.Embedding.Dimensions,
		CacheTTL:   cfg.Embedding.CacheTTL,
		Metrics:    m,
	}
	if cfg.Embedding.MaxRetries > 0 {
		opts.Retry = embedding.ExponentialRetry(cfg.Embedding.MaxRetries, cfg.Embedding.RetryInitial)
	}
	if rps := cfg.Embedding.RequestsPerSecond; rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		opts.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if rdb != nil && rdb.Cache != nil {
		opts.Cache = rdb.Cache
	}
	return embedding.NewEmbedding(llm, opts)
}

// NewPipeline builds an ingestion pipeline sharing the app's store, embedding
// client and upload lock. A nil extractor accepts PDFs only.
func (a *App) NewPipeline(ex extract.Extractor) *ingest.Pipeline {
	cfg := a.Config.Ingest
	opts := ingest.Options{
		ChunkSize:        cfg.ChunkSize,
		EmbedConcurrency: cfg.EmbedConcurrency,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		LockTTL:          cfg.LockTTL,
		Extractor:        ex,
		Metrics:          a.Metrics,
		Tracer:           a.Tracer,
	}
	if a.Redis != nil && a.Redis.UploadLock != nil {
		opts.Locker = a.Redis.UploadLock
	}
	return ingest.NewPipeline(a.Store, a.Embedding, opts)
}

func newRAGService(cfg *config.Config, st *store.Store, emb rag.Embedder, llm *openai_provider.Client, filter pii.Filter, m *runtime.Metrics, tracer trace.Tracer) *rag.Service {
	opts := rag.Options{
		TopK:             cfg.Retrieval.TopK,
		MaxQuestionChars: cfg.RAG.MaxQuestionChars,
		SystemPrompt:     cfg.RAG.SystemPrompt,
		RefusalMessage:   cfg.RAG.RefusalMessage,
		CompletionModel:  llm.CompletionModel(),
		Filter:           filter,
		Metrics:          m,
		Tracer:           tracer,
	}
	if cfg.RAG.QueryLog {
		opts.QueryLogger = rag.StoreLogger{
			Store:   st,
			Timeout: queryLogTimeout,
			Metrics: m,
			Logger:  log.New(log.Writer(), "[QUERYLOG] ", log.LstdFlags),
		}
	}
	return rag.NewService(emb, st, llm, opts)
}

// Seeder returns a bulk seeder over the app's store and embedding client.
func (a *App) Seeder(skipIfSeeded bool) *ingest.Seeder {
	return &ingest.Seeder{
		Store:        a.Store,
		Embedder:     a.Embedding,
		SkipIfSeeded: skipIfSeeded,
		Logger:       log.New(log.Writer(), "[SEED] ", log.LstdFlags),
	}
}

// Close flushes pending spans and releases the database pool and the redis
// client.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var first error
	if a.Telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		first = a.Telemetry.Shutdown(ctx)
		cancel()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil && first == nil {
			first = err
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
