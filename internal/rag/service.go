// Package rag answers questions from retrieved passages under the PII and
// clinical-advice guardrails.
package rag

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/pii"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	"github.com/mohammad-safakhou/opticqa/internal/store"
	"github.com/mohammad-safakhou/opticqa/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// State is the stage a question reached.
type State string

const (
	StateReceived   State = "RECEIVED"
	StatePIIChecked State = "PII_CHECKED"
	StateEmbedded   State = "EMBEDDED"
	StateRetrieved  State = "RETRIEVED"
	StateCompleted  State = "COMPLETED"
	StateAnswered   State = "ANSWERED"
	StateRejected   State = "REJECTED"
)

const (
	DefaultTopK             = 5
	DefaultMaxQuestionChars = 2000
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever interface {
	FindSimilar(ctx context.Context, vec []float32, k int) ([]store.SimilarChunk, error)
}

type Options struct {
	TopK             int
	MaxQuestionChars int
	SystemPrompt     string
	RefusalMessage   string
	// CompletionModel labels CompletionError values.
	CompletionModel string
	Filter          pii.Filter
	QueryLogger     QueryLogger
	Metrics         *runtime.Metrics
	Logger          *log.Logger
	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer
}

// Answer is the outcome of Ask. Refused answers carry the refusal message in Text.
type Answer struct {
	Text      string
	Refused   bool
	Contexts  []store.SimilarChunk
	LatencyMs int64
	State     State
}

type Service struct {
	embedder  Embedder
	retriever Retriever
	completer provider.Completer
	opts      Options
	logger    *log.Logger
	tracer    trace.Tracer
}

func NewService(embedder Embedder, retriever Retriever, completer provider.Completer, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MaxQuestionChars <= 0 {
		opts.MaxQuestionChars = DefaultMaxQuestionChars
	}
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = config.DefaultSystemPrompt
	}
	if strings.TrimSpace(opts.RefusalMessage) == "" {
		opts.RefusalMessage = config.DefaultRefusalMessage
	}
	if opts.Filter == nil {
		opts.Filter = pii.DetectPolicy{}
	}
	if opts.QueryLogger == nil {
		opts.QueryLogger = NopLogger{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/mohammad-safakhou/opticqa/internal/rag")
	}
	return &Service{embedder: embedder, retriever: retriever, completer: completer, opts: opts, logger: logger, tracer: tracer}
}

// RefusalMessage is the fixed text returned for refused questions.
func (s *Service) RefusalMessage() string { return s.opts.RefusalMessage }

// Ask runs a question through the guardrails, retrieval and completion.
func (s *Service) Ask(ctx context.Context, question string) (ans Answer, err error) {
	ctx, span := s.tracer.Start(ctx, "rag.ask")
	ans.State = StateReceived
	defer func() {
		s.opts.Metrics.ObserveAsk(askOutcome(ans, err), time.Duration(ans.LatencyMs)*time.Millisecond)
		span.SetAttributes(
			attribute.String("rag.state", string(ans.State)),
			attribute.Bool("rag.refused", ans.Refused),
			attribute.Int("rag.contexts", len(ans.Contexts)),
		)
		runtime.EndSpan(span, err)
	}()

	q := strings.TrimSpace(question)
	if q == "" {
		return Answer{State: StateRejected}, &ValidationError{Field: "question", Reason: "question is required"}
	}
	if utf8.RuneCountInString(q) > s.opts.MaxQuestionChars {
		return Answer{State: StateRejected}, &ValidationError{Field: "question", Reason: "question is too long"}
	}

	forwarded, refused := s.opts.Filter.Apply(q)
	if refused {
		s.logger.Printf("refused question (%d chars) under %s policy", len(q), s.opts.Filter.Mode())
		return Answer{Text: s.opts.RefusalMessage, Refused: true, State: StateRejected}, nil
	}
	ans.State = StatePIIChecked

	start := time.Now()
	vec, err := s.embed(ctx, forwarded)
	if err != nil {
		var ee *provider.EmbeddingError
		if !errors.As(err, &ee) {
			err = &provider.EmbeddingError{Err: err}
		}
		return ans, err
	}
	ans.State = StateEmbedded

	hits, err := s.retrieve(ctx, vec)
	if err != nil {
		return ans, err
	}
	ans.Contexts = hits
	ans.State = StateRetrieved

	messages := BuildMessages(s.opts.SystemPrompt, BuildContext(hits), forwarded)
	text, err := s.complete(ctx, messages)
	if err != nil {
		return ans, &provider.CompletionError{Model: s.opts.CompletionModel, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return ans, &provider.CompletionError{Model: s.opts.CompletionModel, Err: provider.ErrEmptyCompletion}
	}
	latency := time.Since(start)
	ans.State = StateCompleted

	s.opts.QueryLogger.Log(ctx, forwarded, latency)

	ans.Text = text
	ans.LatencyMs = latency.Milliseconds()
	ans.State = StateAnswered
	return ans, nil
}

func (s *Service) embed(ctx context.Context, text string) (vec []float32, err error) {
	ctx, span := s.tracer.Start(ctx, "rag.embed")
	defer func() { runtime.EndSpan(span, err) }()
	return s.embedder.Embed(ctx, text)
}

func (s *Service) retrieve(ctx context.Context, vec []float32) (hits []store.SimilarChunk, err error) {
	ctx, span := s.tracer.Start(ctx, "rag.retrieve", trace.WithAttributes(attribute.Int("rag.top_k", s.opts.TopK)))
	defer func() {
		span.SetAttributes(attribute.Int("rag.hits", len(hits)))
		runtime.EndSpan(span, err)
	}()
	return s.retriever.FindSimilar(ctx, vec, s.opts.TopK)
}

func (s *Service) complete(ctx context.Context, messages []provider.Message) (text string, err error) {
	ctx, span := s.tracer.Start(ctx, "rag.complete", trace.WithAttributes(attribute.Int("rag.messages", len(messages))))
	defer func() { runtime.EndSpan(span, err) }()
	return s.completer.Complete(ctx, messages)
}

func askOutcome(ans Answer, err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case err != nil:
		return "error"
	case ans.Refused:
		return "refused"
	default:
		return "success"
	}
}
