package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	"github.com/mohammad-safakhou/opticqa/provider"
	"golang.org/x/time/rate"
)

var (
	// ErrEmptyInput is returned for blank text before any upstream call.
	ErrEmptyInput = errors.New("embedding input is empty")
	// ErrDimensionMismatch is returned when the model answers with a vector of
	// the wrong length for the configured column.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Cache stores question embeddings between requests.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error
}

// RetryPolicy builds a fresh backoff for one call.
type RetryPolicy func() backoff.BackOff

// NoRetry makes exactly one attempt.
func NoRetry() backoff.BackOff { return &backoff.StopBackOff{} }

// ExponentialRetry retries retryable upstream failures up to maxRetries times.
func ExponentialRetry(maxRetries int, initial time.Duration) RetryPolicy {
	if maxRetries <= 0 {
		return NoRetry
	}
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		if initial > 0 {
			b.InitialInterval = initial
		}
		return backoff.WithMaxRetries(b, uint64(maxRetries))
	}
}

// Options tunes the Client. Zero values disable the optional behaviour.
type Options struct {
	Model      string
	Dimensions int
	Retry      RetryPolicy
	Limiter    *rate.Limiter
	Cache      Cache
	CacheTTL   time.Duration
	Metrics    *runtime.Metrics
	Logger     *log.Logger
}

// Client wraps a provider.Embedder with input checks, dimensionality checks,
// retries, rate limiting and an optional cache.
type Client struct {
	embedder provider.Embedder
	opts     Options
	logger   *log.Logger
}

func NewEmbedding(embedder provider.Embedder, opts Options) *Client {
	if opts.Retry == nil {
		opts.Retry = NoRetry
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[EMBED] ", log.LstdFlags)
	}
	return &Client{embedder: embedder, opts: opts, logger: logger}
}

// Dimensions is the enforced vector length, zero when unchecked.
func (c *Client) Dimensions() int { return c.opts.Dimensions }

// Embed returns the vector for a single text, consulting the cache first.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	key := c.cacheKey(text)
	if c.opts.Cache != nil {
		vec, ok, err := c.opts.Cache.Get(ctx, key)
		if err != nil {
			c.logger.Printf("cache get failed: %v", err)
		} else if ok && c.checkDims(vec) == nil {
			c.opts.Metrics.ObserveEmbedding("cache_hit")
			return vec, nil
		}
	}

	vecs, err := c.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if c.opts.Cache != nil {
		if err := c.opts.Cache.Set(ctx, key, vecs[0], c.opts.CacheTTL); err != nil {
			c.logger.Printf("cache set failed: %v", err)
		}
	}
	return vecs[0], nil
}

// EmbedMany embeds texts in one upstream call and returns vectors in input order.
func (c *Client) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ErrEmptyInput
		}
	}

	var vecs [][]float32
	op := func() error {
		if c.opts.Limiter != nil {
			if err := c.opts.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		out, err := c.embedder.Embed(ctx, texts)
		if err != nil {
			if provider.IsRetryable(err) {
				c.opts.Metrics.ObserveEmbedding("retry")
				return err
			}
			return backoff.Permanent(err)
		}
		vecs = out
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.opts.Retry(), ctx)); err != nil {
		c.opts.Metrics.ObserveEmbedding("error")
		return nil, &provider.EmbeddingError{Model: c.opts.Model, Err: err}
	}

	if len(vecs) != len(texts) {
		c.opts.Metrics.ObserveEmbedding("error")
		return nil, &provider.EmbeddingError{Model: c.opts.Model, Err: fmt.Errorf("expected %d vectors, got %d", len(texts), len(vecs))}
	}
	for _, v := range vecs {
		if err := c.checkDims(v); err != nil {
			c.opts.Metrics.ObserveEmbedding("error")
			return nil, &provider.EmbeddingError{Model: c.opts.Model, Err: err}
		}
	}
	c.opts.Metrics.ObserveEmbedding("success")
	return vecs, nil
}

func (c *Client) checkDims(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}
	if c.opts.Dimensions > 0 && len(vec) != c.opts.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), c.opts.Dimensions)
	}
	return nil
}

func (c *Client) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.opts.Model + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
