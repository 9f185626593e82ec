package openai_provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mohammad-safakhou/opticqa/provider"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultCompletionModel = "gpt-4o-mini"
)

// Config configures the OpenAI backed client.
type Config struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	CompletionModel string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
}

// Client implements provider.Embedder and provider.Completer using OpenAI's API
type Client struct {
	api             *openai.Client
	embeddingModel  string
	completionModel string
	temperature     float32
	maxTokens       int
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		oc.BaseURL = base
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		api:             openai.NewClientWithConfig(oc),
		embeddingModel:  cfg.EmbeddingModel,
		completionModel: cfg.CompletionModel,
		temperature:     float32(cfg.Temperature),
		maxTokens:       cfg.MaxTokens,
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	if c.completionModel == "" {
		c.completionModel = DefaultCompletionModel
	}
	return c
}

// EmbeddingModel returns the model name used for embeddings.
func (c *Client) EmbeddingModel() string { return c.embeddingModel }

// CompletionModel returns the model name used for chat completions.
func (c *Client) CompletionModel() string { return c.completionModel }

// Embed generates one embedding per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, upstream(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	vecs := make([][]float32, len(data))
	for i, d := range data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

// Complete sends the messages to the chat completion endpoint and returns the
// first choice's text verbatim.
func (c *Client) Complete(ctx context.Context, messages []provider.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.completionModel,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: c.temperature,
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", upstream(err)
	}
	if len(resp.Choices) == 0 {
		return "", provider.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// upstream normalises go-openai errors into provider.UpstreamError so callers
// can decide on retries without importing the SDK.
func upstream(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &provider.UpstreamError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &provider.UpstreamError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &provider.UpstreamError{Err: err}
}
