package runtime

import (
	"testing"

	"github.com/mohammad-safakhou/opticqa/config"
)

func TestNewProvider(t *testing.T) {
	cfg := config.LLMConfig{Provider: "openai", OpenAI: config.OpenAIConfig{
		APIKey:          "sk-test",
		EmbeddingModel:  "text-embedding-3-small",
		CompletionModel: "gpt-4o-mini",
	}}
	c, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if c.EmbeddingModel() != "text-embedding-3-small" || c.CompletionModel() != "gpt-4o-mini" {
		t.Fatalf("unexpected models %q %q", c.EmbeddingModel(), c.CompletionModel())
	}

	cfg.OpenAI.APIKey = ""
	if _, err := NewProvider(cfg); err == nil {
		t.Fatalf("expected missing api key to fail")
	}

	if _, err := NewProvider(config.LLMConfig{Provider: "gemini"}); err == nil {
		t.Fatalf("expected unsupported provider to fail")
	}
}
