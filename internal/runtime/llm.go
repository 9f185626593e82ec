package runtime

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/provider"
	openai_provider "github.com/mohammad-safakhou/opticqa/provider/openai"
)

// NewProvider builds the hosted model client selected by llm.provider.
func NewProvider(cfg config.LLMConfig) (*openai_provider.Client, error) {
	switch provider.Client(strings.ToLower(strings.TrimSpace(cfg.Provider))) {
	case provider.OpenAI, "":
		if err := cfg.OpenAI.Validate(); err != nil {
			return nil, err
		}
		o := cfg.OpenAI
		return openai_provider.NewOpenAIClient(openai_provider.Config{
			APIKey:          o.APIKey,
			BaseURL:         o.BaseURL,
			EmbeddingModel:  o.EmbeddingModel,
			CompletionModel: o.CompletionModel,
			Temperature:     o.Temperature,
			MaxTokens:       o.MaxTokens,
			Timeout:         o.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
