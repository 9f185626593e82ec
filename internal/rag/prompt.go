package rag

import (
	"strings"

	"github.com/mohammad-safakhou/opticqa/internal/store"
	"github.com/mohammad-safakhou/opticqa/provider"
)

// BuildContext joins retrieved passages, nearest first, one per line.
func BuildContext(hits []store.SimilarChunk) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Content
	}
	return strings.Join(parts, "\n")
}

// BuildMessages assembles the guardrail system prompt and the user turn.
func BuildMessages(systemPrompt, context, question string) []provider.Message {
	return []provider.Message{
		{Role: provider.RoleSystem, Content: systemPrompt},
		{Role: provider.RoleUser, Content: "Context:\n" + context + "\n\nQuestion: " + question},
	}
}
