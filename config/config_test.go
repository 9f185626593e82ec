package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsFromEnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/opticqa?sslmode=disable")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ADMIN_PASSCODE", "letmein")
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Postgres.URL != "postgres://u:p@db:5432/opticqa?sslmode=disable" {
		t.Fatalf("unexpected postgres url %q", cfg.Storage.Postgres.URL)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected api key from OPENAI_API_KEY, got %q", cfg.LLM.OpenAI.APIKey)
	}
	if cfg.Security.AdminKey != "letmein" {
		t.Fatalf("expected admin key from ADMIN_PASSCODE, got %q", cfg.Security.AdminKey)
	}
	if got := cfg.Server.Addr(); got != ":8081" {
		t.Fatalf("expected :8081, got %q", got)
	}
	if cfg.Ingest.ChunkSize != 400 || cfg.Ingest.MaxUploadBytes != 5*1024*1024 {
		t.Fatalf("unexpected ingest defaults: %+v", cfg.Ingest)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.Distance != DistanceL2 || cfg.Retrieval.Source != SourceAll {
		t.Fatalf("unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Guardrails.PIIMode != PIIModeDetect {
		t.Fatalf("expected detect mode, got %q", cfg.Guardrails.PIIMode)
	}
	if cfg.Server.RequestTimeout != time.Minute {
		t.Fatalf("expected 1m request timeout, got %s", cfg.Server.RequestTimeout)
	}
	if !cfg.RAG.QueryLog || cfg.RAG.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("unexpected rag defaults: %+v", cfg.RAG)
	}
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://legacy")
	t.Setenv("OPTICQA_STORAGE_POSTGRES_URL", "postgres://prefixed")
	t.Setenv("OPTICQA_GUARDRAILS_PII_MODE", "Redact")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Postgres.URL != "postgres://prefixed" {
		t.Fatalf("expected prefixed url, got %q", cfg.Storage.Postgres.URL)
	}
	if cfg.Guardrails.PIIMode != PIIModeRedact {
		t.Fatalf("expected redact mode, got %q", cfg.Guardrails.PIIMode)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
  "server": {"address": "127.0.0.1:9000"},
  "storage": {"postgres": {"url": "postgres://file"}},
  "retrieval": {"top_k": 3, "distance": "cosine", "source": "all"},
  "ingest": {"chunk_size": 200}
}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr())
	}
	if cfg.Retrieval.TopK != 3 || cfg.Retrieval.Distance != DistanceCosine || cfg.Retrieval.Source != SourceAll {
		t.Fatalf("unexpected retrieval: %+v", cfg.Retrieval)
	}
	if cfg.Ingest.ChunkSize != 200 {
		t.Fatalf("expected chunk size 200, got %d", cfg.Ingest.ChunkSize)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestGuardrailsValidate(t *testing.T) {
	if err := (GuardrailsConfig{PIIMode: "mask"}).Validate(); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
	if err := (GuardrailsConfig{}).Validate(); err != nil {
		t.Fatalf("empty mode should default to detect: %v", err)
	}
}

func TestRetrievalValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  RetrievalConfig
		ok   bool
	}{
		{"defaults", RetrievalConfig{}, true},
		{"inner product", RetrievalConfig{TopK: 3, Distance: "INNER_PRODUCT"}, true},
		{"bad distance", RetrievalConfig{Distance: "manhattan"}, false},
		{"bad source", RetrievalConfig{Source: "web"}, false},
		{"negative k", RetrievalConfig{TopK: -1}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestPostgresValidate(t *testing.T) {
	if err := (PostgresConfig{URL: "postgres://x"}).Validate(); err != nil {
		t.Fatalf("url only should pass: %v", err)
	}
	if err := (PostgresConfig{Host: "db"}).Validate(); err == nil {
		t.Fatalf("expected dbname requirement")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore dir: %v", err)
		}
	})
}
