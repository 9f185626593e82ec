package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the question-answering service
type Config struct {
	General    GeneralConfig    `mapstructure:"general"`
	Server     ServerConfig     `mapstructure:"server"`
	Security   SecurityConfig   `mapstructure:"security"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	Guardrails GuardrailsConfig `mapstructure:"guardrails"`
	RAG        RAGConfig        `mapstructure:"rag"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	Port           string        `mapstructure:"port"`
	StaticDir      string        `mapstructure:"static_dir"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UploadTimeout  time.Duration `mapstructure:"upload_timeout"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
}

// Addr resolves the listen address, preferring an explicit address over the port.
func (s ServerConfig) Addr() string {
	if addr := strings.TrimSpace(s.Address); addr != "" {
		return addr
	}
	port := strings.TrimSpace(s.Port)
	if port == "" {
		port = "3000"
	}
	if port[0] != ':' {
		port = ":" + port
	}
	return port
}

// SecurityConfig holds the admin gate secret. AdminKeyHash, when set, is a bcrypt
// hash and takes precedence over the plain AdminKey.
type SecurityConfig struct {
	AdminKey     string `mapstructure:"admin_key"`
	AdminKeyHash string `mapstructure:"admin_key_hash"`
}

// Configured reports whether any admin secret is present.
func (s SecurityConfig) Configured() bool {
	return strings.TrimSpace(s.AdminKey) != "" || strings.TrimSpace(s.AdminKeyHash) != ""
}

// LLMConfig contains hosted model provider settings
type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// OpenAIConfig configures both the embedding and the completion model.
type OpenAIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	CompletionModel string        `mapstructure:"completion_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

func (o OpenAIConfig) Validate() error {
	if strings.TrimSpace(o.APIKey) == "" {
		return fmt.Errorf("llm.openai.api_key required (or OPENAI_API_KEY)")
	}
	if strings.TrimSpace(o.EmbeddingModel) == "" {
		return fmt.Errorf("llm.openai.embedding_model required")
	}
	if strings.TrimSpace(o.CompletionModel) == "" {
		return fmt.Errorf("llm.openai.completion_model required")
	}
	return nil
}

// EmbeddingConfig controls the embedding client wrapper.
type EmbeddingConfig struct {
	Dimensions        int           `mapstructure:"dimensions"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryInitial      time.Duration `mapstructure:"retry_initial"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

func (e EmbeddingConfig) Validate() error {
	if e.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be > 0")
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("embedding.max_retries cannot be negative")
	}
	if e.RequestsPerSecond < 0 {
		return fmt.Errorf("embedding.requests_per_second cannot be negative")
	}
	return nil
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection and pool settings
type PostgresConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (p PostgresConfig) Validate() error {
	if p.MaxOpenConns < 0 || p.MaxIdleConns < 0 {
		return fmt.Errorf("storage.postgres pool sizes cannot be negative")
	}
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// RedisConfig contains Redis connection settings. Redis is optional; leave both
// url and host empty to run without it.
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Host) != ""
}

func (r RedisConfig) Validate() error {
	if !r.Enabled() || strings.TrimSpace(r.URL) != "" {
		return nil
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required when host is set")
	}
	return nil
}

// IngestConfig controls the document upload pipeline.
type IngestConfig struct {
	ChunkSize        int           `mapstructure:"chunk_size"`
	EmbedConcurrency int           `mapstructure:"embed_concurrency"`
	MaxUploadBytes   int64         `mapstructure:"max_upload_bytes"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
}

func (i IngestConfig) Validate() error {
	if i.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be > 0")
	}
	if i.EmbedConcurrency <= 0 {
		return fmt.Errorf("ingest.embed_concurrency must be > 0")
	}
	if i.MaxUploadBytes <= 0 {
		return fmt.Errorf("ingest.max_upload_bytes must be > 0")
	}
	return nil
}

// RAGConfig controls the answering path.
type RAGConfig struct {
	QueryLog         bool   `mapstructure:"query_log"`
	MaxQuestionChars int    `mapstructure:"max_question_chars"`
	SystemPrompt     string `mapstructure:"system_prompt"`
	RefusalMessage   string `mapstructure:"refusal_message"`
}

// LoggingConfig controls retention of the query log table.
type LoggingConfig struct {
	RetentionDays int    `mapstructure:"retention_days"`
	PruneCron     string `mapstructure:"prune_cron"`
}

// TelemetryConfig contains metrics and tracing settings. Traces are exported
// only when OTLPEndpoint is set.
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MetricsPath  string `mapstructure:"metrics_path"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && !strings.HasPrefix(t.MetricsPath, "/") {
		return fmt.Errorf("telemetry.metrics_path must start with /")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.env", "dev")
	v.SetDefault("general.log_level", "info")

	v.SetDefault("server.address", "")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.upload_timeout", 5*time.Minute)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("security.admin_key", "")
	v.SetDefault("security.admin_key_hash", "")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.openai.completion_model", "gpt-4o-mini")
	v.SetDefault("llm.openai.temperature", 0.2)
	v.SetDefault("llm.openai.max_tokens", 0)
	v.SetDefault("llm.openai.timeout", 30*time.Second)

	v.SetDefault("embedding.dimensions", 1536)
	v.SetDefault("embedding.max_retries", 0)
	v.SetDefault("embedding.retry_initial", 500*time.Millisecond)
	v.SetDefault("embedding.requests_per_second", 0)
	v.SetDefault("embedding.cache_ttl", 24*time.Hour)

	v.SetDefault("storage.postgres.url", "")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", "5432")
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.dbname", "opticqa")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.timeout", 10*time.Second)
	v.SetDefault("storage.postgres.max_open_conns", 10)
	v.SetDefault("storage.postgres.max_idle_conns", 5)
	v.SetDefault("storage.postgres.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("storage.redis.url", "")
	v.SetDefault("storage.redis.host", "")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.timeout", 5*time.Second)

	v.SetDefault("ingest.chunk_size", 400)
	v.SetDefault("ingest.embed_concurrency", 4)
	v.SetDefault("ingest.max_upload_bytes", 5*1024*1024)
	v.SetDefault("ingest.lock_ttl", 5*time.Minute)

	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.distance", string(DistanceL2))
	v.SetDefault("retrieval.source", string(SourceAll))

	v.SetDefault("guardrails.pii_mode", string(PIIModeDetect))

	v.SetDefault("rag.query_log", true)
	v.SetDefault("rag.max_question_chars", 2000)
	v.SetDefault("rag.system_prompt", DefaultSystemPrompt)
	v.SetDefault("rag.refusal_message", DefaultRefusalMessage)

	v.SetDefault("logging.retention_days", 90)
	v.SetDefault("logging.prune_cron", "@daily")

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.metrics_path", "/metrics")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "opticqa")
}

// bindLegacyEnv maps the plain environment names used by existing deployments
// onto config keys. The prefixed OPTICQA_* name wins when both are set.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"storage.postgres.url": {"OPTICQA_STORAGE_POSTGRES_URL", "DATABASE_URL"},
		"storage.redis.url":    {"OPTICQA_STORAGE_REDIS_URL", "REDIS_URL"},
		"llm.openai.api_key":   {"OPTICQA_LLM_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"security.admin_key":   {"OPTICQA_SECURITY_ADMIN_KEY", "ADMIN_PASSCODE"},
		"server.port":          {"OPTICQA_SERVER_PORT", "PORT"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads configuration from an optional JSON file, a .env file, and the
// environment, then validates it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("OPTICQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Guardrails = cfg.Guardrails.Normalize()
	cfg.Retrieval = cfg.Retrieval.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section that must be sound for any command.
func (c *Config) Validate() error {
	validators := []func() error{
		c.Telemetry.Validate,
		c.Embedding.Validate,
		c.Storage.Postgres.Validate,
		c.Storage.Redis.Validate,
		c.Ingest.Validate,
		c.Retrieval.Validate,
		c.Guardrails.Validate,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	if c.RAG.MaxQuestionChars < 0 {
		return fmt.Errorf("rag.max_question_chars cannot be negative")
	}
	return nil
}

// LoadConfig loads config from file and environment, panicking on invalid input.
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return cfg
}
