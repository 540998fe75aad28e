package config

import "time"

// MetadataDBConfig configures the Postgres-backed metadata registry
// connection (pkg/metadata.Config is built from these once loaded).
type MetadataDBConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database" validate:"required"`
	SSLMode  string `yaml:"sslmode,omitempty"`

	MaxOpenConns    int           `yaml:"max_open_conns,omitempty" validate:"omitempty,min=1"`
	MaxIdleConns    int           `yaml:"max_idle_conns,omitempty" validate:"omitempty,min=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time,omitempty"`
}

// GraphStoreConfig configures the Neo4j driver used by the Graph Query
// Adapter (C3). The driver handle built from this config must only ever
// open read-only sessions (§5's shared-resource policy).
type GraphStoreConfig struct {
	URI      string        `yaml:"uri" validate:"required"`
	Username string        `yaml:"username" validate:"required"`
	Password string        `yaml:"password,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// VectorStoreConfig configures the Qdrant client used by the Vector Search
// Adapter (C2).
type VectorStoreConfig struct {
	Host   string `yaml:"host" validate:"required"`
	Port   int    `yaml:"port" validate:"required,min=1,max=65535"`
	UseTLS bool   `yaml:"use_tls,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
}

// LLMConfig configures the LLM Client (C5): provider credentials and the
// three model identifiers used by Planner (C6), Cypher Generator (C8), and
// Synthesizer (C9). Separate model identifiers let the generator use a
// cheaper/faster model than planning or synthesis, per spec §4.8.
type LLMConfig struct {
	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	PlanningModel  string `yaml:"planning_model" validate:"required"`
	CypherModel    string `yaml:"cypher_model" validate:"required"`
	SynthesisModel string `yaml:"synthesis_model" validate:"required"`
	EmbeddingModel string `yaml:"embedding_model" validate:"required"`

	// EmbedDim must be configured to a single value (1536 or 3072) and the
	// client fails loudly if an embedding response disagrees — the source
	// material mixed the two across code paths; we do not guess.
	EmbedDim int `yaml:"embed_dim" validate:"required,oneof=1536 3072"`

	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxRetries int           `yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=5"`
}

// PromptRegistryConfig configures the Prompt Registry Client (C4),
// including the Langfuse-backed prompt source and cache TTL.
type PromptRegistryConfig struct {
	LangfusePublicKey string        `yaml:"langfuse_public_key,omitempty"`
	LangfuseSecretKey string        `yaml:"langfuse_secret_key,omitempty"`
	LangfuseHost      string        `yaml:"langfuse_host,omitempty"`
	CacheTTL          time.Duration `yaml:"cache_ttl,omitempty"`
}

// ObservabilityConfig configures the OTLP trace exporter and the
// environment/release attributes propagated to every trace per §6.
type ObservabilityConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
	Env          string `yaml:"env" validate:"required"`
	Release      string `yaml:"release" validate:"required"`
}

// CacheConfig configures the Query Result Cache (C10).
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// QueryLimitsConfig configures input-validation and vector-search bounds.
type QueryLimitsConfig struct {
	MaxQueryLength int `yaml:"max_query_length,omitempty" validate:"omitempty,min=1"`
	VectorKDefault int `yaml:"vector_k_default,omitempty" validate:"omitempty,min=1"`
	VectorKMax     int `yaml:"vector_k_max,omitempty" validate:"omitempty,min=1"`
}

// TimeoutsConfig configures the budgets enforced by the Orchestrator (C11)
// and the adapters it drives.
type TimeoutsConfig struct {
	Overall time.Duration `yaml:"overall,omitempty"`
	LLM     time.Duration `yaml:"llm,omitempty"`
	Graph   time.Duration `yaml:"graph,omitempty"`
}

// ServerConfig configures the HTTP listener (pkg/api).
type ServerConfig struct {
	HTTPPort string `yaml:"http_port,omitempty"`
}
