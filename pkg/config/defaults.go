package config

import "time"

// defaultConfig returns a Config pre-populated with every default named in
// spec.md §6's configuration table. Initialize merges this under whatever
// the YAML file and environment provide.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: "8080",
		},
		MetadataDB: MetadataDBConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "assistant_orchestrator",
			Database:        "campaign_notes",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 15 * time.Minute,
		},
		GraphStore: GraphStoreConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Timeout:  30 * time.Second,
		},
		VectorStore: VectorStoreConfig{
			Host: "localhost",
			Port: 6334,
		},
		LLM: LLMConfig{
			EmbedDim:   1536,
			Timeout:    30 * time.Second,
			MaxRetries: 2,
		},
		PromptRegistry: PromptRegistryConfig{
			CacheTTL: 2 * time.Minute,
		},
		Observability: ObservabilityConfig{
			Env:     "production",
			Release: "unknown",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		QueryLimits: QueryLimitsConfig{
			MaxQueryLength: 500,
			VectorKDefault: 5,
			VectorKMax:     50,
		},
		Timeouts: TimeoutsConfig{
			Overall: 60 * time.Second,
			LLM:     30 * time.Second,
			Graph:   30 * time.Second,
		},
	}
}
