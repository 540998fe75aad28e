package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlConfig mirrors assistant.yaml's top-level structure. Every field is a
// pointer-free struct so mergo's zero-value detection (mergo.WithOverride)
// treats an absent YAML section as "no override".
type yamlConfig struct {
	Server         ServerConfig         `yaml:"server"`
	MetadataDB     MetadataDBConfig     `yaml:"metadata_db"`
	GraphStore     GraphStoreConfig     `yaml:"graph_store"`
	VectorStore    VectorStoreConfig    `yaml:"vector_store"`
	LLM            LLMConfig            `yaml:"llm"`
	PromptRegistry PromptRegistryConfig `yaml:"prompt_registry"`
	Observability  ObservabilityConfig  `yaml:"observability"`
	Cache          CacheConfig          `yaml:"cache"`
	QueryLimits    QueryLimitsConfig    `yaml:"query_limits"`
	Timeouts       TimeoutsConfig       `yaml:"timeouts"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Load assistant.yaml from configDir
//  2. Expand environment variables (${VAR}/$VAR)
//  3. Parse YAML into structs
//  4. Merge over system-wide defaults
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	yamlCfg, err := loadYAML(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg, err := mergeOverYAML(defaultConfig(), yamlCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge configuration: %w", err)
	}
	cfg.configDir = configDir

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("Configuration initialized successfully",
		"env", cfg.Observability.Env,
		"release", cfg.Observability.Release,
		"embed_dim", cfg.LLM.EmbedDim)

	return cfg, nil
}

func loadYAML(configDir string) (*yamlConfig, error) {
	path := filepath.Join(configDir, "assistant.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// An assistant.yaml is optional: defaults plus environment
			// variables (secrets in particular) are enough to run.
			return &yamlConfig{}, nil
		}
		return nil, NewLoadError(path, err)
	}

	data = ExpandEnv(data)

	var cfg yamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}
