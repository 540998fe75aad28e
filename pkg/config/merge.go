package config

import (
	"fmt"

	"dario.cat/mergo"
)

// mergeOverYAML merges yamlCfg on top of defaults, with non-zero fields in
// yamlCfg overriding the defaults (mirroring the teacher's queue-config
// merge in loader.go).
func mergeOverYAML(defaults *Config, yamlCfg *yamlConfig) (*Config, error) {
	merged := *defaults

	if err := mergo.Merge(&merged.Server, yamlCfg.Server, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging server config: %w", err)
	}
	if err := mergo.Merge(&merged.MetadataDB, yamlCfg.MetadataDB, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging metadata_db config: %w", err)
	}
	if err := mergo.Merge(&merged.GraphStore, yamlCfg.GraphStore, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging graph_store config: %w", err)
	}
	if err := mergo.Merge(&merged.VectorStore, yamlCfg.VectorStore, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging vector_store config: %w", err)
	}
	if err := mergo.Merge(&merged.LLM, yamlCfg.LLM, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging llm config: %w", err)
	}
	if err := mergo.Merge(&merged.PromptRegistry, yamlCfg.PromptRegistry, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging prompt_registry config: %w", err)
	}
	if err := mergo.Merge(&merged.Observability, yamlCfg.Observability, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging observability config: %w", err)
	}
	if err := mergo.Merge(&merged.Cache, yamlCfg.Cache, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging cache config: %w", err)
	}
	if err := mergo.Merge(&merged.QueryLimits, yamlCfg.QueryLimits, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging query_limits config: %w", err)
	}
	if err := mergo.Merge(&merged.Timeouts, yamlCfg.Timeouts, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging timeouts config: %w", err)
	}

	return &merged, nil
}
