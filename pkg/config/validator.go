package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate runs struct-tag validation across every config section and
// checks the cross-field invariants the tags can't express (e.g.
// max_idle_conns <= max_open_conns).
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		return err
	}

	if cfg.MetadataDB.MaxIdleConns > cfg.MetadataDB.MaxOpenConns {
		return fmt.Errorf("metadata_db.max_idle_conns (%d) cannot exceed metadata_db.max_open_conns (%d)",
			cfg.MetadataDB.MaxIdleConns, cfg.MetadataDB.MaxOpenConns)
	}
	if cfg.QueryLimits.VectorKDefault > cfg.QueryLimits.VectorKMax {
		return fmt.Errorf("query_limits.vector_k_default (%d) cannot exceed query_limits.vector_k_max (%d)",
			cfg.QueryLimits.VectorKDefault, cfg.QueryLimits.VectorKMax)
	}
	return nil
}
