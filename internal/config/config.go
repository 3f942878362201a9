// Package config loads the engine's ambient tuning knob — the buffer-pool
// frame count — from a YAML file; the page size is fixed at compile time
// and is not configurable. Grounded on the pack's only
// real use of gopkg.in/yaml.v3 (internal/testhelper/examples_test.go's
// `yaml:"..."`-tagged fixture structs).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tupledb/internal/bufferpool"
	"tupledb/internal/engineerr"
	"tupledb/internal/page"
)

// EngineConfig holds the knobs an embedding application may want to tune
// without recompiling.
type EngineConfig struct {
	// BufferPoolFrames is the maximum number of pages the buffer pool
	// caches at once. 0 means bufferpool.DefaultCapacity.
	BufferPoolFrames int `yaml:"buffer_pool_frames"`
}

// Default returns the engine's built-in configuration.
func Default() EngineConfig {
	return EngineConfig{BufferPoolFrames: bufferpool.DefaultCapacity}
}

// Load reads and parses a YAML engine configuration file at path.
// Unset fields keep Default()'s values.
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	buf, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.BufferPoolFrames <= 0 {
		cfg.BufferPoolFrames = bufferpool.DefaultCapacity
	}
	return cfg, nil
}

// Validate rejects configurations that cannot support a single page.
func (c EngineConfig) Validate() error {
	if c.BufferPoolFrames < 1 {
		return fmt.Errorf("config: buffer_pool_frames must be >= 1, got %d: %w", c.BufferPoolFrames, engineerr.ErrInvalidArgument)
	}
	return nil
}

// NewPool builds a bufferpool.Pool sized per this configuration.
func (c EngineConfig) NewPool() *bufferpool.Pool {
	return bufferpool.NewPool(c.BufferPoolFrames)
}

// PageSize is exposed for callers that want to confirm the fixed page size
// this build was compiled against (spec.md §3 fixes it at compile time,
// not at runtime, so there is no corresponding YAML field).
func PageSize() int { return page.Size }
