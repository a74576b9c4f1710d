package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/sarchlab/umsim/timing/cache"
	"github.com/sarchlab/umsim/timing/core"
	"github.com/sarchlab/umsim/timing/latency"
)

// RunConfig is the contents of a run file. Every key is optional; missing
// keys keep their defaults, and command-line flags override the file.
type RunConfig struct {
	MaxInstructions uint64 `toml:"max_instructions"`
	IdentifierLimit uint32 `toml:"identifier_limit"`
	HeapLimit       uint64 `toml:"heap_limit"`

	Latency latency.TimingConfig `toml:"latency"`
	ICache  cache.Config         `toml:"icache"`
	DCache  cache.Config         `toml:"dcache"`
}

// DefaultRunConfig returns an unbounded run with the default timing model.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Latency: *latency.DefaultTimingConfig(),
		ICache:  cache.DefaultICacheConfig(),
		DCache:  cache.DefaultDCacheConfig(),
	}
}

// LoadRunConfig reads a TOML run file over the defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	config := DefaultRunConfig()

	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in run file %s", undecoded[0].String(), path)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run file %s: %w", path, err)
	}

	return config, nil
}

// Validate checks the timing parameters.
func (c *RunConfig) Validate() error {
	return c.Core().Validate()
}

// Core returns the timing configuration for a core.
func (c *RunConfig) Core() core.Config {
	lat := c.Latency
	return core.Config{
		Latency: &lat,
		ICache:  c.ICache,
		DCache:  c.DCache,
	}
}
