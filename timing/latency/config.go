package latency

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TimingConfig holds cycle costs for each class of instruction.
// Heap and fetch latencies on top of these come from the cache models.
type TimingConfig struct {
	// ALULatency is the execution latency for add, sub, nand, cmov and
	// load-immediate. Default: 1 cycle.
	ALULatency uint64 `toml:"alu_latency"`

	// MultiplyLatency is the latency for mul. Default: 3 cycles.
	MultiplyLatency uint64 `toml:"multiply_latency"`

	// DivideLatency is the latency for div and mod. Default: 10 cycles.
	DivideLatency uint64 `toml:"divide_latency"`

	// ArrayLatency is the base latency for index and amend, before any
	// cache penalty. Default: 1 cycle.
	ArrayLatency uint64 `toml:"array_latency"`

	// AllocLatency is the latency for alloc. Default: 20 cycles.
	AllocLatency uint64 `toml:"alloc_latency"`

	// AbandonLatency is the latency for abandon. Default: 5 cycles.
	AbandonLatency uint64 `toml:"abandon_latency"`

	// IOLatency is the latency for in and out. Default: 1 cycle
	// (the host device is not modeled).
	IOLatency uint64 `toml:"io_latency"`

	// BranchLatency is the latency for load-program. Default: 1 cycle.
	BranchLatency uint64 `toml:"branch_latency"`

	// ProgramSwitchPenalty is added when load-program changes the active
	// array rather than jumping within it. Default: 12 cycles.
	ProgramSwitchPenalty uint64 `toml:"program_switch_penalty"`
}

// DefaultTimingConfig returns a TimingConfig with default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:           1,
		MultiplyLatency:      3,
		DivideLatency:        10,
		ArrayLatency:         1,
		AllocLatency:         20,
		AbandonLatency:       5,
		IOLatency:            1,
		BranchLatency:        1,
		ProgramSwitchPenalty: 12,
	}
}

// LoadConfig loads a TimingConfig from a TOML file. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a TOML file.
func (c *TimingConfig) SaveConfig(path string) error {
	buf := &bytes.Buffer{}
	if err := toml.NewEncoder(buf).Encode(c); err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.MultiplyLatency == 0 {
		return fmt.Errorf("multiply_latency must be > 0")
	}
	if c.DivideLatency == 0 {
		return fmt.Errorf("divide_latency must be > 0")
	}
	if c.ArrayLatency == 0 {
		return fmt.Errorf("array_latency must be > 0")
	}
	if c.AllocLatency == 0 {
		return fmt.Errorf("alloc_latency must be > 0")
	}
	if c.AbandonLatency == 0 {
		return fmt.Errorf("abandon_latency must be > 0")
	}
	if c.IOLatency == 0 {
		return fmt.Errorf("io_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
