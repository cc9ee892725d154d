package config

import (
	"github.com/dogmatiq/ferrite"
)

const (
	// DefaultMaxSteps is the default number of records retained by the memory
	// backend.
	DefaultMaxSteps = 1000

	// DefaultMaxBytes is the default number of bytes retained by the memory
	// backend.
	DefaultMaxBytes = 16 << 20
)

var (
	maxSteps = ferrite.
			Unsigned[uint32]("UNDOJOURNAL_MAX_STEPS", "the maximum number of undo records kept in memory, 0 is unlimited").
			WithDefault(DefaultMaxSteps).
			Required(ferrite.WithRegistry(FerriteRegistry))

	maxBytes = ferrite.
			Unsigned[uint32]("UNDOJOURNAL_MAX_BYTES", "the maximum number of bytes of undo records kept in memory, 0 is unlimited").
			WithDefault(DefaultMaxBytes).
			Required(ferrite.WithRegistry(FerriteRegistry))
)

func (c *Config) finalizeMemory() {
	if c.Memory.MaxSteps == 0 {
		if c.UseEnv {
			c.Memory.MaxSteps = maxSteps.Value()
		} else {
			c.Memory.MaxSteps = DefaultMaxSteps
		}
	}

	if c.Memory.MaxBytes == 0 {
		if c.UseEnv {
			c.Memory.MaxBytes = maxBytes.Value()
		} else {
			c.Memory.MaxBytes = DefaultMaxBytes
		}
	}
}
