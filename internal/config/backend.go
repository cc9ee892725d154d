package config

import (
	"github.com/dogmatiq/ferrite"
)

var backend = ferrite.
	Enum("UNDOJOURNAL_BACKEND", "the kind of store that holds undo records").
	WithMembers(string(MemoryBackend), string(FileBackend)).
	WithDefault(string(MemoryBackend)).
	Required(ferrite.WithRegistry(FerriteRegistry))

func (c *Config) finalizeBackend() {
	if c.Backend != "" {
		return
	}

	if c.UseEnv {
		c.Backend = Backend(backend.Value())
	} else {
		c.Backend = MemoryBackend
	}
}
