// Package config builds the undo stores used by the undojournal command from
// flags and environment variables.
package config

import (
	"github.com/dogmatiq/ferrite"
)

// FerriteRegistry is a registry of the environment variables used by the
// undojournal command.
var FerriteRegistry = ferrite.NewRegistry(
	"dogmatiq.undojournal",
	"Undo Journal",
	ferrite.WithDocumentationURL("https://github.com/dogmatiq/undojournal#readme"),
)

// Backend is the kind of store that holds undo records.
type Backend string

const (
	// MemoryBackend keeps records in a bounded in-memory store.
	MemoryBackend Backend = "memory"

	// FileBackend keeps records in a file.
	FileBackend Backend = "file"
)

// Config describes how to construct undo stores.
//
// Zero-valued fields are populated from the environment by [Config.Finalize]
// if UseEnv is true, otherwise they are given their default values.
type Config struct {
	UseEnv bool

	Backend Backend

	Memory struct {
		MaxSteps uint32
		MaxBytes uint32
	}

	File struct {
		Dir                 string
		DisableChecksums    bool
		disableChecksumsSet bool
	}
}

// SetDisableChecksums sets whether the file backend verifies checksums,
// overriding the environment.
func (c *Config) SetDisableChecksums(disable bool) {
	c.File.DisableChecksums = disable
	c.File.disableChecksumsSet = true
}

// Finalize fills in any unset fields.
func (c *Config) Finalize() {
	c.finalizeBackend()
	c.finalizeMemory()
	c.finalizeFile()
}
