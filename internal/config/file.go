package config

import (
	"os"

	"github.com/dogmatiq/ferrite"
)

var (
	storageDir = ferrite.
			String("UNDOJOURNAL_STORAGE_PATH", "the directory in which the file backend stores undo records").
			Optional(ferrite.WithRegistry(FerriteRegistry))

	verifyChecksums = ferrite.
			Bool("UNDOJOURNAL_VERIFY_CHECKSUMS", "verify the checksum of each undo record read from a file").
			WithDefault(true).
			Required(ferrite.WithRegistry(FerriteRegistry))
)

func (c *Config) finalizeFile() {
	if c.File.Dir == "" {
		if c.UseEnv {
			if dir, ok := storageDir.Value(); ok {
				c.File.Dir = dir
			}
		}

		if c.File.Dir == "" {
			c.File.Dir = os.TempDir()
		}
	}

	if !c.File.disableChecksumsSet {
		if c.UseEnv {
			c.File.DisableChecksums = !verifyChecksums.Value()
		}
		c.File.disableChecksumsSet = true
	}
}
