package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dogmatiq/undojournal/store"
	"github.com/dogmatiq/undojournal/store/filestore"
	"github.com/dogmatiq/undojournal/store/memorystore"
	"github.com/spf13/afero"
)

// OpenStore returns a new store of the configured kind.
//
// name identifies the store among others opened with the same configuration.
// The returned function releases any resources held by the store; it must be
// called once the store is no longer used.
func (c *Config) OpenStore(
	ctx context.Context,
	fs afero.Fs,
	name string,
) (store.Store, func() error, error) {
	switch c.Backend {
	case MemoryBackend:
		s := memorystore.New(c.Memory.MaxSteps, c.Memory.MaxBytes)
		return s, func() error { return nil }, nil

	case FileBackend:
		if err := fs.MkdirAll(c.File.Dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("unable to create storage directory: %w", err)
		}

		f, err := filestore.OpenStorage(fs, filepath.Join(c.File.Dir, name+".undo"))
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open storage file: %w", err)
		}

		s := &filestore.Store{
			DisableChecksums: c.File.DisableChecksums,
		}

		if err := s.SetStorage(ctx, f); err != nil {
			f.Close()
			return nil, nil, err
		}

		return s, func() error {
			if err := s.Clear(ctx); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend: %q", c.Backend)
	}
}
