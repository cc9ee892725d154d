package filestore

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// Stream is a seekable byte stream that can be truncated.
//
// The length of the stream is determined by seeking to its end.
type Stream interface {
	io.ReadWriteSeeker
	Truncate(size int64) error
}

var (
	_ Stream = (*os.File)(nil)
	_ Stream = (afero.File)(nil)
)

// OpenStorage opens (or creates) the file at the given path within fs so that
// it may be used as the storage stream of a [Store].
//
// The caller owns the returned file and must close it once the store is no
// longer in use.
func OpenStorage(fs afero.Fs, path string) (afero.File, error) {
	return fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
}

// streamLength returns the length of s.
func streamLength(s Stream) (int64, error) {
	return s.Seek(0, io.SeekEnd)
}
