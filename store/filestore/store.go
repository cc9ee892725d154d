package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/dogmatiq/undojournal/store"
)

var (
	// ErrNoStorage is returned when a record is pushed to or popped from a
	// [Store] that has no storage stream.
	ErrNoStorage = errors.New("no storage stream is bound to the undo log")

	// ErrCorrupt is returned by [Store.Pop] and [Store.PopTo] when the bytes
	// read from the storage stream do not match the checksum computed when
	// the record was pushed.
	ErrCorrupt = errors.New("undo log storage is corrupt")
)

// Store is an implementation of [store.Store] that writes record payloads to
// a [Stream].
//
// The store does not own the stream. It never opens or closes it, it only
// seeks, reads, writes and truncates it. The stream must remain usable for as
// long as the store is in use.
type Store struct {
	// DisableChecksums disables verification of record payloads when they are
	// popped from the store.
	DisableChecksums bool

	storage Stream
	records []descriptor
	size    int64
}

// descriptor describes a record whose payload is held in the storage stream.
type descriptor struct {
	Tag      uint32
	Length   int64
	Checksum uint64
}

var _ store.Store = (*Store)(nil)

// SetStorage binds the store to the given stream.
//
// The stream is truncated to zero length and any records already in the store
// are discarded.
func (s *Store) SetStorage(_ context.Context, storage Stream) error {
	if storage == nil {
		return errors.New("storage stream must not be nil")
	}

	if err := storage.Truncate(0); err != nil {
		return fmt.Errorf("unable to truncate storage stream: %w", err)
	}

	s.storage = storage
	s.records = nil
	s.size = 0

	return nil
}

// Push adds a record to the back of the store.
func (s *Store) Push(ctx context.Context, rec store.Record) error {
	return s.PushFrom(
		ctx,
		bytes.NewReader(rec.Payload),
		int64(len(rec.Payload)),
		rec.Tag,
	)
}

// PushFrom adds a record to the back of the store. The record's payload is
// the next size bytes read from src.
//
// If src yields fewer than size bytes, or the storage stream cannot be
// written, the storage stream is restored to its prior length and an error is
// returned.
func (s *Store) PushFrom(
	_ context.Context,
	src io.Reader,
	size int64,
	tag uint32,
) error {
	if s.storage == nil {
		return ErrNoStorage
	}

	if size < 0 {
		return fmt.Errorf("record size must not be negative, got %d", size)
	}

	end, err := streamLength(s.storage)
	if err != nil {
		return fmt.Errorf("unable to seek to the end of the storage stream: %w", err)
	}

	if end != s.size {
		return fmt.Errorf(
			"%w: storage stream is %d byte(s) long, expected %d",
			ErrCorrupt,
			end,
			s.size,
		)
	}

	h := xxhash.New()

	if _, err := io.CopyN(
		io.MultiWriter(s.storage, h),
		src,
		size,
	); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return s.rollback(
			fmt.Errorf("unable to write %d-byte record to storage stream: %w", size, err),
		)
	}

	s.records = append(s.records, descriptor{
		Tag:      tag,
		Length:   size,
		Checksum: h.Sum64(),
	})
	s.size += size

	return nil
}

// Pop removes the most recently pushed record from the store and returns it.
func (s *Store) Pop(ctx context.Context) (store.Record, error) {
	var buf bytes.Buffer

	if n := len(s.records); n != 0 {
		buf.Grow(int(s.records[n-1].Length))
	}

	tag, err := s.PopTo(ctx, &buf)
	if err != nil {
		return store.Record{}, err
	}

	return store.Record{
		Payload: buf.Bytes(),
		Tag:     tag,
	}, nil
}

// PopTo removes the most recently pushed record from the store, writes its
// payload to dst and returns its tag.
//
// If the payload does not match its checksum, [ErrCorrupt] is returned and
// the record remains in the store. dst may have already received the
// corrupted payload.
func (s *Store) PopTo(_ context.Context, dst io.Writer) (uint32, error) {
	if s.storage == nil {
		return 0, ErrNoStorage
	}

	n := len(s.records)
	if n == 0 {
		return 0, store.ErrEmpty
	}

	rec := s.records[n-1]
	offset := s.size - rec.Length

	if _, err := s.storage.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("unable to seek to record at offset %d of storage stream: %w", offset, err)
	}

	h := xxhash.New()
	w := dst
	if !s.DisableChecksums {
		w = io.MultiWriter(dst, h)
	}

	if _, err := io.CopyN(w, s.storage, rec.Length); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("unable to read %d-byte record from storage stream: %w", rec.Length, err)
	}

	if !s.DisableChecksums && h.Sum64() != rec.Checksum {
		return 0, fmt.Errorf(
			"%w: checksum mismatch for %d-byte record at offset %d",
			ErrCorrupt,
			rec.Length,
			offset,
		)
	}

	if err := s.storage.Truncate(offset); err != nil {
		return 0, fmt.Errorf("unable to truncate storage stream to %d byte(s): %w", offset, err)
	}

	s.records = s.records[:n-1]
	s.size = offset

	return rec.Tag, nil
}

// HasData returns true if the store contains at least one record.
func (s *Store) HasData() bool {
	return len(s.records) != 0
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Size returns the total size of the payloads in the store, which is also the
// expected length of the storage stream.
func (s *Store) Size() int64 {
	return s.size
}

// Clear removes all records from the store and truncates the storage stream.
func (s *Store) Clear(context.Context) error {
	if s.storage != nil {
		if err := s.storage.Truncate(0); err != nil {
			return fmt.Errorf("unable to truncate storage stream: %w", err)
		}
	}

	s.records = nil
	s.size = 0

	return nil
}

// Tags returns an iterator over the tags of the records in the store, newest
// first.
func (s *Store) Tags() store.Iterator {
	i := len(s.records)

	return store.IteratorFunc(func() (uint32, bool) {
		if i == 0 {
			return 0, false
		}
		i--
		return s.records[i].Tag, true
	})
}

// rollback restores the storage stream to the length it had before a failed
// push.
func (s *Store) rollback(cause error) error {
	if err := s.storage.Truncate(s.size); err != nil {
		return errors.Join(
			cause,
			fmt.Errorf("unable to restore storage stream to %d byte(s): %w", s.size, err),
		)
	}
	return cause
}
