package memorystore

import (
	"context"

	"github.com/dogmatiq/undojournal/store"
)

// RecordOverhead is the number of bytes charged against the byte budget for
// each record, in addition to the size of its payload. It accounts for the
// bookkeeping that accompanies each allocation.
const RecordOverhead = 32

// Store is an implementation of [store.Store] that keeps records in a ring
// buffer in memory.
//
// The zero value is an empty store with no limits.
type Store struct {
	// OnEvict, if non-nil, is called for each record that is evicted to
	// satisfy the store's limits. The record's payload must not be retained
	// after OnEvict returns.
	OnEvict func(store.Record)

	maxSteps  uint32
	maxBytes  uint32
	bytesUsed uint64

	ring  []store.Record
	head  int
	count int
}

var _ store.Store = (*Store)(nil)

// New returns a new store with the given limits.
//
// A limit of zero means that dimension is unbounded.
func New(maxSteps, maxBytes uint32) *Store {
	return &Store{
		maxSteps: maxSteps,
		maxBytes: maxBytes,
	}
}

// Push adds a record to the back of the store.
//
// If the record does not fit within the store's limits, the oldest records
// are evicted until it does. If the record does not fit even once the store
// is empty it is stored anyway, such that the most recent edit can always be
// undone. In that case the byte budget is exceeded until the next push or
// call to [Store.SetLimits].
func (s *Store) Push(_ context.Context, rec store.Record) error {
	need := cost(rec.Payload)

	var spare []byte
	for s.count > 0 && !s.fits(need) {
		evicted := s.evict()
		if cap(evicted) > cap(spare) {
			spare = evicted
		}
	}

	var buf []byte
	if cap(spare) >= len(rec.Payload) {
		buf = spare[:len(rec.Payload)]
	} else {
		buf = make([]byte, len(rec.Payload))
	}
	copy(buf, rec.Payload)

	s.append(store.Record{
		Payload: buf,
		Tag:     rec.Tag,
	})
	s.bytesUsed += need

	return nil
}

// Pop removes the most recently pushed record from the store and returns it.
//
// It returns [store.ErrEmpty] if the store is empty.
func (s *Store) Pop(context.Context) (store.Record, error) {
	if s.count == 0 {
		return store.Record{}, store.ErrEmpty
	}

	i := s.index(s.count - 1)
	rec := s.ring[i]
	s.ring[i] = store.Record{}

	s.count--
	s.bytesUsed -= cost(rec.Payload)

	return rec, nil
}

// HasData returns true if the store contains at least one record.
func (s *Store) HasData() bool {
	return s.count > 0
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return s.count
}

// BytesUsed returns the number of bytes charged against the byte budget,
// including [RecordOverhead] for each record.
func (s *Store) BytesUsed() uint64 {
	return s.bytesUsed
}

// Limits returns the store's current limits.
func (s *Store) Limits() (maxSteps, maxBytes uint32) {
	return s.maxSteps, s.maxBytes
}

// SetLimits changes the store's limits, evicting the oldest records until the
// store satisfies them.
//
// A limit of zero means that dimension is unbounded.
func (s *Store) SetLimits(maxSteps, maxBytes uint32) {
	s.maxSteps = maxSteps
	s.maxBytes = maxBytes

	for s.count > 0 && s.exceeded() {
		s.evict()
	}
}

// Clear removes all records from the store.
func (s *Store) Clear(context.Context) error {
	clear(s.ring)
	s.head = 0
	s.count = 0
	s.bytesUsed = 0
	return nil
}

// Tags returns an iterator over the tags of the records in the store, newest
// first.
func (s *Store) Tags() store.Iterator {
	i := s.count

	return store.IteratorFunc(func() (uint32, bool) {
		if i == 0 {
			return 0, false
		}
		i--
		return s.ring[s.index(i)].Tag, true
	})
}

// fits returns true if a record costing need bytes can be appended without
// exceeding either limit.
func (s *Store) fits(need uint64) bool {
	if s.maxSteps != 0 && uint64(s.count)+1 > uint64(s.maxSteps) {
		return false
	}

	if s.maxBytes != 0 && s.bytesUsed+need > uint64(s.maxBytes) {
		return false
	}

	return true
}

// exceeded returns true if the store currently violates either limit.
func (s *Store) exceeded() bool {
	if s.maxSteps != 0 && uint64(s.count) > uint64(s.maxSteps) {
		return true
	}

	return s.maxBytes != 0 && s.bytesUsed > uint64(s.maxBytes)
}

// evict removes the oldest record and returns its payload buffer so that it
// may be reused.
func (s *Store) evict() []byte {
	rec := s.ring[s.head]
	s.ring[s.head] = store.Record{}

	s.head = (s.head + 1) % len(s.ring)
	s.count--
	s.bytesUsed -= cost(rec.Payload)

	if s.OnEvict != nil {
		s.OnEvict(rec)
	}

	return rec.Payload
}

// append adds rec to the back of the ring, growing it if necessary.
func (s *Store) append(rec store.Record) {
	if s.count == len(s.ring) {
		s.grow()
	}

	s.ring[s.index(s.count)] = rec
	s.count++
}

func (s *Store) grow() {
	n := len(s.ring) * 2
	if n == 0 {
		n = 8
	}

	ring := make([]store.Record, n)
	for i := 0; i < s.count; i++ {
		ring[i] = s.ring[s.index(i)]
	}

	s.ring = ring
	s.head = 0
}

// index returns the position within the ring of the i'th oldest record.
func (s *Store) index(i int) int {
	return (s.head + i) % len(s.ring)
}

func cost(payload []byte) uint64 {
	return uint64(len(payload)) + RecordOverhead
}
