package store

// Iterator is a read-only traversal over the tags of the records in a
// [Store].
type Iterator interface {
	// Next returns the next tag. ok is false once the traversal is
	// exhausted.
	Next() (tag uint32, ok bool)
}

// IteratorFunc is an adaptor that allows an ordinary function to be used as
// an [Iterator].
type IteratorFunc func() (uint32, bool)

// Next returns fn().
func (fn IteratorFunc) Next() (uint32, bool) {
	return fn()
}

// CollectTags returns the tags of all records in s, newest first.
func CollectTags(s Store) []uint32 {
	var tags []uint32

	it := s.Tags()
	for {
		tag, ok := it.Next()
		if !ok {
			return tags
		}
		tags = append(tags, tag)
	}
}
