// Package memorystore provides a [store.Store] implementation that keeps
// records in memory, subject to a maximum number of records and a maximum
// number of bytes.
//
// When a push would exceed either limit the oldest records are evicted to make
// room. Eviction is silent; it manifests only as a reduced undo depth.
package memorystore
