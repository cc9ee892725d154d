// Package filestore provides a [store.Store] implementation that appends
// record payloads to an externally owned byte stream, such as a file.
//
// Only a small descriptor for each record is held in memory. The stream
// contains the concatenated payloads and nothing else; it is not
// self-describing and cannot be used to recover the log after the process
// exits.
package filestore
