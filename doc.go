// Package undojournal records reversible edits made to an in-memory object
// graph and replays them in reverse to undo those edits.
//
// A [Journal] owns a single [store.Store]. The object model calls
// [Journal.RecordDelta] with an opaque payload describing how to reverse each
// mutation it performs. When the user requests an undo, the journal pops the
// most recent record and hands it to a [Dispatcher], which applies the
// inverse edit to the object graph.
//
// # Marks and transactions
//
// [Journal.SetUndoMark] remembers the current position in the log;
// [Journal.UndoBack] undoes every record pushed since the most recent mark.
// Transactions nest: [Journal.AbortTransaction] undoes every record pushed
// since the matching [Journal.StartTransaction].
//
// A journal is not safe for concurrent use. Hosts that edit a document from
// multiple goroutines must serialize all journal operations themselves.
package undojournal
