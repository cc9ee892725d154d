package undojournal

// State is the recording state of a [Journal].
type State int

const (
	// Idle is the state of a journal before [Journal.StartUndoRecord] is
	// called.
	Idle State = iota

	// Recording is the state in which deltas passed to
	// [Journal.RecordDelta] are added to the journal.
	Recording

	// Suspended is the state in which recording is disabled or blocked.
	// Deltas are discarded, but existing history is kept.
	Suspended

	// Replaying is the state of a journal while a record is being passed to
	// its [Dispatcher].
	Replaying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Suspended:
		return "suspended"
	case Replaying:
		return "replaying"
	default:
		return "unknown"
	}
}
