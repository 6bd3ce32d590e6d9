package session

// PlayEvent is emitted when a play segment begins.
type PlayEvent struct {
	Start float64 // logical offset the segment starts at
	End   float64 // scheduled pause offset
}

// PauseEvent is emitted when playback pauses, whether requested or
// because the poll driver crossed the scheduled pause boundary.
type PauseEvent struct {
	Time float64 // frozen logical position
}

// FinishEvent is emitted when playback ran past the end of the buffer.
// Reaching the end of a sub-range selection pauses without finishing.
type FinishEvent struct{}

// ProcessEvent is emitted on every poll tick while playing.
type ProcessEvent struct {
	Time float64 // current logical position
}

// ReadyEvent is emitted when a decoded buffer has been adopted.
type ReadyEvent struct {
	Duration float64
}

// ErrorEvent is emitted when an asynchronous operation fails.
type ErrorEvent struct {
	Op  string // e.g., "decode"
	Err error
}
