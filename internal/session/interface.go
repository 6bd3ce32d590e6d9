package session

import "github.com/nvaucher/lowtide/internal/audiobuf"

// Graph is the output-graph capability the session drives. It owns the
// source/gain/filter nodes; the session only issues logical commands.
//
// Implementations must tolerate Stop and SetLoop without an active
// source (playback controls are safe to call speculatively).
type Graph interface {
	// SetBuffer hands the decoded buffer to the graph. Sources created
	// by later Play calls render from it.
	SetBuffer(buf *audiobuf.Buffer)

	// Play replaces any active source with a new one rendering
	// [offset, offset+duration) seconds of the buffer at the given rate.
	Play(offset, duration, rate float64) error

	// Stop stops and releases the active source, if any.
	Stop()

	// HasSource reports whether a source is currently active.
	HasSource() bool

	// SetLoop stores the loop region and pushes it into the active
	// source if one exists.
	SetLoop(enabled bool, start, end float64)

	// Gain control, passthrough. The graph's gain node is authoritative;
	// the session neither clamps nor validates.
	SetGain(v float64)
	Gain() float64

	// Close releases all graph resources.
	Close()
}

// Clock is a monotonic hardware time source in seconds. It advances in
// real time only while the output graph is actively rendering.
type Clock interface {
	Now() float64
}
