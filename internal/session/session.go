// Package session implements playback control over a single decoded
// audio buffer: start/stop/seek, looping over a sub-region, volume and
// time-position reporting synchronized to the graph's hardware clock.
//
// The session reconciles the monotonically increasing hardware clock
// with pause/resume/seek/loop events to produce a consistent logical
// position. All state transitions serialize on an internal mutex, so
// caller-side operations and graph callbacks (Tick, NotifyLoopWrap)
// interleave but never run concurrently.
package session

import (
	"errors"
	"sync"

	"github.com/nvaucher/lowtide/internal/audiobuf"
)

var (
	// ErrNoGraph is returned by New when the output-graph capability
	// is missing.
	ErrNoGraph = errors.New("session: graph capability is required")
	// ErrNoClock is returned by New when the hardware clock capability
	// is missing.
	ErrNoClock = errors.New("session: clock capability is required")
)

// Session tracks playback over one decoded buffer. One active play
// segment at a time; replacing the buffer resets all transient state.
type Session struct {
	mu    sync.Mutex
	graph Graph
	clock Clock
	buf   *audiobuf.Buffer

	// Segment bookkeeping. lastPause is authoritative while paused;
	// lastStart/startTime are meaningful only while playing.
	paused         bool
	lastStart      float64 // logical offset the current segment began at
	startTime      float64 // hardware timestamp of the segment start
	lastPause      float64 // frozen logical position while paused
	scheduledPause float64 // logical offset at which playback auto-stops
	rate           float64

	// Loop region. lastLoop == 0 means no wrap observed this segment.
	loopSelection bool // feature flag: loop-region operations enabled
	loopEnabled   bool
	loopStart     float64
	loopEnd       float64
	loopedAtStart bool    // the region was valid when the segment began
	lastLoop      float64 // hardware timestamp of the most recent wrap

	subs   []*Subscription
	subsMu sync.RWMutex

	destroyed bool
}

// Option configures a Session.
type Option func(*Session)

// WithLoopSelection toggles the loop-region feature. When disabled,
// UpdateSelection and ClearSelection return false without mutating
// state. Enabled by default.
func WithLoopSelection(enabled bool) Option {
	return func(s *Session) { s.loopSelection = enabled }
}

// New creates a session over the given graph and clock capabilities.
// A missing capability is a construction-time failure; there is no
// degraded mode.
func New(g Graph, c Clock, opts ...Option) (*Session, error) {
	if g == nil {
		return nil, ErrNoGraph
	}
	if c == nil {
		return nil, ErrNoClock
	}
	s := &Session{
		graph:         g,
		clock:         c,
		paused:        true,
		rate:          1,
		loopSelection: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load adopts a decoded buffer and resets all transient playback state.
// Any active source is stopped. Emits a ready event.
func (s *Session) Load(buf *audiobuf.Buffer) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.graph.Stop()
	s.buf = buf
	s.paused = true
	s.lastStart = 0
	s.startTime = 0
	s.lastPause = 0
	s.scheduledPause = 0
	s.loopEnabled = false
	s.loopStart = 0
	s.loopEnd = 0
	s.loopedAtStart = false
	s.lastLoop = 0
	s.graph.SetLoop(false, 0, 0)
	s.graph.SetBuffer(buf)
	dur := s.durationLocked()
	s.mu.Unlock()

	s.emit(func(sub *Subscription) { sub.sendReady(ReadyEvent{Duration: dur}) })
}

// LoadBytes decodes raw audio bytes asynchronously and adopts the
// resulting buffer. On decode failure an error event is emitted and the
// session keeps its pre-load state. An in-flight decode is not
// cancelled by a later load; avoid overlapping loads if that matters.
func (s *Session) LoadBytes(data []byte) {
	go func() {
		buf, err := audiobuf.Decode(data)
		if err != nil {
			s.emit(func(sub *Subscription) {
				sub.sendError(ErrorEvent{Op: "decode", Err: err})
			})
			return
		}
		s.Load(buf)
	}()
}

// Play starts playback from the current logical time to the end of the
// buffer. Silent no-op when no buffer is loaded.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(s.positionLocked(), s.durationLocked())
}

// PlayRange starts playback over [start, end) seconds. A start past the
// end is clamped back to 0 rather than rejected. Silent no-op when no
// buffer is loaded.
func (s *Session) PlayRange(start, end float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(start, end)
}

func (s *Session) playLocked(start, end float64) error {
	if s.destroyed || s.buf == nil {
		return nil
	}
	if start > end {
		start = 0
	}

	s.lastStart = start
	s.startTime = s.clock.Now()
	s.lastPause = 0
	s.paused = false
	s.scheduledPause = end

	if s.loopSelection {
		s.setupLoopLocked()
	}
	err := s.graph.Play(start, end-start, s.rate)
	s.emit(func(sub *Subscription) { sub.sendPlay(PlayEvent{Start: start, End: end}) })
	return err
}

// Pause freezes the logical position and stops the active source.
// Repeated calls are no-ops: while paused the position rule returns the
// already-frozen value.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.pauseLocked()
	return nil
}

func (s *Session) pauseLocked() {
	pos := s.positionLocked()
	s.lastPause = pos
	s.paused = true
	s.graph.Stop()
	s.emit(func(sub *Subscription) { sub.sendPause(PauseEvent{Time: pos}) })
}

// SeekTo moves the logical position, clamped into [0, duration]. While
// paused only the frozen position changes; while playing the source is
// restarted from the new position up to the current scheduled pause.
func (s *Session) SeekTo(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.buf == nil {
		return nil
	}
	if seconds < 0 {
		seconds = 0
	}
	if dur := s.durationLocked(); seconds > dur {
		seconds = dur
	}
	if s.paused {
		s.lastPause = seconds
		return nil
	}
	return s.playLocked(seconds, s.scheduledPause)
}

// positionSource identifies which reference frame the logical position
// is computed from. Evaluated in fixed priority order: paused wins over
// an active loop, which wins over plain segment playback.
type positionSource int

const (
	positionPaused positionSource = iota
	positionLoop
	positionSegment
)

func (s *Session) positionSourceLocked() positionSource {
	switch {
	case s.paused:
		return positionPaused
	case s.loopActiveLocked():
		return positionLoop
	default:
		return positionSegment
	}
}

// positionLocked computes the logical position. After a loop wrap the
// reference point rebases onto the wrap timestamp; accumulating elapsed
// time against the original segment epoch would drift one loop length
// per wrap.
func (s *Session) positionLocked() float64 {
	switch s.positionSourceLocked() {
	case positionPaused:
		return s.lastPause
	case positionLoop:
		return s.loopStart + (s.clock.Now()-s.lastLoop)*s.rate
	default:
		return s.lastStart + (s.clock.Now()-s.startTime)*s.rate
	}
}

// CurrentTime returns the logical position in seconds. The value is not
// clamped to the buffer duration; boundary handling is the poll
// driver's job.
func (s *Session) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

// PlayedPercents returns the position as a fraction of the buffer
// duration, or 0 for an empty buffer.
func (s *Session) PlayedPercents() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	dur := s.durationLocked()
	if dur == 0 {
		return 0
	}
	return s.positionLocked() / dur
}

// Duration returns the buffer duration in seconds, 0 when no buffer is
// loaded.
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durationLocked()
}

func (s *Session) durationLocked() float64 {
	if s.buf == nil {
		return 0
	}
	return s.buf.Duration()
}

// Playing reports whether a play segment is in progress.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.paused
}

// SetPlaybackRate sets the elapsed-time multiplier. A rate of 0 or less
// falls back to 1. Positions already frozen in lastPause or anchored at
// startTime are not rescaled; only future elapsed time is affected.
func (s *Session) SetPlaybackRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rate <= 0 {
		rate = 1
	}
	s.rate = rate
}

// PlaybackRate returns the current rate multiplier.
func (s *Session) PlaybackRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetVolume passes the level through to the graph's gain node,
// unclamped. The gain node is authoritative.
func (s *Session) SetVolume(v float64) {
	s.graph.SetGain(v)
}

// Volume returns the graph's gain level.
func (s *Session) Volume() float64 {
	return s.graph.Gain()
}

// Subscribe creates a new event subscription.
func (s *Session) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Destroy stops playback, releases graph resources and closes all
// subscriptions. No operation may resume the session afterwards.
func (s *Session) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.graph.Stop()
	s.graph.Close()
	s.buf = nil
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()
}

// emit delivers an event to every subscriber, non-blocking.
func (s *Session) emit(send func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		send(sub)
	}
}
