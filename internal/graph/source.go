package graph

import (
	"sync"
	"sync/atomic"

	"github.com/nvaucher/lowtide/internal/audiobuf"
)

// source renders buffer frames over a fixed range, optionally wrapping
// a loop region. Frame positions are in the buffer's own sample rate;
// rate and output-rate conversion happen further down the chain.
//
// Stream runs on the speaker goroutine. Loop bounds may be replaced
// mid-flight from other goroutines; stop is a lock-free flag so the
// session can release the source from inside a poll callback.
type source struct {
	buf *audiobuf.Buffer
	pos int
	end int // exclusive frame bound

	mu        sync.Mutex
	loopOn    bool
	loopStart int
	loopEnd   int

	stopped   atomic.Bool
	exhausted atomic.Bool

	onWrap func()
}

func newSource(buf *audiobuf.Buffer, start, end int, onWrap func()) *source {
	if start < 0 {
		start = 0
	}
	if end > buf.NumFrames() {
		end = buf.NumFrames()
	}
	return &source{buf: buf, pos: start, end: end, onWrap: onWrap}
}

// setLoop replaces the loop region, effective from the next streamed
// frame so an ongoing loop continues seamlessly with the new bounds.
func (s *source) setLoop(enabled bool, start, end int) {
	s.mu.Lock()
	s.loopOn = enabled
	s.loopStart = start
	s.loopEnd = end
	s.mu.Unlock()
}

// stop releases the source: the next Stream call reports it drained and
// the mixer drops it.
func (s *source) stop() {
	s.stopped.Store(true)
}

// done reports whether the source stopped or ran out of frames.
func (s *source) done() bool {
	return s.stopped.Load() || s.exhausted.Load()
}

func (s *source) Stream(samples [][2]float64) (int, bool) {
	if s.stopped.Load() {
		return 0, false
	}

	s.mu.Lock()
	loopOn, loopStart, loopEnd := s.loopOn, s.loopStart, s.loopEnd
	s.mu.Unlock()

	wraps := 0
	i := 0
	for ; i < len(samples); i++ {
		if loopOn && loopStart < loopEnd && s.pos >= loopEnd {
			s.pos = loopStart
			wraps++
		}
		if s.pos >= s.end {
			break
		}
		samples[i] = s.buf.Frame(s.pos)
		s.pos++
	}

	// Wrap notifications fire outside any lock; the session may call
	// back into the graph while handling them.
	if s.onWrap != nil {
		for range wraps {
			s.onWrap()
		}
	}

	if i == 0 {
		s.exhausted.Store(true)
		return 0, false
	}
	return i, true
}

func (s *source) Err() error { return nil }
