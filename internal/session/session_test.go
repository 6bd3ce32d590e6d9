package session

import (
	"math"
	"testing"

	"github.com/nvaucher/lowtide/internal/audiobuf"
)

const floatTol = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < floatTol
}

func makeBuffer(seconds float64) *audiobuf.Buffer {
	const rate = 1000
	return audiobuf.NewBuffer(rate, 2, make([][2]float64, int(seconds*rate)))
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *MockGraph, *MockClock) {
	t.Helper()
	g := NewMockGraph()
	c := NewMockClock()
	s, err := New(g, c, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Load(makeBuffer(10))
	return s, g, c
}

func TestNew_MissingCapabilities(t *testing.T) {
	if _, err := New(nil, NewMockClock()); err != ErrNoGraph {
		t.Errorf("New(nil graph) err = %v, want ErrNoGraph", err)
	}
	if _, err := New(NewMockGraph(), nil); err != ErrNoClock {
		t.Errorf("New(nil clock) err = %v, want ErrNoClock", err)
	}
}

func TestPlay_NoBuffer_IsNoOp(t *testing.T) {
	g := NewMockGraph()
	s, err := New(g, NewMockClock())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Play(); err != nil {
		t.Errorf("Play without buffer: %v", err)
	}
	if len(g.PlayCalls()) != 0 {
		t.Errorf("graph Play called %d times, want 0", len(g.PlayCalls()))
	}
	if s.Playing() {
		t.Error("Playing() = true after no-op Play")
	}
}

func TestPlayRange_StartsGraphSource(t *testing.T) {
	s, g, _ := newTestSession(t)
	if err := s.PlayRange(2, 8); err != nil {
		t.Fatalf("PlayRange: %v", err)
	}
	calls := g.PlayCalls()
	if len(calls) != 1 {
		t.Fatalf("graph Play called %d times, want 1", len(calls))
	}
	if !approx(calls[0].Offset, 2) || !approx(calls[0].Duration, 6) || !approx(calls[0].Rate, 1) {
		t.Errorf("Play call = %+v, want offset 2 duration 6 rate 1", calls[0])
	}
	if !s.Playing() {
		t.Error("Playing() = false after PlayRange")
	}
}

func TestPlayRange_DefensiveClamp(t *testing.T) {
	s, g, _ := newTestSession(t)
	if err := s.PlayRange(8, 2); err != nil {
		t.Fatalf("PlayRange: %v", err)
	}
	calls := g.PlayCalls()
	if len(calls) != 1 {
		t.Fatalf("graph Play called %d times, want 1", len(calls))
	}
	if !approx(calls[0].Offset, 0) {
		t.Errorf("Play offset = %v, want 0 (reversed range clamps start)", calls[0].Offset)
	}
	if got := s.CurrentTime(); !approx(got, 0) {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
}

func TestCurrentTime_TracksHardwareClock(t *testing.T) {
	s, _, c := newTestSession(t)
	if err := s.PlayRange(1, 10); err != nil {
		t.Fatalf("PlayRange: %v", err)
	}
	c.Advance(2.5)
	if got := s.CurrentTime(); !approx(got, 3.5) {
		t.Errorf("CurrentTime() = %v, want 3.5", got)
	}
}

func TestCurrentTime_RateScaling(t *testing.T) {
	s, _, c := newTestSession(t)
	s.SetPlaybackRate(2)
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	c.Advance(1)
	if got := s.CurrentTime(); !approx(got, 2) {
		t.Errorf("CurrentTime() = %v, want 2 at rate 2", got)
	}
}

func TestSetPlaybackRate_InvalidFallsBackToOne(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetPlaybackRate(0)
	if got := s.PlaybackRate(); !approx(got, 1) {
		t.Errorf("PlaybackRate() = %v after SetPlaybackRate(0), want 1", got)
	}
	s.SetPlaybackRate(-3)
	if got := s.PlaybackRate(); !approx(got, 1) {
		t.Errorf("PlaybackRate() = %v after SetPlaybackRate(-3), want 1", got)
	}
}

func TestSetPlaybackRate_DoesNotRescaleFrozenPosition(t *testing.T) {
	s, _, c := newTestSession(t)
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	c.Advance(2)
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	s.SetPlaybackRate(4)
	if got := s.CurrentTime(); !approx(got, 2) {
		t.Errorf("CurrentTime() = %v after rate change while paused, want 2", got)
	}
}

func TestPause_FreezesPosition(t *testing.T) {
	s, g, c := newTestSession(t)
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	c.Advance(4)
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got := s.CurrentTime(); !approx(got, 4) {
		t.Errorf("CurrentTime() = %v after pause, want 4", got)
	}
	if g.HasSource() {
		t.Error("graph still has a source after Pause")
	}
	c.Advance(3)
	if got := s.CurrentTime(); !approx(got, 4) {
		t.Errorf("CurrentTime() = %v while paused, want frozen 4", got)
	}
}

func TestPause_Idempotent(t *testing.T) {
	s, _, c := newTestSession(t)
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	c.Advance(4)
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := s.Pause(); err != nil {
		t.Fatalf("second Pause: %v", err)
	}
	c.Advance(2)
	if err := s.Pause(); err != nil {
		t.Fatalf("third Pause: %v", err)
	}
	if got := s.CurrentTime(); !approx(got, 4) {
		t.Errorf("CurrentTime() = %v after repeated pauses, want 4", got)
	}
}

func TestPause_SafeWhenNeverPlayed(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got := s.CurrentTime(); !approx(got, 0) {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
}

func TestPlayedPercents_MatchesSeekFraction(t *testing.T) {
	s, _, _ := newTestSession(t)
	for _, p := range []float64{0, 0.1, 0.25, 0.5, 0.99, 1} {
		if err := s.SeekTo(p * s.Duration()); err != nil {
			t.Fatalf("SeekTo(%v): %v", p, err)
		}
		if got := s.PlayedPercents(); !approx(got, p) {
			t.Errorf("PlayedPercents() = %v after seeking to fraction %v", got, p)
		}
	}
}

func TestPlayedPercents_ZeroDuration(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Load(makeBuffer(0))
	if got := s.PlayedPercents(); got != 0 {
		t.Errorf("PlayedPercents() = %v for empty buffer, want 0", got)
	}
}

func TestSeekTo_PausedClampsIntoBuffer(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.SeekTo(-5); err != nil {
		t.Fatalf("SeekTo(-5): %v", err)
	}
	if got := s.CurrentTime(); !approx(got, 0) {
		t.Errorf("CurrentTime() = %v after SeekTo(-5), want 0", got)
	}
	if err := s.SeekTo(42); err != nil {
		t.Fatalf("SeekTo(42): %v", err)
	}
	if got := s.CurrentTime(); !approx(got, 10) {
		t.Errorf("CurrentTime() = %v after SeekTo(42), want 10", got)
	}
}

func TestSeekTo_WhilePlayingRestartsSource(t *testing.T) {
	s, g, c := newTestSession(t)
	if err := s.PlayRange(0, 8); err != nil {
		t.Fatalf("PlayRange: %v", err)
	}
	c.Advance(1)
	if err := s.SeekTo(5); err != nil {
		t.Fatalf("SeekTo: %v", err)
	}
	calls := g.PlayCalls()
	if len(calls) != 2 {
		t.Fatalf("graph Play called %d times, want 2", len(calls))
	}
	if !approx(calls[1].Offset, 5) || !approx(calls[1].Duration, 3) {
		t.Errorf("restart Play call = %+v, want offset 5 duration 3", calls[1])
	}
	if !s.Playing() {
		t.Error("Playing() = false after seek while playing")
	}
	if got := s.CurrentTime(); !approx(got, 5) {
		t.Errorf("CurrentTime() = %v after seek, want 5", got)
	}
}

func TestVolume_PassthroughToGraphGain(t *testing.T) {
	s, g, _ := newTestSession(t)
	s.SetVolume(0.3)
	if got := g.Gain(); !approx(got, 0.3) {
		t.Errorf("graph gain = %v, want 0.3", got)
	}
	if got := s.Volume(); !approx(got, 0.3) {
		t.Errorf("Volume() = %v, want 0.3", got)
	}
}

func TestLoad_ResetsTransientState(t *testing.T) {
	s, _, c := newTestSession(t)
	s.UpdateSelection(0.2, 0.5)
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	c.Advance(3)

	s.Load(makeBuffer(4))
	if s.Playing() {
		t.Error("Playing() = true after Load")
	}
	if got := s.CurrentTime(); !approx(got, 0) {
		t.Errorf("CurrentTime() = %v after Load, want 0", got)
	}
	if got := s.Duration(); !approx(got, 4) {
		t.Errorf("Duration() = %v after Load, want 4", got)
	}
}

func TestDestroy_StopsGraphAndRejectsOperations(t *testing.T) {
	s, g, _ := newTestSession(t)
	sub := s.Subscribe()
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	before := len(g.PlayCalls())

	s.Destroy()
	if !g.Closed() {
		t.Error("graph not closed by Destroy")
	}
	if g.HasSource() {
		t.Error("graph still has a source after Destroy")
	}
	select {
	case <-sub.Done:
	default:
		t.Error("subscription Done not closed by Destroy")
	}

	if err := s.Play(); err != nil {
		t.Errorf("Play after Destroy: %v", err)
	}
	if len(g.PlayCalls()) != before {
		t.Error("Play after Destroy reached the graph")
	}

	s.Destroy() // must be safe
}
