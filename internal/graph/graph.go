// Package graph owns the audio output chain: buffer source, optional
// loop wrapping, resampling for playback rate, a logarithmic gain
// stage, and the sample-counting hardware clock. It adapts the gopxl
// beep speaker into the capability interfaces the session consumes.
//
// The speaker render goroutine never blocks on session code: node
// callbacks enqueue events on a buffered channel and a dispatch
// goroutine delivers them. Sources are released through a lock-free
// flag so the session can stop playback from inside a poll callback.
package graph

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/nvaucher/lowtide/internal/audiobuf"
	"github.com/nvaucher/lowtide/internal/session"
)

var (
	_ session.Graph = (*Graph)(nil)
	_ session.Clock = (*SampleClock)(nil)
)

var (
	// ErrNoBuffer is returned by Play when no buffer is installed.
	ErrNoBuffer = errors.New("graph: no buffer installed")
	// ErrClosed is returned by Play after Close.
	ErrClosed = errors.New("graph: closed")
)

const (
	DefaultSampleRate   = 44100
	DefaultPollInterval = 4096

	resampleQuality = 4
	eventQueueSize  = 64
)

// FilterFunc wraps an extra processing stage around the source chain,
// between resampling and the gain stage.
type FilterFunc func(beep.Streamer) beep.Streamer

// Config controls the output graph.
type Config struct {
	// SampleRate is the output sample rate in Hz.
	SampleRate int
	// PollInterval is the clock tick period in output samples.
	PollInterval int
}

type graphEvent uint8

const (
	evTick graphEvent = iota
	evWrap
)

// speaker.Init may only run once per process.
var speakerInitialized bool

// Graph is the beep-backed output graph.
type Graph struct {
	mu sync.Mutex

	sr  beep.SampleRate
	buf *audiobuf.Buffer
	src *source
	vol *effects.Volume

	gain   float64
	filter FilterFunc

	loopOn    bool
	loopStart float64 // seconds
	loopEnd   float64

	clock  *SampleClock
	events chan graphEvent
	done   chan struct{}
	closed bool

	onProcess func()
	onLoop    func()
}

func newGraph(cfg Config) *Graph {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	g := &Graph{
		sr:     beep.SampleRate(cfg.SampleRate),
		gain:   1,
		events: make(chan graphEvent, eventQueueSize),
		done:   make(chan struct{}),
	}
	g.clock = newSampleClock(g.sr, cfg.PollInterval, func() { g.send(evTick) })
	return g
}

// Open initializes the speaker, attaches the hardware clock and starts
// the event dispatcher.
func Open(cfg Config) (*Graph, error) {
	g := newGraph(cfg)
	if !speakerInitialized {
		if err := speaker.Init(g.sr, g.sr.N(time.Second/10)); err != nil {
			return nil, err
		}
		speakerInitialized = true
	}
	speaker.Play(g.clock)
	go g.dispatch()
	return g, nil
}

// OnProcess registers the poll callback, fired every poll interval.
func (g *Graph) OnProcess(fn func()) {
	g.mu.Lock()
	g.onProcess = fn
	g.mu.Unlock()
}

// OnLoop registers the loop-wrap callback.
func (g *Graph) OnLoop(fn func()) {
	g.mu.Lock()
	g.onLoop = fn
	g.mu.Unlock()
}

// Clock returns the graph's hardware clock.
func (g *Graph) Clock() *SampleClock {
	return g.clock
}

// SetBuffer installs the decoded buffer, stopping any active source.
func (g *Graph) SetBuffer(buf *audiobuf.Buffer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
	g.buf = buf
}

// Play starts a new source over [offset, offset+duration) seconds of
// the buffer at the given rate multiplier, replacing any active source.
func (g *Graph) Play(offset, duration, rate float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	if g.buf == nil {
		return ErrNoBuffer
	}
	g.stopLocked()

	bufSR := float64(g.buf.SampleRate())
	start := int(offset * bufSR)
	end := int((offset + duration) * bufSR)

	src := newSource(g.buf, start, end, func() { g.send(evWrap) })
	if g.loopOn {
		src.setLoop(true, int(g.loopStart*bufSR), int(g.loopEnd*bufSR))
	}
	g.src = src

	var str beep.Streamer = src
	if ratio := rate * bufSR / float64(g.sr); ratio != 1 {
		str = beep.ResampleRatio(resampleQuality, ratio, str)
	}
	if g.filter != nil {
		str = g.filter(str)
	}
	g.vol = &effects.Volume{
		Streamer: str,
		Base:     2,
		Volume:   levelToVolume(g.gain),
		Silent:   g.gain <= 0,
	}
	speaker.Play(g.vol)
	return nil
}

// Stop releases the active source, if any.
func (g *Graph) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Graph) stopLocked() {
	if g.src != nil {
		g.src.stop()
		g.src = nil
	}
	g.vol = nil
}

// HasSource reports whether an undrained source is active.
func (g *Graph) HasSource() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.src != nil && !g.src.done()
}

// SetLoop stores the loop region in seconds and pushes it into the
// live source, if any.
func (g *Graph) SetLoop(enabled bool, start, end float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loopOn = enabled
	g.loopStart = start
	g.loopEnd = end
	if g.src != nil && g.buf != nil {
		bufSR := float64(g.buf.SampleRate())
		g.src.setLoop(enabled, int(start*bufSR), int(end*bufSR))
	}
}

// SetGain sets the linear output level. The live volume node is updated
// under the speaker lock.
func (g *Graph) SetGain(level float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gain = level
	if g.vol != nil {
		speaker.Lock()
		g.vol.Volume = levelToVolume(level)
		g.vol.Silent = level <= 0
		speaker.Unlock()
	}
}

// Gain returns the linear output level.
func (g *Graph) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gain
}

// SetFilter installs an extra processing stage, applied to sources
// started after the call.
func (g *Graph) SetFilter(f FilterFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filter = f
}

// Close stops playback, detaches the clock and shuts down the
// dispatcher. Idempotent.
func (g *Graph) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.stopLocked()
	g.clock.stop()
	g.mu.Unlock()
	close(g.done)
}

// send enqueues an event without blocking; a full queue drops it. The
// speaker goroutine must never wait on a consumer.
func (g *Graph) send(ev graphEvent) {
	select {
	case g.events <- ev:
	default:
	}
}

// dispatch delivers queued node events to the registered callbacks,
// outside the graph lock.
func (g *Graph) dispatch() {
	for {
		select {
		case <-g.done:
			return
		case ev := <-g.events:
			g.mu.Lock()
			onProcess, onLoop := g.onProcess, g.onLoop
			g.mu.Unlock()
			switch ev {
			case evTick:
				if onProcess != nil {
					onProcess()
				}
			case evWrap:
				if onLoop != nil {
					onLoop()
				}
			}
		}
	}
}
