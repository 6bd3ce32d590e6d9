package session

import "github.com/nvaucher/lowtide/internal/audiobuf"

// PlayCall records one graph Play invocation.
type PlayCall struct {
	Offset   float64
	Duration float64
	Rate     float64
}

// MockGraph is a test double for the Graph capability. It records
// calls instead of rendering audio.
type MockGraph struct {
	buf       *audiobuf.Buffer
	gain      float64
	hasSource bool
	closed    bool

	loopOn    bool
	loopStart float64
	loopEnd   float64

	playCalls []PlayCall
	stopCalls int
	playErr   error
}

var _ Graph = (*MockGraph)(nil)

// NewMockGraph returns a mock graph with unity gain.
func NewMockGraph() *MockGraph {
	return &MockGraph{gain: 1}
}

func (g *MockGraph) SetBuffer(buf *audiobuf.Buffer) {
	g.buf = buf
}

func (g *MockGraph) Play(offset, duration, rate float64) error {
	g.playCalls = append(g.playCalls, PlayCall{Offset: offset, Duration: duration, Rate: rate})
	if g.playErr != nil {
		return g.playErr
	}
	g.hasSource = true
	return nil
}

func (g *MockGraph) Stop() {
	g.stopCalls++
	g.hasSource = false
}

func (g *MockGraph) HasSource() bool { return g.hasSource }

func (g *MockGraph) SetLoop(enabled bool, start, end float64) {
	g.loopOn = enabled
	g.loopStart = start
	g.loopEnd = end
}

func (g *MockGraph) SetGain(v float64) { g.gain = v }

func (g *MockGraph) Gain() float64 { return g.gain }

func (g *MockGraph) Close() { g.closed = true }

// SetPlayError makes subsequent Play calls fail with err.
func (g *MockGraph) SetPlayError(err error) { g.playErr = err }

// PlayCalls returns the recorded Play invocations.
func (g *MockGraph) PlayCalls() []PlayCall { return g.playCalls }

// StopCalls returns the number of Stop invocations.
func (g *MockGraph) StopCalls() int { return g.stopCalls }

// Loop returns the last loop region pushed into the graph.
func (g *MockGraph) Loop() (enabled bool, start, end float64) {
	return g.loopOn, g.loopStart, g.loopEnd
}

// Closed reports whether Close was called.
func (g *MockGraph) Closed() bool { return g.closed }

// MockClock is a manually advanced Clock for tests.
type MockClock struct {
	now float64
}

var _ Clock = (*MockClock)(nil)

// NewMockClock returns a clock at time zero.
func NewMockClock() *MockClock { return &MockClock{} }

func (c *MockClock) Now() float64 { return c.now }

// Advance moves the clock forward by d seconds.
func (c *MockClock) Advance(d float64) { c.now += d }

// Set jumps the clock to t seconds.
func (c *MockClock) Set(t float64) { c.now = t }
