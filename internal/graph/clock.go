package graph

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// SampleClock is a silent streamer that sits on the output mixer and
// counts rendered samples. It is the hardware time reference: one
// second of clock time is exactly one sample rate's worth of rendered
// samples, regardless of wall-clock scheduling jitter.
//
// Every interval samples it fires the tick callback from the speaker
// goroutine. Tick precision is therefore bounded by the speaker's
// callback buffer size, not by the interval alone.
type SampleClock struct {
	rate     beep.SampleRate
	interval int

	samples   atomic.Int64
	sinceTick int
	stopped   atomic.Bool

	onTick func()
}

var _ beep.Streamer = (*SampleClock)(nil)

func newSampleClock(rate beep.SampleRate, interval int, onTick func()) *SampleClock {
	return &SampleClock{rate: rate, interval: interval, onTick: onTick}
}

// Now returns the rendered-sample time in seconds.
func (c *SampleClock) Now() float64 {
	return float64(c.samples.Load()) / float64(c.rate)
}

// stop detaches the clock from the mixer on its next Stream call.
func (c *SampleClock) stop() {
	c.stopped.Store(true)
}

func (c *SampleClock) Stream(samples [][2]float64) (int, bool) {
	if c.stopped.Load() {
		return 0, false
	}
	for i := range samples {
		samples[i] = [2]float64{}
	}
	c.samples.Add(int64(len(samples)))
	c.sinceTick += len(samples)
	for c.sinceTick >= c.interval {
		c.sinceTick -= c.interval
		if c.onTick != nil {
			c.onTick()
		}
	}
	return len(samples), true
}

func (c *SampleClock) Err() error { return nil }
