// Package audiobuf holds fully decoded audio in memory and provides
// the pure sample-level helpers (peak extraction) built on top of it.
package audiobuf

import "github.com/gopxl/beep/v2"

// Buffer is an immutable block of decoded audio.
//
// Samples are stored as stereo frames in beep's [-1, 1] float format.
// Mono sources are decoded with both frame slots carrying the same
// value; NumChannels reports the channel count of the original stream.
type Buffer struct {
	rate     beep.SampleRate
	channels int
	frames   [][2]float64
}

// NewBuffer wraps already-decoded frames. The frames slice is owned by
// the buffer after the call.
func NewBuffer(rate beep.SampleRate, channels int, frames [][2]float64) *Buffer {
	if channels < 1 {
		channels = 1
	}
	return &Buffer{rate: rate, channels: channels, frames: frames}
}

// SampleRate returns the source sample rate.
func (b *Buffer) SampleRate() beep.SampleRate { return b.rate }

// NumChannels returns the channel count of the original stream.
func (b *Buffer) NumChannels() int { return b.channels }

// NumFrames returns the number of sample frames.
func (b *Buffer) NumFrames() int { return len(b.frames) }

// Frame returns the stereo frame at index i.
func (b *Buffer) Frame(i int) [2]float64 { return b.frames[i] }

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.rate == 0 {
		return 0
	}
	return float64(len(b.frames)) / float64(b.rate)
}

// Channel extracts the samples of one channel. For mono buffers both
// channel indexes return the same data. The returned slice is a copy.
func (b *Buffer) Channel(i int) []float64 {
	if i < 0 || i >= 2 {
		return nil
	}
	out := make([]float64, len(b.frames))
	for n, f := range b.frames {
		out[n] = f[i]
	}
	return out
}
