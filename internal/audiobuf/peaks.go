package audiobuf

import "math"

// Peaks downsamples a buffer into length buckets, each holding the
// maximum absolute sample value across both channels within the bucket.
// Returns nil for a nil/empty buffer or non-positive length.
func Peaks(b *Buffer, length int) []float64 {
	if b == nil || b.NumFrames() == 0 || length <= 0 {
		return nil
	}

	peaks := make([]float64, length)
	frames := b.NumFrames()
	per := float64(frames) / float64(length)

	for i := range length {
		start := int(float64(i) * per)
		end := int(float64(i+1) * per)
		if end <= start {
			end = start + 1
		}
		if end > frames {
			end = frames
		}
		var peak float64
		for n := start; n < end; n++ {
			f := b.Frame(n)
			peak = math.Max(peak, math.Max(math.Abs(f[0]), math.Abs(f[1])))
		}
		peaks[i] = peak
	}
	return peaks
}
