package audio

import "math"

// Sine renders a pure tone whose peak sits at db dBFS.
func Sine(freq float64, ms int, db float64, f Format) Segment {
	frames := framesFor(ms, f.SampleRate)
	amp := dbToAmplitude(db)
	out := make([]float64, frames*f.Channels)
	step := 2 * math.Pi * freq / float64(f.SampleRate)
	for i := 0; i < frames; i++ {
		v := amp * math.Sin(step*float64(i))
		for c := 0; c < f.Channels; c++ {
			out[i*f.Channels+c] = v
		}
	}
	return Segment{Format: f, Samples: out}
}
