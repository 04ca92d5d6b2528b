package audio

import (
	"math"
	"time"
)

// Format describes interleaved PCM layout.
type Format struct {
	SampleRate int
	Channels   int
}

// MasterFormat is the layout every input is converted to before assembly.
var MasterFormat = Format{SampleRate: 44100, Channels: 2}

// Segment is an immutable run of interleaved float samples in [-1, 1].
// Operations return new segments and never modify the receiver.
type Segment struct {
	Format  Format
	Samples []float64
}

// Silent returns ms milliseconds of silence.
func Silent(ms int, f Format) Segment {
	return Segment{Format: f, Samples: make([]float64, framesFor(ms, f.SampleRate)*f.Channels)}
}

func framesFor(ms, rate int) int {
	if ms <= 0 {
		return 0
	}
	return int(int64(rate) * int64(ms) / 1000)
}

// Frames is the number of sample frames.
func (s Segment) Frames() int {
	if s.Format.Channels == 0 {
		return 0
	}
	return len(s.Samples) / s.Format.Channels
}

// Duration is the playback length.
func (s Segment) Duration() time.Duration {
	if s.Format.SampleRate == 0 {
		return 0
	}
	return time.Duration(int64(s.Frames()) * int64(time.Second) / int64(s.Format.SampleRate))
}

// DurationMS is the playback length in whole milliseconds.
func (s Segment) DurationMS() int64 {
	return s.Duration().Milliseconds()
}

// Append concatenates segments. Inputs in another format are converted to the
// receiver's format first.
func (s Segment) Append(others ...Segment) Segment {
	total := len(s.Samples)
	converted := make([]Segment, len(others))
	for i, o := range others {
		converted[i] = o.Convert(s.Format)
		total += len(converted[i].Samples)
	}
	out := make([]float64, 0, total)
	out = append(out, s.Samples...)
	for _, o := range converted {
		out = append(out, o.Samples...)
	}
	return Segment{Format: s.Format, Samples: out}
}

// Concat joins segments in order. An empty list yields an empty segment in f.
func Concat(f Format, parts ...Segment) Segment {
	return Segment{Format: f}.Append(parts...)
}

// Overlay mixes o onto the receiver starting at the first frame. The result
// keeps the receiver's length and is clamped to [-1, 1].
func (s Segment) Overlay(o Segment) Segment {
	o = o.Convert(s.Format)
	out := make([]float64, len(s.Samples))
	copy(out, s.Samples)
	n := len(o.Samples)
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = clamp(out[i] + o.Samples[i])
	}
	return Segment{Format: s.Format, Samples: out}
}

// Head returns the first ms milliseconds, or the whole segment if shorter.
func (s Segment) Head(ms int) Segment {
	n := framesFor(ms, s.Format.SampleRate) * s.Format.Channels
	if n >= len(s.Samples) {
		return s.clone()
	}
	out := make([]float64, n)
	copy(out, s.Samples[:n])
	return Segment{Format: s.Format, Samples: out}
}

// FadeIn ramps the first ms milliseconds linearly up from silence.
func (s Segment) FadeIn(ms int) Segment {
	out := s.clone()
	n := framesFor(ms, s.Format.SampleRate)
	if n > out.Frames() {
		n = out.Frames()
	}
	for k := 0; k < n; k++ {
		out.scaleFrame(k, float64(k)/float64(n))
	}
	return out
}

// FadeOut ramps the last ms milliseconds linearly down to silence.
func (s Segment) FadeOut(ms int) Segment {
	return s.fadeOutWith(ms, func(p float64) float64 { return 1 - p })
}

// FadeOutExp ramps the last ms milliseconds down along an exponential decay
// curve that reaches exactly zero at the end.
func (s Segment) FadeOutExp(ms int) Segment {
	floor := math.Exp(-5)
	return s.fadeOutWith(ms, func(p float64) float64 {
		return (math.Exp(-5*p) - floor) / (1 - floor)
	})
}

// fadeOutWith applies curve(p) over the tail, p running from just above 0 to
// exactly 1 on the final frame.
func (s Segment) fadeOutWith(ms int, curve func(p float64) float64) Segment {
	out := s.clone()
	frames := out.Frames()
	n := framesFor(ms, s.Format.SampleRate)
	if n > frames {
		n = frames
	}
	start := frames - n
	for k := 0; k < n; k++ {
		out.scaleFrame(start+k, curve(float64(k+1)/float64(n)))
	}
	return out
}

// Gain scales the segment by db decibels.
func (s Segment) Gain(db float64) Segment {
	return s.scale(dbToAmplitude(db))
}

// Peak is the largest absolute sample value.
func (s Segment) Peak() float64 {
	var peak float64
	for _, v := range s.Samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize scales the segment so its peak sits headroomDB below full scale.
// Silence is returned unchanged.
func (s Segment) Normalize(headroomDB float64) Segment {
	peak := s.Peak()
	if peak == 0 {
		return s.clone()
	}
	return s.scale(dbToAmplitude(-headroomDB) / peak)
}

// Convert changes channel layout and sample rate. Channels are duplicated or
// averaged and the rate is changed by linear interpolation.
func (s Segment) Convert(f Format) Segment {
	if s.Format == f {
		return s
	}
	return s.remix(f.Channels).resample(f.SampleRate)
}

func (s Segment) remix(channels int) Segment {
	src := s.Format.Channels
	if src == channels || src == 0 {
		return Segment{Format: Format{SampleRate: s.Format.SampleRate, Channels: channels}, Samples: s.Samples}
	}
	frames := s.Frames()
	out := make([]float64, frames*channels)
	for i := 0; i < frames; i++ {
		frame := s.Samples[i*src : (i+1)*src]
		if channels == 1 {
			var sum float64
			for _, v := range frame {
				sum += v
			}
			out[i] = sum / float64(src)
			continue
		}
		for c := 0; c < channels; c++ {
			sc := c
			if sc >= src {
				sc = src - 1
			}
			out[i*channels+c] = frame[sc]
		}
	}
	return Segment{Format: Format{SampleRate: s.Format.SampleRate, Channels: channels}, Samples: out}
}

func (s Segment) resample(rate int) Segment {
	from := s.Format.SampleRate
	ch := s.Format.Channels
	if from == rate || from == 0 {
		return Segment{Format: Format{SampleRate: rate, Channels: ch}, Samples: s.Samples}
	}
	srcFrames := s.Frames()
	dstFrames := int((int64(srcFrames)*int64(rate) + int64(from)/2) / int64(from))
	out := make([]float64, dstFrames*ch)
	ratio := float64(from) / float64(rate)
	for j := 0; j < dstFrames; j++ {
		pos := float64(j) * ratio
		i0 := int(pos)
		if i0 >= srcFrames {
			i0 = srcFrames - 1
		}
		i1 := i0 + 1
		if i1 >= srcFrames {
			i1 = srcFrames - 1
		}
		frac := pos - float64(i0)
		for c := 0; c < ch; c++ {
			a := s.Samples[i0*ch+c]
			b := s.Samples[i1*ch+c]
			out[j*ch+c] = a + (b-a)*frac
		}
	}
	return Segment{Format: Format{SampleRate: rate, Channels: ch}, Samples: out}
}

func (s Segment) clone() Segment {
	out := make([]float64, len(s.Samples))
	copy(out, s.Samples)
	return Segment{Format: s.Format, Samples: out}
}

func (s Segment) scale(g float64) Segment {
	out := make([]float64, len(s.Samples))
	for i, v := range s.Samples {
		out[i] = clamp(v * g)
	}
	return Segment{Format: s.Format, Samples: out}
}

func (s Segment) scaleFrame(frame int, g float64) {
	ch := s.Format.Channels
	for c := 0; c < ch; c++ {
		s.Samples[frame*ch+c] *= g
	}
}

func dbToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
