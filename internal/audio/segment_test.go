package audio

import (
	"math"
	"testing"
)

func TestSilentFrames(t *testing.T) {
	s := Silent(400, MasterFormat)
	if s.Frames() != 17640 {
		t.Fatalf("frames = %d, want 17640", s.Frames())
	}
	if s.DurationMS() != 400 {
		t.Fatalf("duration = %dms, want 400", s.DurationMS())
	}
	if s.Peak() != 0 {
		t.Fatalf("silence has peak %f", s.Peak())
	}
}

func TestConvertResamplesAndRemixes(t *testing.T) {
	mono := Sine(440, 1000, -6, Format{SampleRate: 22050, Channels: 1})
	out := mono.Convert(MasterFormat)
	if out.Format != MasterFormat {
		t.Fatalf("format = %+v", out.Format)
	}
	if out.Frames() != 44100 {
		t.Fatalf("frames = %d, want 44100", out.Frames())
	}
	if out.DurationMS() != 1000 {
		t.Fatalf("duration = %dms", out.DurationMS())
	}
	for i := 0; i < out.Frames(); i += 997 {
		if out.Samples[2*i] != out.Samples[2*i+1] {
			t.Fatalf("frame %d channels differ", i)
		}
	}

	back := out.Convert(Format{SampleRate: 44100, Channels: 1})
	if back.Format.Channels != 1 || back.Frames() != 44100 {
		t.Fatalf("downmix gave %+v with %d frames", back.Format, back.Frames())
	}
}

func TestFades(t *testing.T) {
	tone := Sine(440, 1000, 0, MasterFormat).Gain(-1)
	in := tone.FadeIn(500)
	if in.Samples[0] != 0 || in.Samples[1] != 0 {
		t.Fatalf("fade-in should start silent")
	}
	if math.Abs(in.Samples[200]) > math.Abs(tone.Samples[200])*0.01 {
		t.Fatalf("fade-in too loud near the start: %f", in.Samples[200])
	}
	if in.Frames() != tone.Frames() {
		t.Fatalf("fade changed length")
	}
	out := tone.FadeOut(500)
	last := len(out.Samples) - 1
	if out.Samples[last] != 0 {
		t.Fatalf("fade-out should end silent, got %f", out.Samples[last])
	}
	exp := tone.FadeOutExp(600)
	if exp.Samples[last] != 0 {
		t.Fatalf("exponential fade should end silent, got %f", exp.Samples[last])
	}
	// Untouched head.
	if exp.Samples[100] != tone.Samples[100] {
		t.Fatalf("fade modified samples outside its window")
	}
}

func TestHeadAndAppend(t *testing.T) {
	tone := Sine(440, 3000, -6, MasterFormat)
	if got := tone.Head(1200).DurationMS(); got != 1200 {
		t.Fatalf("head = %dms", got)
	}
	if got := tone.Head(5000).DurationMS(); got != 3000 {
		t.Fatalf("head longer than segment = %dms", got)
	}
	joined := Concat(MasterFormat, tone.Head(100), Silent(200, MasterFormat), Sine(220, 300, -6, Format{SampleRate: 22050, Channels: 1}))
	if joined.DurationMS() != 600 {
		t.Fatalf("joined = %dms, want 600", joined.DurationMS())
	}
}

func TestOverlayKeepsLengthAndClamps(t *testing.T) {
	loud := Sine(440, 500, 0, MasterFormat)
	mixed := loud.Overlay(loud).Overlay(Sine(440, 2000, 0, MasterFormat))
	if mixed.Frames() != loud.Frames() {
		t.Fatalf("overlay changed length: %d vs %d", mixed.Frames(), loud.Frames())
	}
	if mixed.Peak() > 1 {
		t.Fatalf("overlay exceeded full scale: %f", mixed.Peak())
	}
}

func TestNormalize(t *testing.T) {
	quiet := Sine(440, 500, -20, MasterFormat)
	norm := quiet.Normalize(0.1)
	want := math.Pow(10, -0.1/20)
	if math.Abs(norm.Peak()-want) > 1e-9 {
		t.Fatalf("peak = %f, want %f", norm.Peak(), want)
	}
	silent := Silent(100, MasterFormat).Normalize(0.1)
	if silent.Peak() != 0 {
		t.Fatalf("normalizing silence should keep it silent")
	}
}

func TestSineLevel(t *testing.T) {
	s := Sine(659, 800, -6, MasterFormat)
	if s.DurationMS() != 800 {
		t.Fatalf("duration = %d", s.DurationMS())
	}
	want := math.Pow(10, -6.0/20)
	if math.Abs(s.Peak()-want) > 1e-3 {
		t.Fatalf("peak = %f, want about %f", s.Peak(), want)
	}
}
