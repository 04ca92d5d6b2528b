package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned for payloads that are neither WAV nor MP3.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// Container names a detected audio container.
type Container string

const (
	ContainerUnknown Container = ""
	ContainerWAV     Container = "wav"
	ContainerMP3     Container = "mp3"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Sniff detects the container from magic bytes.
func Sniff(data []byte) Container {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return ContainerWAV
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return ContainerMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return ContainerMP3
	default:
		return ContainerUnknown
	}
}

// Decode parses a WAV or MP3 payload into a segment in its native format.
func Decode(data []byte) (Segment, error) {
	switch Sniff(data) {
	case ContainerWAV:
		return decodeWAV(data)
	case ContainerMP3:
		return decodeMP3(data)
	default:
		return Segment{}, ErrUnsupportedFormat
	}
}

// DecodeMaster decodes data and converts it to MasterFormat.
func DecodeMaster(data []byte) (Segment, error) {
	seg, err := Decode(data)
	if err != nil {
		return Segment{}, err
	}
	return seg.Convert(MasterFormat), nil
}

func decodeWAV(data []byte) (Segment, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return Segment{}, fmt.Errorf("audio: invalid wav file")
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return Segment{}, fmt.Errorf("%w: wav encoding %d", ErrUnsupportedFormat, d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Segment{}, fmt.Errorf("audio: decode wav: %w", err)
	}
	channels := int(d.NumChans)
	rate := int(d.SampleRate)
	bits := int(d.BitDepth)
	if channels <= 0 || rate <= 0 || bits <= 0 {
		return Segment{}, fmt.Errorf("audio: wav header is incomplete")
	}
	// 8-bit WAV is unsigned; every other depth is signed.
	offset := 0
	if bits == 8 {
		offset = 128
	}
	full := float64(int64(1) << (bits - 1))
	samples := make([]float64, len(buf.Data)-len(buf.Data)%channels)
	for i := range samples {
		samples[i] = clamp(float64(buf.Data[i]-offset) / full)
	}
	return Segment{Format: Format{SampleRate: rate, Channels: channels}, Samples: samples}, nil
}

// go-mp3 always yields 16-bit little-endian stereo.
func decodeMP3(data []byte) (Segment, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Segment{}, fmt.Errorf("audio: open mp3: %w", err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return Segment{}, fmt.Errorf("audio: decode mp3: %w", err)
	}
	if len(pcm) < 4 {
		return Segment{}, fmt.Errorf("audio: mp3 has no audio frames")
	}
	n := len(pcm) / 2
	n -= n % 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
		samples[i] = float64(v) / 32768
	}
	return Segment{Format: Format{SampleRate: d.SampleRate(), Channels: 2}, Samples: samples}, nil
}
