package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// EncodeWAV writes s as 16-bit PCM WAV. The encoder patches the header on
// Close, hence the seeker.
func EncodeWAV(w io.WriteSeeker, s Segment) error {
	if s.Format.SampleRate <= 0 || s.Format.Channels <= 0 {
		return errors.New("audio: segment has no format")
	}
	enc := wav.NewEncoder(w, s.Format.SampleRate, wavBitDepth, s.Format.Channels, wavFormatPCM)
	data := make([]int, len(s.Samples))
	for i, v := range s.Samples {
		data[i] = int(math.Round(clamp(v) * 32767))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: s.Format.Channels, SampleRate: s.Format.SampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: close wav: %w", err)
	}
	return nil
}

// EncodeWAVBytes renders s into an in-memory WAV file.
func EncodeWAVBytes(s Segment) ([]byte, error) {
	var buf seekBuffer
	if err := EncodeWAV(&buf, s); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// seekBuffer is a growable in-memory io.WriteSeeker.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(b.pos) + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("audio: invalid whence %d", whence)
	}
	if next < 0 {
		return 0, errors.New("audio: negative seek position")
	}
	b.pos = int(next)
	return next, nil
}
