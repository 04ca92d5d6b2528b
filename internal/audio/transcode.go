package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// commandResult is a captured process execution.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// Transcoder converts WAV masters to MP3 with an external ffmpeg binary.
type Transcoder struct {
	ffmpegPath string
	runner     commandRunner
	lookPath   func(file string) (string, error)
}

// NewTranscoder resolves ffmpeg lazily from ffmpegPath, "ffmpeg" when empty.
func NewTranscoder(ffmpegPath string) *Transcoder {
	ffmpegPath = strings.TrimSpace(ffmpegPath)
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Transcoder{ffmpegPath: ffmpegPath, runner: &execRunner{}, lookPath: exec.LookPath}
}

// Available reports whether the ffmpeg binary can be found.
func (t *Transcoder) Available() (string, bool) {
	if t == nil {
		return "", false
	}
	resolved, err := t.lookPath(t.ffmpegPath)
	if err != nil {
		return t.ffmpegPath, false
	}
	return resolved, true
}

// ToMP3 encodes src into dst with LAME VBR quality 2.
func (t *Transcoder) ToMP3(ctx context.Context, src, dst string) error {
	binary, ok := t.Available()
	if !ok {
		return fmt.Errorf("audio: ffmpeg binary %q not found", binary)
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", src,
		"-codec:a", "libmp3lame",
		"-q:a", "2",
		dst,
	}
	result, err := t.runner.Run(ctx, binary, args...)
	if err != nil {
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("audio: ffmpeg exit %d: %s", result.ExitCode, detail)
	}
	return nil
}
