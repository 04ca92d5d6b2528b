package audio

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"podcastgen/internal/infra"
)

// minChimeFileBytes rejects truncated or placeholder files.
const minChimeFileBytes = 100

// ChimeSource yields the transition bell. A configured file wins when it
// exists and decodes; otherwise a synthetic chime is rendered. The result is
// computed once and shared.
type ChimeSource struct {
	path   string
	logger *infra.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	cached *Segment
	origin string
}

// NewChimeSource creates a source for the file at path. An empty path always
// uses the synthetic chime.
func NewChimeSource(path string, logger *infra.Logger) *ChimeSource {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &ChimeSource{path: strings.TrimSpace(path), logger: logger}
}

// Chime returns the memoized chime in MasterFormat.
func (c *ChimeSource) Chime() Segment {
	c.mu.RLock()
	if c.cached != nil {
		seg := *c.cached
		c.mu.RUnlock()
		return seg
	}
	c.mu.RUnlock()

	v, _, _ := c.group.Do("chime", func() (interface{}, error) {
		c.mu.RLock()
		if c.cached != nil {
			seg := *c.cached
			c.mu.RUnlock()
			return seg, nil
		}
		c.mu.RUnlock()
		seg, origin := c.load()
		c.mu.Lock()
		c.cached = &seg
		c.origin = origin
		c.mu.Unlock()
		return seg, nil
	})
	return v.(Segment)
}

// Origin reports "file" or "synthetic" once the chime has been computed.
func (c *ChimeSource) Origin() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origin
}

func (c *ChimeSource) load() (Segment, string) {
	if c.path == "" {
		return SyntheticChime(), "synthetic"
	}
	log := c.logger.With().Str("stage", "assembly").Str("chime_path", c.path).Logger()
	info, err := os.Stat(c.path)
	if err != nil {
		log.Debug().Err(err).Msg("chime file unavailable, synthesizing")
		return SyntheticChime(), "synthetic"
	}
	if info.Size() < minChimeFileBytes {
		log.Warn().Int64("bytes", info.Size()).Msg("chime file too small, synthesizing")
		return SyntheticChime(), "synthetic"
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		log.Warn().Err(err).Msg("read chime file failed, synthesizing")
		return SyntheticChime(), "synthetic"
	}
	seg, err := DecodeMaster(data)
	if err != nil || seg.Frames() == 0 {
		log.Warn().Err(err).Msg("decode chime file failed, synthesizing")
		return SyntheticChime(), "synthetic"
	}
	return seg, "file"
}

// SyntheticChime renders a bell from a fundamental and two overtones, mixed
// and decayed over the last 600 ms.
func SyntheticChime() Segment {
	base := Sine(659, 800, -6, MasterFormat)
	base = base.Overlay(Sine(1318, 800, -12, MasterFormat))
	base = base.Overlay(Sine(1977, 800, -15, MasterFormat))
	return base.FadeOutExp(600)
}
