package audio

import (
	"context"
	"sort"
	"time"

	"podcastgen/internal/domain"
	"podcastgen/internal/infra"
)

// Layout timings in milliseconds.
const (
	clipGapMS        = 400
	placeholderMS    = 1000
	headroomDB       = 0.1
	introJingleMS    = 12000
	introFadeInMS    = 2000
	introFadeOutMS   = 2000
	outroJingleMS    = 8000
	outroFadeInMS    = 1000
	outroFadeOutMS   = 3000
	bareIntroGapMS   = 1000
	bareOutroLeadMS  = 800
	introPreChimeMS  = 300
	introPostChimeMS = 800
	outroPreChimeMS  = 500
	outroPostChimeMS = 300
)

// Report describes what went into a master.
type Report struct {
	ClipsUsed    int
	ClipsSkipped []int
	JingleUsed   bool
	Placeholder  bool
	Duration     time.Duration
}

// Engine assembles speech clips, chime and jingle into one master.
type Engine struct {
	chime  *ChimeSource
	logger *infra.Logger
}

// NewEngine builds an engine around a shared chime source.
func NewEngine(chime *ChimeSource, logger *infra.Logger) *Engine {
	if chime == nil {
		chime = NewChimeSource("", logger)
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Engine{chime: chime, logger: logger}
}

// Assemble lays out intro, conversation and outro and peak-normalizes the
// result. Clips are ordered by script index; undecodable clips are skipped.
// With nothing to play the master is one second of silence.
func (e *Engine) Assemble(ctx context.Context, clips []domain.SpeechClip, jingle *domain.Jingle) (Segment, Report) {
	log := e.logger.With().Str("stage", "assembly").Logger()
	var report Report

	ordered := make([]domain.SpeechClip, len(clips))
	copy(ordered, clips)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	// clip, gap, clip, gap, ...; joined once by the final Concat.
	conversation := make([]Segment, 0, 2*len(ordered))
	gap := Silent(clipGapMS, MasterFormat)
	for _, clip := range ordered {
		if ctx.Err() != nil {
			report.ClipsSkipped = append(report.ClipsSkipped, clip.Index)
			continue
		}
		seg, err := DecodeMaster(clip.Audio)
		if err != nil {
			log.Warn().Err(err).Int("index", clip.Index).Str("key", clip.StorageKey).Msg("skipping undecodable clip")
			report.ClipsSkipped = append(report.ClipsSkipped, clip.Index)
			continue
		}
		conversation = append(conversation, seg, gap)
		report.ClipsUsed++
	}

	if report.ClipsUsed == 0 {
		log.Warn().Int("clips", len(clips)).Msg("no playable clips, rendering silent placeholder")
		master := Silent(placeholderMS, MasterFormat)
		report.Placeholder = true
		report.Duration = master.Duration()
		return master, report
	}

	chime := e.chime.Chime()
	var intro, outro Segment
	jingleSeg, ok := e.decodeJingle(jingle, &log)
	if ok {
		report.JingleUsed = true
		intro = Concat(MasterFormat,
			jingleSeg.FadeIn(introFadeInMS).Head(introJingleMS).FadeOut(introFadeOutMS),
			Silent(introPreChimeMS, MasterFormat),
			chime,
			Silent(introPostChimeMS, MasterFormat),
		)
		outro = Concat(MasterFormat,
			Silent(outroPreChimeMS, MasterFormat),
			chime,
			Silent(outroPostChimeMS, MasterFormat),
			jingleSeg.FadeIn(outroFadeInMS).Head(outroJingleMS).FadeOut(outroFadeOutMS),
		)
	} else {
		intro = Concat(MasterFormat, chime, Silent(bareIntroGapMS, MasterFormat))
		outro = Concat(MasterFormat, Silent(bareOutroLeadMS, MasterFormat), chime)
	}

	parts := make([]Segment, 0, len(conversation)+2)
	parts = append(parts, intro)
	parts = append(parts, conversation...)
	parts = append(parts, outro)
	master := Concat(MasterFormat, parts...).Normalize(headroomDB)
	report.Duration = master.Duration()
	log.Info().
		Int("clips_used", report.ClipsUsed).
		Int("clips_skipped", len(report.ClipsSkipped)).
		Bool("jingle", report.JingleUsed).
		Int64("duration_ms", master.DurationMS()).
		Msg("master assembled")
	return master, report
}

func (e *Engine) decodeJingle(jingle *domain.Jingle, log *infra.Logger) (Segment, bool) {
	if jingle == nil || len(jingle.Audio) == 0 {
		return Segment{}, false
	}
	seg, err := DecodeMaster(jingle.Audio)
	if err != nil || seg.Frames() == 0 {
		log.Warn().Err(err).Str("key", jingle.StorageKey).Msg("jingle undecodable, using bare intro")
		return Segment{}, false
	}
	return seg, true
}

// Chime exposes the engine's chime for tooling.
func (e *Engine) Chime() Segment {
	return e.chime.Chime()
}
