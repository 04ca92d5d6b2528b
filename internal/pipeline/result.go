package pipeline

import (
	"podcastgen/internal/domain"
)

// briefPreviewRunes bounds the research brief echoed back to callers.
const briefPreviewRunes = 500

// Request is one job submission. Either Topic or URL must be set.
type Request struct {
	Topic string `json:"topic"`
	URL   string `json:"url"`
	Tone  string `json:"tone"`
}

// Result is the payload returned for a finished job.
type Result struct {
	JobID         string                `json:"job_id"`
	Topic         string                `json:"topic"`
	Tone          domain.Tone           `json:"tone"`
	Script        []domain.DialogueLine `json:"script"`
	ResearchBrief string                `json:"research_brief"`
	AudioURL      *string               `json:"audio_url"`
	HasAudio      bool                  `json:"has_audio"`
	ClipCount     int                   `json:"clip_count"`
	HasJingle     bool                  `json:"has_jingle"`
	DurationMS    int64                 `json:"duration_ms"`
	State         domain.JobState       `json:"state"`

	Master *domain.PodcastMaster `json:"-"`
}

func previewBrief(brief string) string {
	runes := []rune(brief)
	if len(runes) <= briefPreviewRunes {
		return brief
	}
	return string(runes[:briefPreviewRunes]) + "..."
}
