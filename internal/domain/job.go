package domain

import (
	"strings"
	"time"
)

// Tone enumerates the supported narration styles.
type Tone string

const (
	ToneCasual   Tone = "casual"
	ToneAcademic Tone = "academic"
	ToneComedic  Tone = "comedic"
)

// DefaultTone is applied when a request omits the tone or names an unknown one.
const DefaultTone = ToneCasual

// ParseTone resolves free-form input to a known tone. Unknown values fall back
// to DefaultTone; the boolean reports whether the input was recognised.
func ParseTone(raw string) (Tone, bool) {
	switch Tone(strings.ToLower(strings.TrimSpace(raw))) {
	case ToneCasual:
		return ToneCasual, true
	case ToneAcademic:
		return ToneAcademic, true
	case ToneComedic:
		return ToneComedic, true
	case "":
		return DefaultTone, true
	default:
		return DefaultTone, false
	}
}

// JobState enumerates the pipeline lifecycle. Every state is reached even when
// the stage before it degraded.
type JobState string

const (
	JobStateCreated    JobState = "created"
	JobStateResearched JobState = "researched"
	JobStateScripted   JobState = "scripted"
	JobStateVoiced     JobState = "voiced"
	JobStateScored     JobState = "scored"
	JobStateAssembled  JobState = "assembled"
	JobStateDone       JobState = "done"
)

// Job encapsulates a single podcast generation run. It is owned by the
// pipeline for the duration of the run and never persisted.
type Job struct {
	ID        string
	Topic     string
	URL       string
	Tone      Tone
	Brief     string
	State     JobState
	CreatedAt time.Time
}
