package domain

import (
	"fmt"
	"path"
	"time"
)

// SpeechClip is the synthesized audio for one dialogue line. Index is the
// line's position in the script; gaps left by failed lines are never filled.
type SpeechClip struct {
	JobID      string
	Index      int
	Speaker    Speaker
	Audio      []byte
	StorageKey string
}

// ClipKey returns the job-scoped storage key for a clip. The zero-padded index
// keeps lexical order equal to speaking order.
func ClipKey(jobID string, index int, speaker Speaker) string {
	return path.Join(jobID, "clips", fmt.Sprintf("%03d_%s.mp3", index, speaker.Slug()))
}

// Jingle is the optional instrumental bed used to frame an episode.
type Jingle struct {
	JobID      string
	Audio      []byte
	StorageKey string
}

// JingleKey returns the job-scoped storage key for the jingle.
func JingleKey(jobID string) string {
	return path.Join(jobID, "jingle.mp3")
}

// PodcastMaster references the final normalized episode in the output store.
type PodcastMaster struct {
	JobID      string
	StorageKey string
	URL        string
	Format     string
	Duration   time.Duration
}

// MasterKey returns the fixed storage key of the master for the given format.
func MasterKey(jobID, format string) string {
	return path.Join(jobID, "podcast."+format)
}

// ScriptKey returns the storage key of the persisted script.
func ScriptKey(jobID string) string {
	return path.Join(jobID, "script.json")
}
