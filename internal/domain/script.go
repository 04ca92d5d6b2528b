package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Speaker identifies one of the two fixed podcast hosts.
type Speaker string

const (
	// SpeakerA is the curious host who asks the questions.
	SpeakerA Speaker = "Alex"
	// SpeakerB is the explainer.
	SpeakerB Speaker = "Sam"
)

var speakerFold = cases.Fold()

// ParseSpeaker maps a label from model output to a host. Both the role letter
// and the host name are accepted, ignoring case.
func ParseSpeaker(label string) (Speaker, error) {
	switch speakerFold.String(strings.TrimSpace(label)) {
	case "a", "alex":
		return SpeakerA, nil
	case "b", "sam":
		return SpeakerB, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSpeaker, label)
	}
}

// Slug is the lowercase form used in clip file names.
func (s Speaker) Slug() string {
	return strings.ToLower(string(s))
}

// DialogueLine is one utterance of the script.
type DialogueLine struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

type rawDialogueLine struct {
	Speaker *string `json:"speaker"`
	Text    *string `json:"text"`
}

// UnmarshalJSON validates the record: both fields must be present, the speaker
// must name a known host and the text must not be blank.
func (l *DialogueLine) UnmarshalJSON(data []byte) error {
	var raw rawDialogueLine
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Speaker == nil || raw.Text == nil {
		return fmt.Errorf("%w: dialogue line requires speaker and text", ErrMalformedResponse)
	}
	speaker, err := ParseSpeaker(*raw.Speaker)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(*raw.Text)
	if text == "" {
		return fmt.Errorf("%w: dialogue line text is empty", ErrMalformedResponse)
	}
	*l = DialogueLine{Speaker: speaker, Text: text}
	return nil
}
