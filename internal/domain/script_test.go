package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSpeaker(t *testing.T) {
	tests := []struct {
		label string
		want  Speaker
		err   bool
	}{
		{label: "A", want: SpeakerA},
		{label: "alex", want: SpeakerA},
		{label: " ALEX ", want: SpeakerA},
		{label: "b", want: SpeakerB},
		{label: "Sam", want: SpeakerB},
		{label: "Host", err: true},
		{label: "", err: true},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			got, err := ParseSpeaker(tc.label)
			if tc.err {
				if !errors.Is(err, ErrInvalidSpeaker) {
					t.Fatalf("ParseSpeaker(%q) error = %v, want ErrInvalidSpeaker", tc.label, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpeaker(%q) returned error: %v", tc.label, err)
			}
			if got != tc.want {
				t.Fatalf("ParseSpeaker(%q) = %q, want %q", tc.label, got, tc.want)
			}
		})
	}
}

func TestDialogueLineRejectsMissingFields(t *testing.T) {
	inputs := []string{
		`{"speaker":"A"}`,
		`{"text":"hello"}`,
		`{"speaker":"A","text":"   "}`,
	}
	for _, input := range inputs {
		var line DialogueLine
		err := json.Unmarshal([]byte(input), &line)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("Unmarshal(%s) error = %v, want ErrMalformedResponse", input, err)
		}
	}
}

func TestDialogueLineMarshalsDisplayName(t *testing.T) {
	var line DialogueLine
	if err := json.Unmarshal([]byte(`{"speaker":"b","text":" hi "}`), &line); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(line)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"speaker":"Sam","text":"hi"}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestParseTone(t *testing.T) {
	tests := []struct {
		in    string
		want  Tone
		known bool
	}{
		{in: "", want: ToneCasual, known: true},
		{in: "Academic", want: ToneAcademic, known: true},
		{in: " comedic ", want: ToneComedic, known: true},
		{in: "dramatic", want: ToneCasual, known: false},
	}
	for _, tc := range tests {
		got, known := ParseTone(tc.in)
		if got != tc.want || known != tc.known {
			t.Fatalf("ParseTone(%q) = (%q, %t), want (%q, %t)", tc.in, got, known, tc.want, tc.known)
		}
	}
}

func TestClipKeyOrdersLexically(t *testing.T) {
	if got := ClipKey("job1", 3, SpeakerB); got != "job1/clips/003_sam.mp3" {
		t.Fatalf("ClipKey = %q", got)
	}
	if ClipKey("j", 9, SpeakerA) >= ClipKey("j", 10, SpeakerA) {
		t.Fatal("clip keys must sort in speaking order")
	}
}
