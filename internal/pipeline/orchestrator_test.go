package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"podcastgen/internal/audio"
	"podcastgen/internal/domain"
	"podcastgen/internal/providers/music"
	"podcastgen/internal/providers/research"
	"podcastgen/internal/providers/script"
	"podcastgen/internal/providers/voice"
	"podcastgen/internal/storage"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type stubResearcher struct {
	brief string
	topic string
	url   string
}

func (s *stubResearcher) Research(_ context.Context, topic, url string) string {
	s.topic, s.url = topic, url
	return s.brief
}

type stubScripter struct {
	lines []domain.DialogueLine
	topic string
	tone  domain.Tone
}

func (s *stubScripter) Generate(_ context.Context, topic, _ string, tone domain.Tone) []domain.DialogueLine {
	s.topic, s.tone = topic, tone
	return s.lines
}

type toneVoice struct {
	t    *testing.T
	skip map[int]bool
}

func (v *toneVoice) Synthesize(_ context.Context, jobID string, lines []domain.DialogueLine) []domain.SpeechClip {
	var clips []domain.SpeechClip
	for i, line := range lines {
		if v.skip[i] {
			continue
		}
		data, err := audio.EncodeWAVBytes(audio.Sine(440, 500, -3, audio.MasterFormat))
		if err != nil {
			v.t.Fatalf("encode: %v", err)
		}
		clips = append(clips, domain.SpeechClip{JobID: jobID, Index: i, Speaker: line.Speaker, Audio: data})
	}
	return clips
}

type noJingle struct{}

func (noJingle) Generate(context.Context, string, string) *domain.Jingle { return nil }

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "/output")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func newOrchestrator(t *testing.T, store *storage.FileStore, opts Options) *Orchestrator {
	t.Helper()
	if opts.Assembler == nil {
		opts.Assembler = audio.NewEngine(audio.NewChimeSource("", nil), nil)
	}
	if opts.Exporter == nil {
		opts.Exporter = audio.NewExporter(store, "wav", nil, nil)
	}
	if opts.Jingles == nil {
		opts.Jingles = noJingle{}
	}
	if opts.Store == nil {
		opts.Store = store
	}
	if opts.NewJobID == nil {
		opts.NewJobID = func() (string, error) { return "job0000001", nil }
	}
	o, err := NewOrchestrator(opts)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func TestRunWithoutCredentialsProducesPlaceholderEpisode(t *testing.T) {
	store := newStore(t)
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`["black holes",[],[],[]]`)), Header: make(http.Header)}, nil
	})}
	o := newOrchestrator(t, store, Options{
		Researcher: research.NewProvider(research.Options{HTTPClient: client}),
		Scripter:   script.NewMiniMaxGenerator(script.MiniMaxOptions{HTTPClient: client}),
		Voice:      voice.NewElevenLabsSynthesizer(voice.ElevenLabsOptions{HTTPClient: client, Store: store}),
		Jingles:    music.NewMiniMaxJingleGenerator(music.MiniMaxOptions{HTTPClient: client, Store: store}),
	})

	res, err := o.Run(context.Background(), Request{Topic: "black holes"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Script) != 10 {
		t.Fatalf("expected 10-line placeholder, got %d", len(res.Script))
	}
	if res.ClipCount != 0 || res.HasAudio || res.HasJingle {
		t.Fatalf("unexpected audio flags %+v", res)
	}
	if res.AudioURL == nil || *res.AudioURL != "/output/job0000001/podcast.wav" {
		t.Fatalf("audio url = %v", res.AudioURL)
	}
	if res.State != domain.JobStateDone || res.Tone != domain.ToneCasual {
		t.Fatalf("state/tone = %s/%s", res.State, res.Tone)
	}
	if !strings.Contains(res.ResearchBrief, "No Wikipedia article found") {
		t.Fatalf("brief = %q", res.ResearchBrief)
	}

	data, err := store.Read(context.Background(), "job0000001/podcast.wav")
	if err != nil {
		t.Fatalf("read master: %v", err)
	}
	seg, err := audio.Decode(data)
	if err != nil {
		t.Fatalf("decode master: %v", err)
	}
	if seg.DurationMS() != 1000 || seg.Peak() != 0 {
		t.Fatalf("master = %dms peak %f, want 1s silence", seg.DurationMS(), seg.Peak())
	}
	if res.DurationMS != 1000 {
		t.Fatalf("duration_ms = %d", res.DurationMS)
	}

	raw, err := store.Read(context.Background(), "job0000001/script.json")
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	var lines []domain.DialogueLine
	if err := json.Unmarshal(raw, &lines); err != nil || len(lines) != 10 {
		t.Fatalf("script.json = %d lines, err %v", len(lines), err)
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	store := newStore(t)
	o := newOrchestrator(t, store, Options{
		Researcher: &stubResearcher{},
		Scripter:   &stubScripter{},
		Voice:      &toneVoice{t: t},
	})
	if _, err := o.Run(context.Background(), Request{Topic: "  ", URL: ""}); !errors.Is(err, domain.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestRunVisitsEveryStateAndKeepsClipGaps(t *testing.T) {
	store := newStore(t)
	lines := []domain.DialogueLine{
		{Speaker: domain.SpeakerA, Text: "one"},
		{Speaker: domain.SpeakerB, Text: "two"},
		{Speaker: domain.SpeakerA, Text: "three"},
	}
	var states []domain.JobState
	scripter := &stubScripter{lines: lines}
	o := newOrchestrator(t, store, Options{
		Researcher: &stubResearcher{brief: strings.Repeat("é", 600)},
		Scripter:   scripter,
		Voice:      &toneVoice{t: t, skip: map[int]bool{1: true}},
		OnState:    func(job domain.Job) { states = append(states, job.State) },
	})

	res, err := o.Run(context.Background(), Request{Topic: "tides", Tone: "Whimsical"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []domain.JobState{
		domain.JobStateCreated, domain.JobStateResearched, domain.JobStateScripted,
		domain.JobStateVoiced, domain.JobStateScored, domain.JobStateAssembled, domain.JobStateDone,
	}
	if len(states) != len(want) {
		t.Fatalf("states = %v", states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("state %d = %s, want %s", i, states[i], want[i])
		}
	}
	if scripter.tone != domain.ToneCasual {
		t.Fatalf("unknown tone should resolve to casual, got %s", scripter.tone)
	}
	if res.ClipCount != 2 || !res.HasAudio {
		t.Fatalf("clip_count = %d has_audio = %v", res.ClipCount, res.HasAudio)
	}
	// chime+1000, two 500ms clips each followed by 400, then 800+chime
	const wantMS = 800 + 1000 + 2*(500+400) + 800 + 800
	if res.DurationMS != wantMS {
		t.Fatalf("duration_ms = %d, want %d", res.DurationMS, wantMS)
	}
	if got := []rune(res.ResearchBrief); len(got) != 503 || !strings.HasSuffix(res.ResearchBrief, "...") {
		t.Fatalf("brief preview has %d runes", len(got))
	}
}

func TestRunDerivesTopicFromURL(t *testing.T) {
	store := newStore(t)
	researcher := &stubResearcher{brief: "Source: https://example.com/a\n\ntext"}
	scripter := &stubScripter{lines: []domain.DialogueLine{{Speaker: domain.SpeakerA, Text: "hi"}}}
	o := newOrchestrator(t, store, Options{
		Researcher: researcher,
		Scripter:   scripter,
		Voice:      &toneVoice{t: t},
	})
	res, err := o.Run(context.Background(), Request{URL: "https://example.com/a", Tone: "academic"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if researcher.url != "https://example.com/a" {
		t.Fatalf("researcher got url %q", researcher.url)
	}
	if res.Topic != "Article from https://example.com/a" || scripter.topic != res.Topic {
		t.Fatalf("topic = %q, scripter saw %q", res.Topic, scripter.topic)
	}
	if res.Tone != domain.ToneAcademic {
		t.Fatalf("tone = %s", res.Tone)
	}
}

func TestRunIgnoresCallerCancellation(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := newOrchestrator(t, store, Options{
		Researcher: &stubResearcher{brief: "b"},
		Scripter:   &stubScripter{lines: []domain.DialogueLine{{Speaker: domain.SpeakerA, Text: "hi"}}},
		Voice:      &toneVoice{t: t},
	})
	res, err := o.Run(ctx, Request{Topic: "tides"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.AudioURL == nil || res.ClipCount != 1 {
		t.Fatalf("job should complete despite canceled caller: %+v", res)
	}
}

func TestNewJobID(t *testing.T) {
	id, err := NewJobID()
	if err != nil {
		t.Fatalf("NewJobID: %v", err)
	}
	if len(id) != jobIDLength {
		t.Fatalf("id %q has length %d", id, len(id))
	}
	for _, r := range id {
		if !strings.ContainsRune(jobIDAlphabet, r) {
			t.Fatalf("id %q contains %q", id, r)
		}
	}
}

func TestNewOrchestratorRequiresStages(t *testing.T) {
	if _, err := NewOrchestrator(Options{}); err == nil {
		t.Fatalf("expected wiring error")
	}
}

type garbledVoice struct{}

func (garbledVoice) Synthesize(_ context.Context, jobID string, lines []domain.DialogueLine) []domain.SpeechClip {
	clips := make([]domain.SpeechClip, 0, len(lines))
	for i, line := range lines {
		clips = append(clips, domain.SpeechClip{JobID: jobID, Index: i, Speaker: line.Speaker, Audio: []byte(`{"detail":"quota"}`)})
	}
	return clips
}

func TestRunUndecodableClipsReportNoAudio(t *testing.T) {
	store := newStore(t)
	o := newOrchestrator(t, store, Options{
		Researcher: &stubResearcher{brief: "brief"},
		Scripter: &stubScripter{lines: []domain.DialogueLine{
			{Speaker: domain.SpeakerA, Text: "one"},
			{Speaker: domain.SpeakerB, Text: "two"},
		}},
		Voice: garbledVoice{},
	})

	res, err := o.Run(context.Background(), Request{Topic: "tides"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.HasAudio {
		t.Fatalf("silent placeholder master must not report has_audio")
	}
	if res.ClipCount != 2 {
		t.Fatalf("clip_count = %d, want 2", res.ClipCount)
	}
	if res.DurationMS != 1000 {
		t.Fatalf("expected 1s placeholder, got %dms", res.DurationMS)
	}
}
