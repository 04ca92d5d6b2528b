package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"podcastgen/internal/domain"
	"podcastgen/internal/pipeline"
	"podcastgen/internal/storage"
)

type stubRunner struct {
	calls []pipeline.Request
	res   *pipeline.Result
	err   error
}

func (s *stubRunner) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	s.calls = append(s.calls, req)
	return s.res, s.err
}

func newTestApp(t *testing.T, runner Runner) (*App, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "/output")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return NewApp(runner, store, KeyStatus{MiniMax: true}, nil), store
}

func routes(app *App) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", app.Health)
	r.Post("/generate", app.GeneratePodcast)
	r.Get("/v1/podcasts/{job_id}/bundle", app.PodcastBundle)
	return r
}

func decodeError(t *testing.T, body io.Reader) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestGeneratePodcastSuccess(t *testing.T) {
	url := "/output/abc123/podcast.wav"
	runner := &stubRunner{res: &pipeline.Result{
		JobID:    "abc123",
		Topic:    "tides",
		Tone:     domain.ToneCasual,
		Script:   []domain.DialogueLine{{Speaker: domain.SpeakerA, Text: "Hi."}},
		AudioURL: &url,
		HasAudio: true,
		State:    domain.JobStateDone,
	}}
	app, _ := newTestApp(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"topic":"tides","tone":"casual"}`))
	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(runner.calls) != 1 || runner.calls[0].Topic != "tides" {
		t.Fatalf("unexpected runner calls: %+v", runner.calls)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["job_id"] != "abc123" || body["audio_url"] != url || body["has_audio"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["Master"]; ok {
		t.Fatalf("master details must not be serialized")
	}
}

func TestGeneratePodcastMissingInput(t *testing.T) {
	for name, payload := range map[string]string{
		"empty body":   "",
		"empty object": "{}",
		"blank fields": `{"topic":"  ","url":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			runner := &stubRunner{}
			app, _ := newTestApp(t, runner)
			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(payload))
			rec := httptest.NewRecorder()
			routes(app).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			resp := decodeError(t, rec.Body)
			if resp.Error != "bad_request" || resp.Message != "Provide a 'topic' or 'url'." {
				t.Fatalf("unexpected error body: %+v", resp)
			}
			if len(runner.calls) != 0 {
				t.Fatalf("runner must not be called")
			}
		})
	}
}

func TestGeneratePodcastInvalidJSON(t *testing.T) {
	app, _ := newTestApp(t, &stubRunner{})
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"topic":`))
	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGeneratePodcastPipelineError(t *testing.T) {
	app, _ := newTestApp(t, &stubRunner{err: errors.New("job id exhausted")})
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"url":"https://example.com/a"}`))
	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "exhausted") {
		t.Fatalf("internal error leaked to client: %s", rec.Body.String())
	}
}

func TestHealthReportsKeys(t *testing.T) {
	app, _ := newTestApp(t, &stubRunner{})
	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := `{"status":"ok","keys_configured":{"minimax":true,"minimax_music":false,"elevenlabs":false}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("unexpected health body:\n got %s\nwant %s", got, want)
	}
}

func TestPodcastBundleZipsJobFiles(t *testing.T) {
	app, store := newTestApp(t, &stubRunner{})
	ctx := context.Background()
	if _, err := store.Write(ctx, domain.ScriptKey("job42"), []byte(`[]`)); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if _, err := store.Write(ctx, domain.MasterKey("job42", "wav"), []byte("RIFF")); err != nil {
		t.Fatalf("write master: %v", err)
	}

	rec := httptest.NewRecorder()
	routes(app).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/podcasts/job42/bundle", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "podcast-job42.zip") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 files, got %d", len(zr.File))
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "job42/") {
			t.Fatalf("entry %q should be relative to the job", f.Name)
		}
	}
}

func TestPodcastBundleUnknownJob(t *testing.T) {
	app, _ := newTestApp(t, &stubRunner{})
	for _, path := range []string{"/v1/podcasts/nosuchjob/bundle", "/v1/podcasts/..%2Fetc/bundle"} {
		rec := httptest.NewRecorder()
		routes(app).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}
