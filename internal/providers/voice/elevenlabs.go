package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"podcastgen/internal/domain"
	"podcastgen/internal/infra"
)

// Synthesizer voices a script line by line. The result may be shorter than
// the script; clips keep their original line index.
type Synthesizer interface {
	Synthesize(ctx context.Context, jobID string, lines []domain.DialogueLine) []domain.SpeechClip
}

// ClipStore persists synthesized audio.
type ClipStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

type ElevenLabsOptions struct {
	APIKey          string
	BaseURL         string
	Model           string
	VoiceA          string
	VoiceB          string
	Stability       float64
	SimilarityBoost float64
	HTTPClient      *http.Client
	Store           ClipStore
	Logger          *infra.Logger
}

type ElevenLabsSynthesizer struct {
	apiKey   string
	baseURL  string
	model    string
	voices   map[domain.Speaker]string
	settings voiceSettings
	client   *http.Client
	store    ClipStore
	logger   *infra.Logger
}

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	defaultElevenLabsModel   = "eleven_turbo_v2"
	defaultVoiceA            = "21m00Tcm4TlvDq8ikWAM"
	defaultVoiceB            = "AZnzlk1XvdvUeBnXmlld"
	maxClipBytes             = 32 << 20
	elevenLabsDefaultTimeout = 60 * time.Second
)

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func NewElevenLabsSynthesizer(opts ElevenLabsOptions) *ElevenLabsSynthesizer {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultElevenLabsModel
	}
	settings := voiceSettings{Stability: opts.Stability, SimilarityBoost: opts.SimilarityBoost}
	if settings.Stability <= 0 {
		settings.Stability = 0.5
	}
	if settings.SimilarityBoost <= 0 {
		settings.SimilarityBoost = 0.75
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: elevenLabsDefaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &ElevenLabsSynthesizer{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		model:   model,
		voices: map[domain.Speaker]string{
			domain.SpeakerA: coalesce(opts.VoiceA, defaultVoiceA),
			domain.SpeakerB: coalesce(opts.VoiceB, defaultVoiceB),
		},
		settings: settings,
		client:   client,
		store:    opts.Store,
		logger:   logger,
	}
}

// Synthesize voices lines strictly in order, one request at a time. A failed
// line is logged and skipped.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, jobID string, lines []domain.DialogueLine) []domain.SpeechClip {
	log := s.logger.With().Str("stage", "voice").Str("job_id", jobID).Logger()
	if s.apiKey == "" {
		log.Warn().Msg("elevenlabs api key not set, skipping voice synthesis")
		return nil
	}

	clips := make([]domain.SpeechClip, 0, len(lines))
	for i, line := range lines {
		audio, err := s.synthesizeLine(ctx, line)
		if err != nil {
			log.Error().Err(err).Int("index", i).Str("speaker", string(line.Speaker)).Msg("voice line failed")
			continue
		}
		key := domain.ClipKey(jobID, i, line.Speaker)
		if s.store != nil {
			stored, err := s.store.Write(ctx, key, audio)
			if err != nil {
				log.Error().Err(err).Int("index", i).Msg("store voice clip failed")
				continue
			}
			key = stored
		}
		clips = append(clips, domain.SpeechClip{
			JobID:      jobID,
			Index:      i,
			Speaker:    line.Speaker,
			Audio:      audio,
			StorageKey: key,
		})
		log.Debug().Int("index", i).Int("bytes", len(audio)).Msg("voice line synthesized")
	}
	log.Info().Int("clips", len(clips)).Int("lines", len(lines)).Msg("voice synthesis finished")
	return clips
}

func (s *ElevenLabsSynthesizer) synthesizeLine(ctx context.Context, line domain.DialogueLine) ([]byte, error) {
	voiceID, ok := s.voices[line.Speaker]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSpeaker, line.Speaker)
	}
	payload := ttsRequest{Text: line.Text, ModelID: s.model, VoiceSettings: s.settings}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("elevenlabs: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/text-to-speech/%s", s.baseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: elevenlabs: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: elevenlabs status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxClipBytes))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: elevenlabs returned empty audio", domain.ErrMalformedResponse)
	}
	return audio, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var _ Synthesizer = (*ElevenLabsSynthesizer)(nil)
