package music

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"podcastgen/internal/domain"
	"podcastgen/internal/infra"
)

// JinglePrompt is the fixed brief sent to the music model.
const JinglePrompt = "Upbeat 15-second podcast intro jingle, light acoustic guitar, soft percussion, professional friendly tone"

// Generator produces an optional jingle. A nil result means the episode is
// assembled without one.
type Generator interface {
	Generate(ctx context.Context, topic, jobID string) *domain.Jingle
}

// JingleStore persists the downloaded jingle.
type JingleStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

type MiniMaxOptions struct {
	APIKey       string
	GroupID      string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	MaxAttempts  int
	HTTPClient   *http.Client
	Waiter       Waiter
	Store        JingleStore
	Logger       *infra.Logger
}

type MiniMaxJingleGenerator struct {
	apiKey       string
	groupID      string
	baseURL      string
	model        string
	pollInterval time.Duration
	maxAttempts  int
	client       *http.Client
	waiter       Waiter
	store        JingleStore
	logger       *infra.Logger
}

const (
	defaultBaseURL      = "https://api.minimaxi.chat/v1"
	defaultMusicModel   = "music-01"
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 30
	maxJingleBytes      = 32 << 20
)

type submitRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

type queryResponse struct {
	Status string `json:"status"`
	File   *struct {
		DownloadURL string `json:"download_url"`
	} `json:"file"`
}

func NewMiniMaxJingleGenerator(opts MiniMaxOptions) *MiniMaxJingleGenerator {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultMusicModel
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	waiter := opts.Waiter
	if waiter == nil {
		waiter = TimerWaiter{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &MiniMaxJingleGenerator{
		apiKey:       strings.TrimSpace(opts.APIKey),
		groupID:      strings.TrimSpace(opts.GroupID),
		baseURL:      baseURL,
		model:        model,
		pollInterval: interval,
		maxAttempts:  attempts,
		client:       client,
		waiter:       waiter,
		store:        opts.Store,
		logger:       logger,
	}
}

func (g *MiniMaxJingleGenerator) Generate(ctx context.Context, topic, jobID string) *domain.Jingle {
	log := g.logger.With().Str("stage", "jingle").Str("job_id", jobID).Logger()
	if g.apiKey == "" || g.groupID == "" {
		log.Warn().Msg("minimax api key or group id not set, skipping jingle")
		return nil
	}

	taskID, err := g.submit(ctx)
	if err != nil {
		log.Error().Err(err).Msg("jingle submit failed")
		return nil
	}
	log.Info().Str("task_id", taskID).Msg("jingle task submitted")

	state, downloadURL, err := g.poll(ctx, taskID, &log)
	if errors.Is(err, domain.ErrTimeout) {
		log.Warn().Err(err).Str("task_id", taskID).Int("attempts", g.maxAttempts).Msg("timed out waiting for jingle")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Str("task_id", taskID).Msg("jingle polling failed")
		return nil
	}
	switch state {
	case PollSucceeded:
	default:
		log.Warn().Str("task_id", taskID).Str("state", state.String()).Msg("jingle generation failed")
		return nil
	}

	audio, err := g.download(ctx, downloadURL)
	if err != nil {
		log.Error().Err(err).Msg("jingle download failed")
		return nil
	}
	key := domain.JingleKey(jobID)
	if g.store != nil {
		if key, err = g.store.Write(ctx, key, audio); err != nil {
			log.Error().Err(err).Msg("store jingle failed")
			return nil
		}
	}
	log.Info().Int("bytes", len(audio)).Str("key", key).Msg("jingle ready")
	return &domain.Jingle{JobID: jobID, Audio: audio, StorageKey: key}
}

func (g *MiniMaxJingleGenerator) submit(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(submitRequest{Model: g.model, Prompt: JinglePrompt}); err != nil {
		return "", fmt.Errorf("minimax music: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/music_generation?GroupId=%s", g.baseURL, url.QueryEscape(g.groupID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("minimax music: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var out submitResponse
	if err := g.doJSON(req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.TaskID) == "" {
		return "", fmt.Errorf("%w: no task_id in submit response", domain.ErrMalformedResponse)
	}
	return out.TaskID, nil
}

// poll waits one interval before every query, so the worst case costs
// maxAttempts intervals. An exhausted budget yields PollTimedOut with an
// error wrapping domain.ErrTimeout.
func (g *MiniMaxJingleGenerator) poll(ctx context.Context, taskID string, log *infra.Logger) (PollState, string, error) {
	params := url.Values{}
	params.Set("task_id", taskID)
	params.Set("GroupId", g.groupID)
	endpoint := fmt.Sprintf("%s/query/music_generation?%s", g.baseURL, params.Encode())

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := g.waiter.Wait(ctx, g.pollInterval); err != nil {
			return PollPending, "", err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return PollPending, "", fmt.Errorf("minimax music: build query: %w", err)
		}
		var out queryResponse
		if err := g.doJSON(req, &out); err != nil {
			return PollPending, "", err
		}
		state := statusToState(out.Status)
		log.Debug().Int("attempt", attempt).Str("status", out.Status).Msg("jingle poll")
		switch state {
		case PollSucceeded:
			if out.File == nil || strings.TrimSpace(out.File.DownloadURL) == "" {
				return PollFailed, "", nil
			}
			return PollSucceeded, out.File.DownloadURL, nil
		case PollFailed:
			return PollFailed, "", nil
		}
	}
	return PollTimedOut, "", fmt.Errorf("%w: jingle task %s after %d polls", domain.ErrTimeout, taskID, g.maxAttempts)
}

func (g *MiniMaxJingleGenerator) download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("minimax music: build download: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: jingle download: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: jingle download status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxJingleBytes))
	if err != nil {
		return nil, fmt.Errorf("jingle download: read body: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("jingle download: empty body")
	}
	return audio, nil
}

func (g *MiniMaxJingleGenerator) doJSON(req *http.Request, dst any) error {
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: minimax music: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: minimax music status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: minimax music decode: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

var _ Generator = (*MiniMaxJingleGenerator)(nil)
