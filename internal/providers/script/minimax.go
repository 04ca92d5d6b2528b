package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"podcastgen/internal/domain"
	"podcastgen/internal/infra"
)

// Generator turns a research brief into a two-host dialogue. Implementations
// always return at least one line.
type Generator interface {
	Generate(ctx context.Context, topic, brief string, tone domain.Tone) []domain.DialogueLine
}

type MiniMaxOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
	Logger      *infra.Logger
	OnFallback  func(reason string, err error)
}

type MiniMaxGenerator struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *infra.Logger
	onFallback  func(reason string, err error)
}

const (
	defaultMiniMaxModel   = "MiniMax-Text-01"
	defaultMiniMaxBaseURL = "https://api.minimaxi.chat/v1"
	defaultTemperature    = 0.85
	defaultMaxTokens      = 4096
	miniMaxDefaultTimeout = 120 * time.Second
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	BaseResp *struct {
		StatusCode int    `json:"status_code"`
		StatusMsg  string `json:"status_msg"`
	} `json:"base_resp"`
}

// NewMiniMaxGenerator builds a generator. A missing API key is not an error:
// the generator then always answers with the placeholder script.
func NewMiniMaxGenerator(opts MiniMaxOptions) *MiniMaxGenerator {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultMiniMaxBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultMiniMaxModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: miniMaxDefaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &MiniMaxGenerator{
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      client,
		logger:      logger,
		onFallback:  opts.OnFallback,
	}
}

func (g *MiniMaxGenerator) Generate(ctx context.Context, topic, brief string, tone domain.Tone) []domain.DialogueLine {
	if g.apiKey == "" {
		return g.useFallback(topic, "missing_api_key", nil)
	}
	payload := chatRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(topic, brief, tone)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return g.useFallback(topic, "encode_request", err)
	}
	endpoint := fmt.Sprintf("%s/text/chatcompletion_v2", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return g.useFallback(topic, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return g.useFallback(topic, "http_request", fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.useFallback(topic, fmt.Sprintf("http_%d", resp.StatusCode), fmt.Errorf("%w: minimax status %d", domain.ErrUpstreamUnavailable, resp.StatusCode))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return g.useFallback(topic, "decode_response", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err))
	}
	if len(out.Choices) == 0 {
		err := errors.New("no choices")
		if out.BaseResp != nil && out.BaseResp.StatusCode != 0 {
			err = fmt.Errorf("minimax base_resp %d: %s", out.BaseResp.StatusCode, out.BaseResp.StatusMsg)
		}
		return g.useFallback(topic, "empty_choices", err)
	}
	lines, err := ParseScript(out.Choices[0].Message.Content)
	if err != nil {
		return g.useFallback(topic, "parse_script", err)
	}
	g.logger.Info().Str("stage", "script").Int("lines", len(lines)).Msg("script generated")
	return lines
}

func (g *MiniMaxGenerator) useFallback(topic, reason string, err error) []domain.DialogueLine {
	evt := g.logger.Warn()
	if err != nil {
		evt = g.logger.Error().Err(err)
	}
	evt.Str("stage", "script").Str("reason", reason).Msg("using placeholder script")
	if g.onFallback != nil {
		g.onFallback(reason, err)
	}
	return Placeholder(topic)
}

var _ Generator = (*MiniMaxGenerator)(nil)
