package research

import (
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

const (
	defaultWikipediaBaseURL = "https://en.wikipedia.org/w/api.php"
	defaultUserAgent        = "PodcastGenerator/1.0 (https://github.com/local/podcastgen; contact@example.com)"
	extractChars            = 3000
	maxAPIResponseBytes     = 2 << 20
)

// WikipediaOptions configures the Wikipedia research client.
type WikipediaOptions struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// WikipediaClient builds briefs from the best matching article extract.
type WikipediaClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *infra.Logger
}

// NewWikipediaClient applies defaults to the provided options.
func NewWikipediaClient(opts WikipediaOptions) *WikipediaClient {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = defaultWikipediaBaseURL
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &WikipediaClient{baseURL: baseURL, userAgent: userAgent, client: client, logger: logger}
}

// Brief returns "Wikipedia — <title>" followed by the extract, or a marker
// brief when nothing usable was found.
func (c *WikipediaClient) Brief(ctx context.Context, topic string) string {
	log := c.logger.With().Str("stage", "research").Str("topic", topic).Logger()

	title, err := c.search(ctx, topic)
	if err != nil {
		log.Error().Err(err).Msg("wikipedia search failed")
		return fmt.Sprintf("Topic: %s. (Wikipedia lookup failed — generate from general knowledge.)", topic)
	}
	if title == "" {
		log.Warn().Msg("no wikipedia article found")
		return fmt.Sprintf("Topic: %s. (No Wikipedia article found — generate from general knowledge.)", topic)
	}

	extract, err := c.extract(ctx, title)
	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("wikipedia extract failed")
		return fmt.Sprintf("Topic: %s. (Wikipedia lookup failed — generate from general knowledge.)", topic)
	}
	if extract == "" {
		log.Warn().Str("title", title).Msg("wikipedia extract was empty")
		return fmt.Sprintf("Topic: %s. (Wikipedia extract was empty — generate from general knowledge.)", topic)
	}

	brief := fmt.Sprintf("Wikipedia — %s\n\n%s", title, extract)
	log.Info().Str("title", title).Int("chars", len(brief)).Msg("wikipedia brief ready")
	return brief
}

func (c *WikipediaClient) search(ctx context.Context, topic string) (string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", topic)
	params.Set("limit", "1")
	params.Set("format", "json")

	// OpenSearch answers [query, [titles], [descriptions], [urls]].
	var out []json.RawMessage
	if err := c.getJSON(ctx, params, &out); err != nil {
		return "", err
	}
	if len(out) < 2 {
		return "", fmt.Errorf("%w: opensearch payload has %d elements", domain.ErrMalformedResponse, len(out))
	}
	var titles []string
	if err := json.Unmarshal(out[1], &titles); err != nil {
		return "", fmt.Errorf("%w: opensearch titles: %v", domain.ErrMalformedResponse, err)
	}
	if len(titles) == 0 {
		return "", nil
	}
	return strings.TrimSpace(titles[0]), nil
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *WikipediaClient) extract(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exsectionformat", "plain")
	params.Set("exchars", fmt.Sprint(extractChars))
	params.Set("format", "json")

	var out extractResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return "", err
	}
	if len(out.Query.Pages) == 0 {
		return "", errors.New("wikipedia: no pages in extract response")
	}
	for _, page := range out.Query.Pages {
		return strings.TrimSpace(page.Extract), nil
	}
	return "", nil
}

func (c *WikipediaClient) getJSON(ctx context.Context, params url.Values, dst any) error {
	endpoint := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("wikipedia: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wikipedia: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: wikipedia status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: wikipedia decode: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}
