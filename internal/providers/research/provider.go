package research

import (
	"context"
	"net/http"
	"strings"

	"podcastgen/internal/infra"
)

// Researcher resolves a topic or article URL into a text brief. It never
// fails: every problem degrades into a marker brief the script stage can
// still work from.
type Researcher interface {
	Research(ctx context.Context, topic, url string) string
}

// Options configures the default research provider.
type Options struct {
	HTTPClient       *http.Client
	WikipediaBaseURL string
	UserAgent        string
	Logger           *infra.Logger
}

// Provider routes URL jobs to the scraper and topic jobs to Wikipedia.
type Provider struct {
	wikipedia *WikipediaClient
	scraper   *Scraper
}

// NewProvider wires both research backends onto one shared client.
func NewProvider(opts Options) *Provider {
	return &Provider{
		wikipedia: NewWikipediaClient(WikipediaOptions{
			BaseURL:    opts.WikipediaBaseURL,
			UserAgent:  opts.UserAgent,
			HTTPClient: opts.HTTPClient,
			Logger:     opts.Logger,
		}),
		scraper: NewScraper(ScraperOptions{
			HTTPClient: opts.HTTPClient,
			Logger:     opts.Logger,
		}),
	}
}

// Research prefers the URL when one is given.
func (p *Provider) Research(ctx context.Context, topic, url string) string {
	if url = strings.TrimSpace(url); url != "" {
		return p.scraper.Scrape(ctx, url)
	}
	return p.wikipedia.Brief(ctx, strings.TrimSpace(topic))
}

var _ Researcher = (*Provider)(nil)
