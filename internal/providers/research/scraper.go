package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"podcastgen/internal/domain"
	"podcastgen/internal/infra"
)

const (
	scraperUserAgent = "Mozilla/5.0 (compatible; PodcastGenerator/1.0)"
	maxPageBytes     = 5 << 20
	maxExcerptLines  = 120
)

// Subtrees that never carry article prose.
var noiseElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Nav:    true,
	atom.Footer: true,
	atom.Header: true,
	atom.Aside:  true,
	atom.Form:   true,
}

// ScraperOptions configures the article scraper.
type ScraperOptions struct {
	HTTPClient *http.Client
	UserAgent  string
	Logger     *infra.Logger
}

// Scraper extracts readable text from an arbitrary article page.
type Scraper struct {
	client    *http.Client
	userAgent string
	logger    *infra.Logger
}

// NewScraper applies defaults to the provided options.
func NewScraper(opts ScraperOptions) *Scraper {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = scraperUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Scraper{client: client, userAgent: userAgent, logger: logger}
}

// Scrape returns "Source: <url>" followed by the page excerpt, or a marker
// brief when the page could not be read or had no text.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) string {
	log := s.logger.With().Str("stage", "research").Str("url", pageURL).Logger()

	excerpt, err := s.fetchExcerpt(ctx, pageURL)
	if err != nil {
		log.Error().Err(err).Msg("article scrape failed")
		return fmt.Sprintf("Article URL: %s. (Scraping failed — generate from general knowledge.)", pageURL)
	}
	if excerpt == "" {
		log.Warn().Msg("article page had no readable text")
		return fmt.Sprintf("Article URL: %s. (Page content was empty — generate from general knowledge.)", pageURL)
	}
	log.Info().Int("chars", len(excerpt)).Msg("article excerpt ready")
	return fmt.Sprintf("Source: %s\n\n%s", pageURL, excerpt)
}

func (s *Scraper) fetchExcerpt(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: scraper: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: scraper status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: scraper parse: %v", domain.ErrMalformedResponse, err)
	}
	return ExtractText(doc), nil
}

// ExtractText returns up to 120 non-empty trimmed lines of readable text from
// the first <article>, else <main>, else <body> of doc. Noise subtrees are
// ignored.
func ExtractText(doc *html.Node) string {
	root := findFirst(doc, atom.Article)
	if root == nil {
		root = findFirst(doc, atom.Main)
	}
	if root == nil {
		root = findFirst(doc, atom.Body)
	}
	if root == nil {
		root = doc
	}

	var lines []string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && noiseElements[n.DataAtom] {
			return true
		}
		if n.Type == html.TextNode {
			for _, line := range strings.Split(n.Data, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
					if len(lines) == maxExcerptLines {
						return false
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)

	return norm.NFC.String(strings.Join(lines, "\n"))
}

// findFirst locates the first element with the given tag in document order,
// skipping noise subtrees.
func findFirst(n *html.Node, tag atom.Atom) *html.Node {
	if n.Type == html.ElementNode {
		if noiseElements[n.DataAtom] {
			return nil
		}
		if n.DataAtom == tag {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}
