package research

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestWikipediaBriefSuccess(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "PodcastGenerator") {
			t.Fatalf("unexpected user agent %q", ua)
		}
		q := r.URL.Query()
		switch q.Get("action") {
		case "opensearch":
			if q.Get("search") != "black holes" || q.Get("limit") != "1" {
				t.Fatalf("unexpected opensearch query %v", q)
			}
			return textResponse(http.StatusOK, `["black holes",["Black hole"],[""],["https://en.wikipedia.org/wiki/Black_hole"]]`), nil
		case "query":
			if q.Get("titles") != "Black hole" || q.Get("exchars") != "3000" || q.Get("explaintext") != "1" {
				t.Fatalf("unexpected extract query %v", q)
			}
			return textResponse(http.StatusOK, `{"query":{"pages":{"4650":{"title":"Black hole","extract":"  A black hole is a region of spacetime.  "}}}}`), nil
		}
		t.Fatalf("unexpected request %s", r.URL)
		return nil, nil
	})}

	p := NewProvider(Options{HTTPClient: client})
	got := p.Research(context.Background(), "black holes", "")
	want := "Wikipedia — Black hole\n\nA black hole is a region of spacetime."
	if got != want {
		t.Fatalf("brief = %q, want %q", got, want)
	}
}

func TestWikipediaBriefMarkers(t *testing.T) {
	cases := []struct {
		name      string
		transport roundTripFunc
		want      string
	}{
		{
			name: "no_match",
			transport: func(r *http.Request) (*http.Response, error) {
				return textResponse(http.StatusOK, `["zzqx",[],[],[]]`), nil
			},
			want: "Topic: zzqx. (No Wikipedia article found — generate from general knowledge.)",
		},
		{
			name: "empty_extract",
			transport: func(r *http.Request) (*http.Response, error) {
				if r.URL.Query().Get("action") == "opensearch" {
					return textResponse(http.StatusOK, `["zzqx",["Zzqx"],[""],[""]]`), nil
				}
				return textResponse(http.StatusOK, `{"query":{"pages":{"1":{"title":"Zzqx","extract":"   "}}}}`), nil
			},
			want: "Topic: zzqx. (Wikipedia extract was empty — generate from general knowledge.)",
		},
		{
			name: "network_failure",
			transport: func(r *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			want: "Topic: zzqx. (Wikipedia lookup failed — generate from general knowledge.)",
		},
		{
			name: "server_error",
			transport: func(r *http.Request) (*http.Response, error) {
				return textResponse(http.StatusServiceUnavailable, "down"), nil
			},
			want: "Topic: zzqx. (Wikipedia lookup failed — generate from general knowledge.)",
		},
		{
			name: "garbage_payload",
			transport: func(r *http.Request) (*http.Response, error) {
				return textResponse(http.StatusOK, `<html>oops</html>`), nil
			},
			want: "Topic: zzqx. (Wikipedia lookup failed — generate from general knowledge.)",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := NewProvider(Options{HTTPClient: &http.Client{Transport: tc.transport}})
			if got := p.Research(context.Background(), "zzqx", ""); got != tc.want {
				t.Fatalf("brief = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestScrapeArticle(t *testing.T) {
	page := `<html><head><title>t</title><style>body{}</style></head><body>
<header>Site header</header>
<nav>Home | About</nav>
<article>
  <h1>Deep Sea Vents</h1>
  <script>track()</script>
  <p>Hydrothermal vents host life.
     Chemosynthesis powers it.</p>
  <aside>Related links</aside>
  <form><input value="x">Subscribe</form>
</article>
<footer>Copyright</footer>
</body></html>`
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get("User-Agent") != scraperUserAgent {
			t.Fatalf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		return textResponse(http.StatusOK, page), nil
	})}

	p := NewProvider(Options{HTTPClient: client})
	got := p.Research(context.Background(), "ignored topic", "https://example.com/vents")
	want := "Source: https://example.com/vents\n\nDeep Sea Vents\nHydrothermal vents host life.\nChemosynthesis powers it."
	if got != want {
		t.Fatalf("brief = %q, want %q", got, want)
	}
}

func TestScrapeMarkers(t *testing.T) {
	cases := []struct {
		name      string
		transport roundTripFunc
		want      string
	}{
		{
			name: "script_only_page",
			transport: func(*http.Request) (*http.Response, error) {
				return textResponse(http.StatusOK, `<html><body><script>var a = 1;</script><style>p{}</style></body></html>`), nil
			},
			want: "Article URL: https://example.com/a. (Page content was empty — generate from general knowledge.)",
		},
		{
			name: "not_found",
			transport: func(*http.Request) (*http.Response, error) {
				return textResponse(http.StatusNotFound, "missing"), nil
			},
			want: "Article URL: https://example.com/a. (Scraping failed — generate from general knowledge.)",
		},
		{
			name: "network_failure",
			transport: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("dns failure")
			},
			want: "Article URL: https://example.com/a. (Scraping failed — generate from general knowledge.)",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := NewScraper(ScraperOptions{HTTPClient: &http.Client{Transport: tc.transport}})
			if got := s.Scrape(context.Background(), "https://example.com/a"); got != tc.want {
				t.Fatalf("brief = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractTextPrefersMainAndCapsLines(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body><p>outside main</p><main>")
	for i := 0; i < 150; i++ {
		sb.WriteString("<p>line</p>")
	}
	sb.WriteString("</main></body></html>")
	doc, err := html.Parse(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := strings.Split(ExtractText(doc), "\n")
	if len(got) != maxExcerptLines {
		t.Fatalf("got %d lines, want %d", len(got), maxExcerptLines)
	}
	for _, line := range got {
		if line != "line" {
			t.Fatalf("unexpected line %q", line)
		}
	}
}

func TestExtractTextNormalizesToNFC(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<body><p>Cafe\u0301</p></body>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := ExtractText(doc); got != "Caf\u00e9" {
		t.Fatalf("ExtractText = %q, want composed form", got)
	}
}
