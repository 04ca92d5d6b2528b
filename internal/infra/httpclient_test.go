package infra

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestHTTPClientFailuresStayPerCall(t *testing.T) {
	var calls int
	client := NewHTTPClient(HTTPClientOptions{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			if calls <= 5 {
				return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader("bad")), Header: make(http.Header)}, nil
			}
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok")), Header: make(http.Header)}, nil
		}),
	})
	defer client.Close()

	for i := 0; i < 10; i++ {
		resp, err := client.Client().Get("http://flaky.test/x")
		if err != nil {
			t.Fatalf("request %d: unexpected error %v", i, err)
		}
		want := http.StatusOK
		if i < 5 {
			want = http.StatusBadGateway
		}
		if resp.StatusCode != want {
			t.Fatalf("request %d: status %d, want %d", i, resp.StatusCode, want)
		}
		resp.Body.Close()
	}
	if calls != 10 {
		t.Fatalf("every call must reach the upstream, transport saw %d", calls)
	}
}

func TestHTTPClientPassesTransportErrors(t *testing.T) {
	client := NewHTTPClient(HTTPClientOptions{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial failed")
		}),
	})
	defer client.Close()

	if _, err := client.Client().Get("http://host.test/"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestHTTPClientDefaults(t *testing.T) {
	client := NewHTTPClient(HTTPClientOptions{})
	defer client.Close()

	if got := client.Client().Timeout; got != 300*time.Second {
		t.Fatalf("expected 300s timeout, got %s", got)
	}
	if _, ok := client.Client().Transport.(*http.Transport); !ok {
		t.Fatalf("expected pooled *http.Transport, got %T", client.Client().Transport)
	}
	var nilClient *HTTPClient
	nilClient.Close()
	if nilClient.Client() != nil {
		t.Fatalf("nil client should yield nil *http.Client")
	}
}
