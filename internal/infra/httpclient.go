package infra

import (
	"net"
	"net/http"
	"time"
)

// HTTPClientOptions configures the shared upstream client.
type HTTPClientOptions struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Transport      http.RoundTripper
}

// HTTPClient is the process-wide pooled client shared by every pipeline stage.
// It is built once at startup and closed at shutdown; stages receive it by
// injection and never own it. It holds no per-call state, so one failed call
// never affects another call or another job.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient constructs the shared client.
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   connectTimeout,
			ExpectContinueTimeout: time.Second,
		}
	}
	return &HTTPClient{client: &http.Client{Timeout: timeout, Transport: transport}}
}

// Client returns the underlying *http.Client for stage constructors.
func (c *HTTPClient) Client() *http.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Close releases pooled connections.
func (c *HTTPClient) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.CloseIdleConnections()
}
