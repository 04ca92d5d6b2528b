package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"podcastgen/internal/infra/geoip"
)

type locationContextKey struct{}

// Geo tags each request with the caller's coarse location. Edge headers win
// over the database lookup; a nil locator only honors headers.
func Geo(locator geoip.Locator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if loc, ok := ResolveLocation(r, locator); ok {
				r = r.WithContext(context.WithValue(r.Context(), locationContextKey{}, loc))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LocationFromContext returns the location stored by Geo.
func LocationFromContext(ctx context.Context) (geoip.Location, bool) {
	loc, ok := ctx.Value(locationContextKey{}).(geoip.Location)
	return loc, ok
}

// ResolveLocation resolves a best-effort location for the given request.
func ResolveLocation(r *http.Request, locator geoip.Locator) (geoip.Location, bool) {
	if r == nil {
		return geoip.Location{}, false
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return geoip.Location{Country: strings.ToUpper(val)}, true
		}
	}
	if locator == nil {
		return geoip.Location{}, false
	}
	ip := ClientIP(r)
	if ip == "" {
		return geoip.Location{}, false
	}
	loc, err := locator.Locate(ip)
	if err != nil || loc.Country == "" {
		return geoip.Location{}, false
	}
	return loc, true
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
