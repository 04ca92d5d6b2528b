package domain

import "errors"

var (
	ErrMissingInput        = errors.New("missing topic or url")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrTimeout             = errors.New("timed out")
	ErrInvalidSpeaker      = errors.New("invalid speaker")
)
