package remote

import "errors"

// Sentinel kinds for remote scoring errors.
var (
	ErrUnavailable     = errors.New("remote scorer unavailable")
	ErrBadResponse     = errors.New("unusable remote response")
	ErrEmptyResponse   = errors.New("empty remote response")
	ErrUnknownProvider = errors.New("unknown remote provider")
	ErrMissingAPIKey   = errors.New("remote api key is required")
)
