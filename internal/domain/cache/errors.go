package cache

import "errors"

// ErrNotFound is returned by Durable implementations when no live entry exists.
var ErrNotFound = errors.New("cache entry not found")
