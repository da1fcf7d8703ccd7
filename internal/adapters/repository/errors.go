package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrOpen    = errors.New("open database")
	ErrMigrate = errors.New("migrate database")
	ErrCodec   = errors.New("decode stored value")
)
