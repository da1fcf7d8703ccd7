package candidates

import "errors"

// Sentinel kinds for candidate pool errors.
var (
	ErrQuery    = errors.New("candidate pool query failed")
	ErrSeedFile = errors.New("invalid candidate seed file")
)
