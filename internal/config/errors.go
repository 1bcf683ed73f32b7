package config

import "errors"

var (
	// ErrInvalidConfig marks a setting or location seed that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file or env source that could not be read or decoded.
	ErrLoadConfig = errors.New("load config failed")
)
