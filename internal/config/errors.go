package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	ErrInvalidPort      = errors.New("invalid port: must be between 1 and 65535")
	ErrInvalidTopN      = errors.New("invalid pipeline.top_n: must be between 1 and 100")
	ErrInvalidPreview   = errors.New("invalid pipeline.preview_runes: must be non-negative")
	ErrUnknownBackend   = errors.New("invalid fetch.backend: must be colly or http")
	ErrInvalidTimeout   = errors.New("invalid fetch.timeout: must be positive")
	ErrInvalidLogLevel  = errors.New("invalid log.level: must be debug, info, warn or error")
	ErrInvalidWordCloud = errors.New("invalid wordcloud size: width and height must be positive")
)

// ErrConfigNotFound is returned when an explicitly named config file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
