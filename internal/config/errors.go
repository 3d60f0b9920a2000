package config

import "errors"

// Configuration validation errors.
// Config.Validate wraps these in an apperr configuration error, so callers
// can match either the specific sentinel or the error kind with errors.Is.
var (
	// ErrNoInput is returned when no source document is given.
	ErrNoInput = errors.New("no input document specified")

	// ErrInvalidRatio is returned when the scale ratio is not a finite
	// positive number.
	ErrInvalidRatio = errors.New("invalid ratio: must be a finite number greater than 0")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("output directory must not be empty")

	// ErrUnknownEngine is returned when the recognition engine is not one of
	// the supported engines.
	ErrUnknownEngine = errors.New("unknown recognition engine")

	// ErrUnknownLogFormat is returned when the log format is neither text
	// nor json.
	ErrUnknownLogFormat = errors.New("unknown log format")

	// ErrMissingAzureEndpoint is returned when the azure engine is selected
	// without an endpoint.
	ErrMissingAzureEndpoint = errors.New("azure engine requires an endpoint")

	// ErrMissingAzureKey is returned when the azure engine is selected
	// without a subscription key.
	ErrMissingAzureKey = errors.New("azure engine requires a key (set azure.key or " + EnvAzureKey + ")")

	// ErrInvalidPollInterval is returned when the azure poll interval is negative.
	ErrInvalidPollInterval = errors.New("invalid azure poll interval: must be non-negative")
)
