package htmlnorm

import "errors"

// Error definitions for the `cybergodev/htmlnorm` package.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("htmlnorm: invalid config")

	// ErrNilTree is returned when a nil root is handed to the processor.
	ErrNilTree = errors.New("htmlnorm: nil tree")

	// ErrProcessorClosed is returned when operations are attempted on a closed processor.
	ErrProcessorClosed = errors.New("htmlnorm: processor closed")

	// ErrMaxDepthExceeded is returned when tree nesting exceeds MaxDepth.
	ErrMaxDepthExceeded = errors.New("htmlnorm: max depth exceeded")

	// ErrInvalidHTML is returned when raw input cannot be decoded or parsed.
	ErrInvalidHTML = errors.New("htmlnorm: invalid HTML")

	// ErrConfigFile is returned when a configuration file cannot be read or parsed.
	ErrConfigFile = errors.New("htmlnorm: config file")
)
