package processing

import "errors"

var (
	// ErrUnknownMethod is returned for a method name no step implements
	ErrUnknownMethod = errors.New("unknown processing method")

	// ErrInvalidArgument is returned when a method argument is missing or unusable
	ErrInvalidArgument = errors.New("invalid method argument")

	// ErrDegenerate is returned when the data cannot be processed by the
	// method, such as a sample whose values sum to zero
	ErrDegenerate = errors.New("degenerate input")

	// ErrEmptyFrame is returned when a frame has no samples or no measurements
	ErrEmptyFrame = errors.New("frame has no values")
)
