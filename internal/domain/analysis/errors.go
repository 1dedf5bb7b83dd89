package analysis

import "errors"

// Failure taxonomy for one analysis attempt. The HTTP layer collapses these
// into a single user-facing message; callers and tests can still tell them
// apart with errors.Is.
var (
	// ErrEmptyInput indicates the submitted text was empty after trimming.
	ErrEmptyInput = errors.New("analysis input is empty")

	// ErrNetwork indicates a transport failure or timeout reaching the model.
	ErrNetwork = errors.New("analysis service unreachable")

	// ErrMalformedResponse indicates the model reply was not valid JSON or
	// violated the result schema.
	ErrMalformedResponse = errors.New("analysis response malformed")

	// ErrUpstreamRejected indicates the model service returned a
	// service-level error (quota, safety block, bad request).
	ErrUpstreamRejected = errors.New("analysis rejected by service")
)
