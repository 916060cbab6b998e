// errors.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the error type surfaced at the HTTP boundary.

package boggle

import "fmt"

// APIError is an error with an associated HTTP status code. All
// state-machine preconditions fail with one of these; anything else
// bubbling out of a handler is a 500.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	return e.Msg
}

// apiErr builds an APIError
func apiErr(status int, format string, args ...any) *APIError {
	return &APIError{Status: status, Msg: fmt.Sprintf(format, args...)}
}

// Common boundary errors
var (
	errSessionGone = apiErr(410, "Session has ended")
	errPlayerGone  = apiErr(410, "You cannot submit after leaving")
)
