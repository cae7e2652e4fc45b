package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidBoundingBox = errors.New("invalid bounding box")
	ErrInvalidResponse    = errors.New("invalid response")
	ErrDisallowedChar     = errors.New("disallowed character")
	ErrInvalidToken       = errors.New("invalid token")
	ErrQueryTooLarge      = errors.New("query too large")
	ErrTooManyNodes       = errors.New("too many nodes")
	ErrCountMismatch      = errors.New("node count does not match response lines")
	ErrParse              = errors.New("parse error")
	ErrAlreadyResolved    = errors.New("intersection already resolved")
)

// ParseError reports which line and token of a text input failed.
// Line is 0 when the text did not come from a numbered source.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: token %q: %v", e.Line, e.Token, e.Err)
	}
	return fmt.Sprintf("token %q: %v", e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
