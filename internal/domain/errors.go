package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPendingNotFound            = errors.New("pending verification not found")
	ErrUnknownVerificationRequest = errors.New("unknown verification request")
	ErrNoFurtherWorkflow          = errors.New("no further verification workflow")
	ErrUnsupportedChannel         = errors.New("unsupported channel")
	ErrEmptyCommand               = errors.New("empty command")
)

// DispatchError reports a reply that was only partly delivered.
type DispatchError struct {
	Sent  int
	Total int
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("sent %d of %d segments: %v", e.Sent, e.Total, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
