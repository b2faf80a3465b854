// Package faults defines the error kinds shared by the tool services. The
// tool surface flattens every error to text, but services still classify
// failures so tests and callers can tell them apart with errors.Is.
package faults

import "errors"

var (
	// ErrNotFound means no matching title or series exists upstream.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means a caller-supplied value is out of range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnparseableTime means a date/time expression could not be resolved.
	ErrUnparseableTime = errors.New("unparseable time")
	// ErrIncompleteMetadata means the provider lacks data the operation needs.
	ErrIncompleteMetadata = errors.New("incomplete metadata")
	// ErrUpstream means a gateway call failed after retries.
	ErrUpstream = errors.New("upstream failure")
)
