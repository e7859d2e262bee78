package domain

import "errors"

var (
	// ErrNotFound: a referenced room, room type, hotel or reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: a lifecycle transition guard rejected the operation.
	ErrInvalidState = errors.New("invalid reservation state")

	// ErrInvalidInput: malformed search criteria or event payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownEventKind is fatal for the message carrying it; consumers
	// route it to the dead-letter path instead of retrying.
	ErrUnknownEventKind = errors.New("unknown event kind")
)
