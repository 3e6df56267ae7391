package cota

import "errors"

var (
	// ErrNotAuthorized means the acting user is not the share's creator.
	ErrNotAuthorized = errors.New("cota: not authorized")
	// ErrStaleMessage means the transport refused to edit or delete an old message.
	ErrStaleMessage = errors.New("cota: stale message")
	// ErrNotFound means the referenced share or view no longer exists.
	ErrNotFound = errors.New("cota: not found")
)
