package transport

import "errors"

var (
	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport closed")
)
