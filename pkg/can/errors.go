package can

import "errors"

var (
	// ErrInvalidID indicates the identifier doesn't fit in 11 bits.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrInvalidLen indicates the declared length is above 8 or doesn't
	// match the payload.
	ErrInvalidLen = errors.New("invalid data length")
	// ErrInvalidNodeID indicates a node id outside 1..127.
	ErrInvalidNodeID = errors.New("invalid node id")
)
