package control

import (
	"errors"
	"fmt"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/motor"
)

// ErrNoTransport is returned when the Controller has no transport.
var ErrNoTransport = errors.New("no transport")

// FaultError reports latched faults of a node.
type FaultError struct {
	Node can.NodeID
	Bits motor.FaultBits
}

// Error implements error.
func (e *FaultError) Error() string {
	return fmt.Sprintf("node %d fault %#04x", e.Node, uint16(e.Bits))
}
