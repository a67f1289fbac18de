package can

import "fmt"

// Limits of a classical standard frame.
const (
	MaxID      uint32 = 0x7ff
	MaxDataLen        = 8
)

// Frame is a standard (11-bit) CAN data frame.
type Frame struct {
	ID   uint32
	Len  uint8
	Data []byte
}

// NewFrame creates a Frame with Len taken from data.
// The data is not copied.
func NewFrame(id uint32, data []byte) Frame {
	return Frame{ID: id, Len: uint8(len(data)), Data: data}
}

// Validate checks identifier range and declared length.
// Inconsistent frames are rejected, never repaired.
func (f Frame) Validate() error {
	if f.ID > MaxID {
		return ErrInvalidID
	}
	if f.Len > MaxDataLen || int(f.Len) != len(f.Data) {
		return ErrInvalidLen
	}
	return nil
}

// Node gets the node id part of the identifier.
func (f Frame) Node() NodeID {
	return NodeOf(f.ID)
}

// Class gets the object class part of the identifier.
func (f Frame) Class() ObjectClass {
	return ClassOf(f.ID)
}

// String implements fmt.Stringer, e.g. "205#2000000000c842".
func (f Frame) String() string {
	return fmt.Sprintf("%03x#%x", f.ID, f.Data)
}
