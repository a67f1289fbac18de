package can

// NodeID identifies one controller on the bus.
type NodeID uint8

// Node id range usable on the wire.
const (
	MinNodeID NodeID = 1
	MaxNodeID NodeID = 0x7f
)

// IsValid checks the node id fits in the low 7 bits and is not zero.
func (n NodeID) IsValid() bool {
	return n >= MinNodeID && n <= MaxNodeID
}

// ObjectClass identifies the payload format of a message.
type ObjectClass uint16

// Known object classes.
const (
	ClassTelemetry  ObjectClass = 0x180
	ClassCommand    ObjectClass = 0x200
	ClassTelemetry2 ObjectClass = 0x280
	ClassTelemetry3 ObjectClass = 0x380
	ClassTelemetry4 ObjectClass = 0x480
)

const nodeMask = 0x80

// Compose builds an identifier from node and class.
// The node id isn't checked: anything at or above 0x80 spills into the
// class bits, so callers validate first.
func Compose(node NodeID, class ObjectClass) uint32 {
	return uint32(node) + uint32(class)
}

// NodeOf extracts the node id from an identifier.
func NodeOf(id uint32) NodeID {
	return NodeID(id % nodeMask)
}

// ClassOf extracts the object class from an identifier.
func ClassOf(id uint32) ObjectClass {
	return ObjectClass(id - id%nodeMask)
}
