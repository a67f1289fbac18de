// Package msgs defines the protobuf messages exchanged on the bridge.
package msgs

import (
	"github.com/golang/protobuf/proto"
)

// Command codes, same values as on the CAN bus.
const (
	CodeReset uint32 = 0x01
	CodeStop  uint32 = 0x04
	CodeSpeed uint32 = 0x20
)

// Telemetry is a primary telemetry record of one node.
type Telemetry struct {
	Node       uint32  `protobuf:"varint,1,opt,name=node,proto3" json:"node,omitempty"`
	FaultBits  uint32  `protobuf:"varint,2,opt,name=fault_bits,proto3" json:"fault_bits,omitempty"`
	BusVoltage float32 `protobuf:"fixed32,3,opt,name=bus_voltage,proto3" json:"bus_voltage,omitempty"`
	Speed      float32 `protobuf:"fixed32,4,opt,name=speed,proto3" json:"speed,omitempty"`
	// Timestamp is when the host received the record, in unix nanoseconds.
	Timestamp int64 `protobuf:"varint,5,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Telemetry) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Telemetry) Reset() { *m = Telemetry{} }

// String implements proto.Message.
func (m *Telemetry) String() string { return proto.CompactTextString(m) }

// Command requests a node to act.
type Command struct {
	Code  uint32  `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Speed float32 `protobuf:"fixed32,2,opt,name=speed,proto3" json:"speed,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Command) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Command) Reset() { *m = Command{} }

// String implements proto.Message.
func (m *Command) String() string { return proto.CompactTextString(m) }
