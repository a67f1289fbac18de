package motor

import (
	"encoding/binary"
	"math"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/slcan"
)

// PayloadLen is the payload size of all commands and telemetry.
const PayloadLen = 8

// Codec translates between payloads and commands/telemetry.
// It holds no state and is safe for concurrent use.
type Codec struct {
	ByteOrder binary.ByteOrder
}

// DefaultCodec uses the little-endian layout of the controllers.
var DefaultCodec = Codec{ByteOrder: binary.LittleEndian}

func (c Codec) order() binary.ByteOrder {
	if c.ByteOrder == nil {
		return binary.LittleEndian
	}
	return c.ByteOrder
}

func (c Codec) putFloat32(b []byte, v float32) {
	c.order().PutUint32(b, math.Float32bits(v))
}

func (c Codec) float32(b []byte) float32 {
	return math.Float32frombits(c.order().Uint32(b))
}

// CommandPayload builds the payload of a command.
func (c Codec) CommandPayload(cmd Command) (payload [PayloadLen]byte) {
	payload[0] = byte(cmd.Code)
	if cmd.Code == CodeSpeedControl {
		c.putFloat32(payload[4:], cmd.Speed)
	}
	return
}

// CommandFrame builds the frame carrying a command to a node.
// The node id isn't validated.
func (c Codec) CommandFrame(node can.NodeID, cmd Command) can.Frame {
	payload := c.CommandPayload(cmd)
	return can.NewFrame(can.Compose(node, can.ClassCommand), payload[:])
}

// EncodeCommand renders a command to a node as an SLCAN sentence.
func (c Codec) EncodeCommand(node can.NodeID, cmd Command) ([]byte, error) {
	return slcan.Encode(c.CommandFrame(node, cmd))
}

// DecodeCommand parses a command frame.
func (c Codec) DecodeCommand(f can.Frame) (can.NodeID, Command, bool) {
	if f.Class() != can.ClassCommand || len(f.Data) != PayloadLen {
		return 0, Command{}, false
	}
	cmd := Command{Code: CommandCode(f.Data[0])}
	switch cmd.Code {
	case CodeSpeedControl:
		cmd.Speed = c.float32(f.Data[4:])
	case CodeStop, CodeReset:
	default:
		return 0, Command{}, false
	}
	return f.Node(), cmd, true
}

// DecodeTelemetry parses a telemetry frame. Only the primary class is
// understood; other frames yield false.
func (c Codec) DecodeTelemetry(f can.Frame) (*Telemetry, bool) {
	switch TelemetryKindOf(f.Class()) {
	case KindPrimary:
		if len(f.Data) != PayloadLen {
			return nil, false
		}
		order := c.order()
		return &Telemetry{
			Node:       f.Node(),
			FaultBits:  FaultBits(order.Uint16(f.Data[0:])),
			BusVoltage: DecodeFloat16(order.Uint16(f.Data[2:])),
			Speed:      c.float32(f.Data[4:]),
		}, true
	case KindReserved:
		// layouts are device specific and not decoded yet.
		return nil, false
	default:
		return nil, false
	}
}

// TelemetryFrame builds the primary telemetry frame a node would send.
// The voltage is rounded to half precision.
func (c Codec) TelemetryFrame(t Telemetry) can.Frame {
	payload := make([]byte, PayloadLen)
	order := c.order()
	order.PutUint16(payload[0:], uint16(t.FaultBits))
	order.PutUint16(payload[2:], EncodeFloat16(t.BusVoltage))
	c.putFloat32(payload[4:], t.Speed)
	return can.NewFrame(can.Compose(t.Node, can.ClassTelemetry), payload)
}
