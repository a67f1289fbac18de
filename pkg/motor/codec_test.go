package motor

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/esc.go/pkg/can"
)

func TestCommandPayload(t *testing.T) {
	testCases := []struct {
		name    string
		cmd     Command
		payload [PayloadLen]byte
	}{
		{"speed", SpeedControl(100), [PayloadLen]byte{0x20, 0, 0, 0, 0, 0, 0xc8, 0x42}},
		{"negative speed", SpeedControl(-1), [PayloadLen]byte{0x20, 0, 0, 0, 0, 0, 0x80, 0xbf}},
		{"stop", Stop(), [PayloadLen]byte{0x04}},
		{"reset", Reset(), [PayloadLen]byte{0x01}},
		{"stop ignores speed", Command{Code: CodeStop, Speed: 5}, [PayloadLen]byte{0x04}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.payload, DefaultCodec.CommandPayload(tc.cmd))
		})
	}
}

func TestCommandPayloadBigEndian(t *testing.T) {
	c := Codec{ByteOrder: binary.BigEndian}
	require.Equal(t, [PayloadLen]byte{0x20, 0, 0, 0, 0x42, 0xc8, 0, 0}, c.CommandPayload(SpeedControl(100)))
}

func TestEncodeCommand(t *testing.T) {
	testCases := []struct {
		cmd Command
		out string
	}{
		{SpeedControl(100), "t2058200000000000c842\r"},
		{Stop(), "t20580400000000000000\r"},
		{Reset(), "t20580100000000000000\r"},
	}
	for _, tc := range testCases {
		t.Run(tc.cmd.String(), func(t *testing.T) {
			out, err := DefaultCodec.EncodeCommand(5, tc.cmd)
			require.NoError(t, err)
			require.Equal(t, tc.out, string(out))
		})
	}
}

func TestCommandFrame(t *testing.T) {
	f := DefaultCodec.CommandFrame(5, Stop())
	require.Equal(t, uint32(0x205), f.ID)
	require.Equal(t, []byte{0x04, 0, 0, 0, 0, 0, 0, 0}, f.Data)
	require.NoError(t, f.Validate())
}

func TestDecodeCommand(t *testing.T) {
	node, cmd, ok := DefaultCodec.DecodeCommand(DefaultCodec.CommandFrame(9, SpeedControl(-12.5)))
	require.True(t, ok)
	require.Equal(t, can.NodeID(9), node)
	require.Equal(t, SpeedControl(-12.5), cmd)

	_, _, ok = DefaultCodec.DecodeCommand(can.NewFrame(0x209, []byte{0x77, 0, 0, 0, 0, 0, 0, 0}))
	require.False(t, ok)
	_, _, ok = DefaultCodec.DecodeCommand(can.NewFrame(0x189, make([]byte, 8)))
	require.False(t, ok)
	_, _, ok = DefaultCodec.DecodeCommand(can.NewFrame(0x209, []byte{0x04}))
	require.False(t, ok)
}

func TestDecodeTelemetry(t *testing.T) {
	rec, ok := DefaultCodec.DecodeTelemetry(can.NewFrame(0x181, []byte{0x01, 0x00, 0x00, 0x3c, 0x00, 0x00, 0xc8, 0x42}))
	require.True(t, ok)
	require.Equal(t, &Telemetry{Node: 1, FaultBits: 1, BusVoltage: 1, Speed: 100}, rec)
}

func TestDecodeTelemetryIgnored(t *testing.T) {
	testCases := []struct {
		name  string
		frame can.Frame
	}{
		{"short payload", can.NewFrame(0x181, []byte{1, 0, 0, 0x3c})},
		{"reserved 0x280", can.NewFrame(0x281, make([]byte, 8))},
		{"reserved 0x380", can.NewFrame(0x381, make([]byte, 8))},
		{"reserved 0x480", can.NewFrame(0x481, make([]byte, 8))},
		{"command", can.NewFrame(0x201, make([]byte, 8))},
		{"unknown", can.NewFrame(0x701, make([]byte, 8))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, ok := DefaultCodec.DecodeTelemetry(tc.frame)
			require.False(t, ok)
			require.Nil(t, rec)
		})
	}
}

func TestTelemetryFrameRoundTrip(t *testing.T) {
	for _, c := range []Codec{DefaultCodec, {ByteOrder: binary.BigEndian}, {}} {
		in := Telemetry{Node: 42, FaultBits: 0x8001, BusVoltage: 24.5, Speed: -333.25}
		f := c.TelemetryFrame(in)
		require.Equal(t, uint32(0x1aa), f.ID)
		out, ok := c.DecodeTelemetry(f)
		require.True(t, ok)
		require.Equal(t, in, *out)
	}
}

func TestTelemetryKindOf(t *testing.T) {
	require.Equal(t, KindPrimary, TelemetryKindOf(can.ClassTelemetry))
	require.Equal(t, KindReserved, TelemetryKindOf(can.ClassTelemetry2))
	require.Equal(t, KindReserved, TelemetryKindOf(can.ClassTelemetry3))
	require.Equal(t, KindReserved, TelemetryKindOf(can.ClassTelemetry4))
	require.Equal(t, KindUnrecognized, TelemetryKindOf(can.ClassCommand))
	require.Equal(t, KindUnrecognized, TelemetryKindOf(0x700))
}
