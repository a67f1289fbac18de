package socketcan

import (
	"encoding/binary"
	"errors"

	"github.com/robotalks/esc.go/pkg/can"
)

const (
	frameLen = 16

	flagEFF uint32 = 0x80000000 // extended frame
	flagRTR uint32 = 0x40000000 // remote frame
	flagERR uint32 = 0x20000000 // error frame
	maskSFF uint32 = 0x000007ff
)

var errNotStandard = errors.New("not a standard data frame")

// marshalFrame encodes a frame to struct can_frame.
// The kernel uses host byte order; Linux CAN hosts are little-endian.
func marshalFrame(f can.Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, frameLen)
	binary.LittleEndian.PutUint32(buf[0:4], f.ID)
	buf[4] = f.Len
	copy(buf[8:], f.Data)
	return buf, nil
}

// unmarshalFrame decodes struct can_frame, rejecting extended, remote and
// error frames.
func unmarshalFrame(buf []byte) (can.Frame, error) {
	if len(buf) < frameLen {
		return can.Frame{}, errors.New("short can_frame")
	}
	id := binary.LittleEndian.Uint32(buf[0:4])
	if id&(flagEFF|flagRTR|flagERR) != 0 {
		return can.Frame{}, errNotStandard
	}
	l := buf[4]
	if l > can.MaxDataLen {
		return can.Frame{}, can.ErrInvalidLen
	}
	data := make([]byte, l)
	copy(data, buf[8:8+int(l)])
	return can.NewFrame(id&maskSFF, data), nil
}
