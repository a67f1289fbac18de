package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/joystick.h
const (
	jsIOCGAXES    = 0x80016a11
	jsIOCGBUTTONS = 0x80016a12
	jsIOCGNAME    = 0x80ff6a13

	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80

	jsEventSize = 8
)

type device struct {
	file    *os.File
	index   int
	name    string
	axes    uint8
	buttons uint8
}

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.Open(fmt.Sprintf("/dev/input/js%d", index))
	if err != nil {
		return nil, err
	}
	d := &device{file: f, index: index}
	var name [256]byte
	for _, req := range []struct {
		code uintptr
		ptr  unsafe.Pointer
	}{
		{jsIOCGAXES, unsafe.Pointer(&d.axes)},
		{jsIOCGBUTTONS, unsafe.Pointer(&d.buttons)},
		{jsIOCGNAME, unsafe.Pointer(&name[0])},
	} {
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req.code, uintptr(req.ptr)); errno != 0 {
			f.Close()
			return nil, errno
		}
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		d.name = string(name[:pos])
	} else {
		d.name = string(name[:])
	}
	return d, nil
}

// DetectAndOpen opens the first joystick present from startIndex. It
// returns nil, nil if there is none.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < 32; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, nil
}

func (d *device) Close() error     { return d.file.Close() }
func (d *device) Index() int       { return d.index }
func (d *device) Name() string     { return d.name }
func (d *device) AxisCount() int   { return int(d.axes) }
func (d *device) ButtonCount() int { return int(d.buttons) }

// ReadEvent implements Device. Events of unknown types are skipped.
func (d *device) ReadEvent() (Event, error) {
	var buf [jsEventSize]byte
	for {
		if _, err := io.ReadFull(d.file, buf[:]); err != nil {
			return nil, err
		}
		if ev := parseEvent(buf[:]); ev != nil {
			return ev, nil
		}
	}
}

// parseEvent decodes struct js_event: u32 time, s16 value, u8 type, u8 number.
func parseEvent(buf []byte) Event {
	value := int16(binary.LittleEndian.Uint16(buf[4:]))
	typ, number := buf[6], buf[7]
	base := event{init: typ&jsEventInit != 0, number: number}
	switch typ &^ jsEventInit {
	case jsEventAxis:
		return axisEvent{event: base, value: value}
	case jsEventButton:
		return buttonEvent{event: base, pressed: value != 0}
	}
	return nil
}
