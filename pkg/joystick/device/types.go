// Package device reads Linux joystick devices (/dev/input/jsN).
package device

import (
	"errors"
	"io"
)

// ErrUnsupported is returned on platforms without joystick support.
var ErrUnsupported = errors.New("joystick not supported on this platform")

// AxisMax is the magnitude of a fully deflected axis.
const AxisMax = 32767

// Event is an axis or button change.
type Event interface {
	// IsInit reports the synthetic events describing the initial state.
	IsInit() bool
	// Index is the axis or button number.
	Index() int
}

// AxisEvent reports an axis position in [-AxisMax, AxisMax].
type AxisEvent interface {
	Event
	Value() int
}

// ButtonEvent reports a button press or release.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device is an opened joystick.
type Device interface {
	io.Closer
	Index() int
	Name() string
	AxisCount() int
	ButtonCount() int
	// ReadEvent blocks until the next event.
	ReadEvent() (Event, error)
}

type event struct {
	init   bool
	number uint8
}

func (e event) IsInit() bool { return e.init }
func (e event) Index() int   { return int(e.number) }

type axisEvent struct {
	event
	value int16
}

func (e axisEvent) Value() int { return int(e.value) }

type buttonEvent struct {
	event
	pressed bool
}

func (e buttonEvent) Pressed() bool { return e.pressed }

// Axis creates an AxisEvent, used to feed synthetic input.
func Axis(index int, value int) AxisEvent {
	return axisEvent{event: event{number: uint8(index)}, value: int16(value)}
}

// Button creates a ButtonEvent, used to feed synthetic input.
func Button(index int, pressed bool) ButtonEvent {
	return buttonEvent{event: event{number: uint8(index)}, pressed: pressed}
}
