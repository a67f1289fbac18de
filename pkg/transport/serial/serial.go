// Package serial opens SLCAN streams on serial ports.
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/robotalks/esc.go/pkg/transport"
)

// DefaultBaudRate is used when none is specified. USB virtual serial ports
// ignore it.
const DefaultBaudRate = 115200

// DefaultReadTimeout bounds each Read so the stream can observe
// cancellation.
const DefaultReadTimeout = 100 * time.Millisecond

// Open opens a serial port and wraps it as an SLCAN Stream.
func Open(name string, baudRate int) (*transport.Stream, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if err = port.SetReadTimeout(DefaultReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	s := transport.NewStream(port)
	s.ReadTimeout = true
	return s, nil
}

// Ports lists the serial ports available.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
