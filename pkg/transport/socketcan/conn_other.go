//go:build !linux

package socketcan

import (
	"context"
	"errors"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/transport"
)

// ErrUnsupported is returned on platforms without SocketCAN.
var ErrUnsupported = errors.New("socketcan is only supported on linux")

// Conn is unavailable on this platform.
type Conn struct{}

// Dial always fails on this platform.
func Dial(string) (*Conn, error) { return nil, ErrUnsupported }

// SetLinkUp always fails on this platform.
func SetLinkUp(string, bool) error { return ErrUnsupported }

// SetHandler implements can.Transport.
func (c *Conn) SetHandler(can.FrameHandler) {}

// Send implements can.Transport.
func (c *Conn) Send(can.Frame) error { return ErrUnsupported }

// Run implements can.Transport.
func (c *Conn) Run(context.Context) error { return ErrUnsupported }

// Close implements can.Transport.
func (c *Conn) Close() error { return nil }

// Stats implements transport.StatsSource.
func (c *Conn) Stats() transport.Stats { return transport.Stats{} }
