//go:build linux

package socketcan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/transport"
)

// DefaultReadTimeout bounds each read so Run can observe cancellation.
const DefaultReadTimeout = 100 * time.Millisecond

// Conn is a raw CAN socket bound to one interface.
type Conn struct {
	Handler can.FrameHandler

	iface    string
	fd       int
	sendLock sync.Mutex

	framesIn  atomic.Uint64
	framesOut atomic.Uint64
	dropped   atomic.Uint64
	closed    atomic.Bool
}

// Dial opens a raw CAN socket on the interface, e.g. "can0".
func Dial(ifname string) (*Conn, error) {
	ifi, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", ifname, err)
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	if err = unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", ifname, err)
	}
	tv := unix.NsecToTimeval(DefaultReadTimeout.Nanoseconds())
	if err = unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set receive timeout: %w", err)
	}
	return &Conn{iface: ifname, fd: fd}, nil
}

// SetHandler implements can.Transport.
func (c *Conn) SetHandler(h can.FrameHandler) {
	c.Handler = h
}

// Stats implements transport.StatsSource.
func (c *Conn) Stats() transport.Stats {
	return transport.Stats{
		FramesIn:  c.framesIn.Load(),
		FramesOut: c.framesOut.Load(),
		Dropped:   c.dropped.Load(),
	}
}

// Send implements can.Transport.
func (c *Conn) Send(f can.Frame) error {
	if c.closed.Load() {
		return transport.ErrClosed
	}
	buf, err := marshalFrame(f)
	if err != nil {
		return err
	}
	c.sendLock.Lock()
	defer c.sendLock.Unlock()
	if _, err = unix.Write(c.fd, buf); err != nil {
		return fmt.Errorf("write %s: %w", c.iface, err)
	}
	c.framesOut.Add(1)
	if glog.V(2) {
		glog.Infof("SND %s %s", c.iface, f)
	}
	return nil
}

// Run implements can.Transport.
func (c *Conn) Run(ctx context.Context) error {
	buf := make([]byte, frameLen)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := unix.Read(c.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			if c.closed.Load() {
				return transport.ErrClosed
			}
			return fmt.Errorf("read %s: %w", c.iface, err)
		}
		f, err := unmarshalFrame(buf[:n])
		if err != nil {
			c.dropped.Add(1)
			continue
		}
		c.framesIn.Add(1)
		if glog.V(2) {
			glog.Infof("RCV %s %s", c.iface, f)
		}
		if h := c.Handler; h != nil {
			h.HandleFrame(ctx, f)
		}
	}
}

// Close implements can.Transport.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return unix.Close(c.fd)
}
