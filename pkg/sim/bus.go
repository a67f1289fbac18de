package sim

import (
	"context"

	"github.com/robotalks/esc.go/pkg/can"
	fx "github.com/robotalks/esc.go/pkg/framework"
	"github.com/robotalks/esc.go/pkg/transport"
)

// Bus is a set of simulated controllers behind an in-memory SLCAN stream.
type Bus struct {
	Devices []*Device

	host   *transport.Stream
	device *transport.Stream
}

// NewBus creates simulated controllers for the given nodes.
func NewBus(nodes ...can.NodeID) *Bus {
	b := &Bus{}
	b.host, b.device = transport.Pair()
	for _, node := range nodes {
		b.Devices = append(b.Devices, NewDevice(node, b.device))
	}
	b.device.SetHandler(can.HandleFrameFunc(func(ctx context.Context, f can.Frame) {
		for _, d := range b.Devices {
			d.HandleFrame(ctx, f)
		}
	}))
	return b
}

// Host gets the transport the host side should use.
func (b *Bus) Host() *transport.Stream {
	return b.host
}

// Device finds the simulated controller of a node.
func (b *Bus) Device(node can.NodeID) *Device {
	for _, d := range b.Devices {
		if d.Node == node {
			return d
		}
	}
	return nil
}

// Run runs the device side stream and all devices until the first of them
// stops. The bus is closed afterwards.
func (b *Bus) Run(ctx context.Context) error {
	runner := fx.NewRunnerWith(ctx)
	runner.Go(fx.NamedRun("sim-stream", b.device))
	for _, d := range b.Devices {
		runner.Go(d)
	}
	runner.Go(fx.NamedRun("sim-closer", fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		b.Close()
		return ctx.Err()
	})))
	return runner.WaitFirst()
}

// Close disconnects the devices from the host.
func (b *Bus) Close() error {
	return b.device.Close()
}
