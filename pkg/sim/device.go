// Package sim simulates motor controllers speaking the CAN protocol.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/motor"
)

// Defaults of a simulated controller.
const (
	DefaultBusVoltage = 24
	DefaultAccel      = 200 // Hz per second
	DefaultInterval   = 100 * time.Millisecond
)

// Device is a simulated motor controller.
type Device struct {
	Node       can.NodeID
	Codec      motor.Codec
	BusVoltage float32
	Accel      float32
	Interval   time.Duration
	Sender     can.FrameSender

	lock    sync.Mutex
	powered bool
	target  float32
	speed   float32
	faults  motor.FaultBits
}

// NewDevice creates a Device with defaults.
func NewDevice(node can.NodeID, sender can.FrameSender) *Device {
	return &Device{
		Node:       node,
		Codec:      motor.DefaultCodec,
		BusVoltage: DefaultBusVoltage,
		Accel:      DefaultAccel,
		Interval:   DefaultInterval,
		Sender:     sender,
	}
}

// HandleFrame implements can.FrameHandler.
func (d *Device) HandleFrame(ctx context.Context, f can.Frame) {
	node, cmd, ok := d.Codec.DecodeCommand(f)
	if !ok || node != d.Node {
		return
	}
	d.Apply(cmd)
}

// Apply executes a command.
func (d *Device) Apply(cmd motor.Command) {
	d.lock.Lock()
	defer d.lock.Unlock()
	switch cmd.Code {
	case motor.CodeSpeedControl:
		if d.faults.Any() {
			// latched: stays off until Reset.
			return
		}
		d.powered, d.target = true, cmd.Speed
	case motor.CodeStop:
		d.target = 0
	case motor.CodeReset:
		d.faults, d.powered, d.target, d.speed = 0, false, 0, 0
	}
	glog.V(2).Infof("sim node %d: %s", d.Node, cmd)
}

// InjectFault latches faults and powers the motor off.
func (d *Device) InjectFault(bits motor.FaultBits) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.faults |= bits
	d.powered, d.target, d.speed = false, 0, 0
}

// Step advances the simulation and returns the resulting telemetry.
func (d *Device) Step(dt time.Duration) motor.Telemetry {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.powered {
		maxDelta := d.Accel * float32(dt.Seconds())
		diff := d.target - d.speed
		if float32(math.Abs(float64(diff))) <= maxDelta {
			d.speed = d.target
		} else if diff > 0 {
			d.speed += maxDelta
		} else {
			d.speed -= maxDelta
		}
		if d.speed == 0 && d.target == 0 {
			d.powered = false
		}
	}
	return motor.Telemetry{
		Node:       d.Node,
		FaultBits:  d.faults,
		BusVoltage: d.BusVoltage,
		Speed:      d.speed,
	}
}

// Run emits telemetry every Interval until the context is canceled.
func (d *Device) Run(ctx context.Context) error {
	interval := d.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			rec := d.Step(now.Sub(last))
			last = now
			if err := d.Sender.Send(d.Codec.TelemetryFrame(rec)); err != nil {
				return err
			}
		}
	}
}
