// Package joystick drives a motor from a joystick: an axis sets the target
// speed and buttons start, stop and reset.
package joystick

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/esc.go/pkg/joystick/device"
)

// DetectInterval is the delay between attempts to find a joystick.
const DetectInterval = time.Second

// Target is what a Throttle drives, usually a *control.Controller.
type Target interface {
	SetSpeed(float32)
	Start()
	Stop() error
	Reset() error
}

// Throttle maps joystick events to Target calls.
type Throttle struct {
	Config
	Target Target
}

// Run implements Runnable. It keeps looking for a joystick and stops the
// motor when the joystick goes away.
func (t *Throttle) Run(ctx context.Context) error {
	timer := time.After(0)
	var events chan device.Event
	var dev device.Device
	defer func() {
		if dev != nil {
			dev.Close()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer:
			timer = nil
			d, err := t.open()
			if err != nil || d == nil {
				if err != nil {
					glog.V(1).Infof("joystick: %v", err)
				}
				timer = time.After(DetectInterval)
				continue
			}
			glog.Infof("joystick %d %q opened, %d axes, %d buttons",
				d.Index(), d.Name(), d.AxisCount(), d.ButtonCount())
			dev, events = d, make(chan device.Event, 1)
			go t.poll(ctx, dev, events)
		case ev, ok := <-events:
			if ok {
				t.HandleEvent(ev)
				continue
			}
			glog.Warning("joystick lost, stopping motor")
			if err := t.Target.Stop(); err != nil {
				glog.Warningf("stop: %v", err)
			}
			dev.Close()
			dev, events = nil, nil
			timer = time.After(DetectInterval)
		}
	}
}

func (t *Throttle) open() (device.Device, error) {
	if t.DeviceIndex >= 0 {
		return device.Open(t.DeviceIndex)
	}
	return device.DetectAndOpen(0)
}

func (t *Throttle) poll(ctx context.Context, dev device.Device, ch chan<- device.Event) {
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.Warningf("joystick read: %v", err)
			return
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// HandleEvent applies one joystick event to the Target.
func (t *Throttle) HandleEvent(ev device.Event) {
	switch e := ev.(type) {
	case device.AxisEvent:
		if t.Verbose {
			glog.Infof("axis %d: %d", e.Index(), e.Value())
		}
		if e.Index() == t.Axis {
			t.Target.SetSpeed(t.Speed(e.Value()))
		}
	case device.ButtonEvent:
		if t.Verbose {
			glog.Infof("button %d: %v", e.Index(), e.Pressed())
		}
		if !e.Pressed() || e.IsInit() {
			return
		}
		var err error
		switch e.Index() {
		case t.StartButton:
			t.Target.Start()
		case t.StopButton:
			err = t.Target.Stop()
		case t.ResetButton:
			err = t.Target.Reset()
		}
		if err != nil {
			glog.Warningf("button %d: %v", e.Index(), err)
		}
	}
}

// Speed converts an axis position to a speed in Hz.
func (t *Throttle) Speed(value int) float32 {
	if t.Invert {
		value = -value
	}
	if value > device.AxisMax {
		value = device.AxisMax
	}
	return float32(t.MaxSpeed * float64(value) / device.AxisMax)
}
