package control

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/esc.go/pkg/can"
	fx "github.com/robotalks/esc.go/pkg/framework"
	"github.com/robotalks/esc.go/pkg/motor"
)

// DefaultInterval is the period of repeated speed commands.
const DefaultInterval = 100 * time.Millisecond

// SpeedEpsilon is the magnitude below which a speed reads as 0.
const SpeedEpsilon = 0.0001

// Controller drives one node on a transport.
type Controller struct {
	Interval  time.Duration
	Transport can.Transport
	Codec     motor.Codec
	Sink      TelemetrySink
	// AllNodes delivers telemetry of every node to Sink, not only the
	// selected one.
	AllNodes bool

	// cmdLock orders commands on the wire with the state they were read
	// from.
	cmdLock sync.Mutex
	lock    sync.RWMutex
	node    can.NodeID
	speed   float32
	sending bool
	latest  *motor.Telemetry
	fault   *FaultError
}

// New creates a Controller for node on transport.
func New(transport can.Transport, node can.NodeID) (*Controller, error) {
	if !node.IsValid() {
		return nil, can.ErrInvalidNodeID
	}
	return &Controller{
		Interval:  DefaultInterval,
		Transport: transport,
		Codec:     motor.DefaultCodec,
		node:      node,
	}, nil
}

// Node gets the selected node.
func (c *Controller) Node() can.NodeID {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.node
}

// SetNode selects another node. Telemetry and faults of the previous node
// are forgotten.
func (c *Controller) SetNode(node can.NodeID) error {
	if !node.IsValid() {
		return can.ErrInvalidNodeID
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.node != node {
		c.node, c.latest, c.fault = node, nil, nil
	}
	return nil
}

// Speed gets the target speed.
func (c *Controller) Speed() float32 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.speed
}

// SetSpeed changes the target speed. It takes effect on the next tick if
// sending is enabled.
func (c *Controller) SetSpeed(hz float32) {
	c.lock.Lock()
	c.speed = hz
	c.lock.Unlock()
}

// Sending reports whether speed commands are being repeated.
func (c *Controller) Sending() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.sending
}

// Start enables repeated speed commands.
func (c *Controller) Start() {
	c.lock.Lock()
	c.sending = true
	c.lock.Unlock()
}

// Stop disables repeated speed commands and sends a single Stop.
func (c *Controller) Stop() error {
	c.cmdLock.Lock()
	defer c.cmdLock.Unlock()
	c.lock.Lock()
	c.sending = false
	node := c.node
	c.lock.Unlock()
	return c.send(node, motor.Stop())
}

// Reset disables repeated speed commands, clears the latched fault and
// sends a single Reset.
func (c *Controller) Reset() error {
	c.cmdLock.Lock()
	defer c.cmdLock.Unlock()
	c.lock.Lock()
	c.sending, c.fault = false, nil
	node := c.node
	c.lock.Unlock()
	return c.send(node, motor.Reset())
}

// Execute applies cmd to node. Commands for the selected node go through
// the control loop (a speed command also starts sending); other nodes get
// cmd once.
func (c *Controller) Execute(node can.NodeID, cmd motor.Command) error {
	if !node.IsValid() {
		return can.ErrInvalidNodeID
	}
	if node != c.Node() {
		c.cmdLock.Lock()
		defer c.cmdLock.Unlock()
		return c.send(node, cmd)
	}
	switch cmd.Code {
	case motor.CodeSpeedControl:
		c.SetSpeed(cmd.Speed)
		c.Start()
		return nil
	case motor.CodeStop:
		return c.Stop()
	case motor.CodeReset:
		return c.Reset()
	}
	c.cmdLock.Lock()
	defer c.cmdLock.Unlock()
	return c.send(node, cmd)
}

// Latest gets the last telemetry record of the selected node.
func (c *Controller) Latest() (motor.Telemetry, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.latest == nil {
		return motor.Telemetry{}, false
	}
	return *c.latest, true
}

// Fault returns a *FaultError if the selected node reported faults since
// the last Reset.
func (c *Controller) Fault() error {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.fault == nil {
		return nil
	}
	return c.fault
}

// HandleFrame implements can.FrameHandler.
func (c *Controller) HandleFrame(ctx context.Context, f can.Frame) {
	rec, ok := c.Codec.DecodeTelemetry(f)
	if !ok {
		return
	}
	c.lock.Lock()
	selected := rec.Node == c.node
	if selected {
		c.latest = rec
		if rec.FaultBits.Any() {
			if c.fault == nil {
				glog.Warningf("node %d fault %#04x", rec.Node, uint16(rec.FaultBits))
				c.fault = &FaultError{Node: rec.Node}
			}
			c.fault.Bits |= rec.FaultBits
		}
	}
	c.lock.Unlock()
	if c.Sink != nil && (selected || c.AllNodes) {
		c.Sink.HandleTelemetry(ctx, *rec)
	}
}

// Run runs the transport and the control loop until either stops.
func (c *Controller) Run(ctx context.Context) error {
	if c.Transport == nil {
		return ErrNoTransport
	}
	c.Transport.SetHandler(c)
	runner := fx.NewRunnerWith(ctx)
	runner.Go(fx.NamedRun("transport", c.Transport), fx.NamedRun("control", fx.RunFunc(c.loop)))
	return runner.WaitFirst()
}

func (c *Controller) loop(ctx context.Context) error {
	interval := c.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.tick(); err != nil {
				return err
			}
		}
	}
}

func (c *Controller) tick() error {
	c.cmdLock.Lock()
	defer c.cmdLock.Unlock()
	c.lock.RLock()
	sending, node, speed := c.sending, c.node, c.speed
	c.lock.RUnlock()
	if !sending {
		return nil
	}
	return c.send(node, motor.SpeedControl(speed))
}

func (c *Controller) send(node can.NodeID, cmd motor.Command) error {
	if c.Transport == nil {
		return ErrNoTransport
	}
	glog.V(2).Infof("node %d: %s", node, cmd)
	return c.Transport.Send(c.Codec.CommandFrame(node, cmd))
}

// DisplaySpeed rounds speeds within SpeedEpsilon of zero to 0.
func DisplaySpeed(hz float32) float32 {
	if math.Abs(float64(hz)) < SpeedEpsilon {
		return 0
	}
	return hz
}
