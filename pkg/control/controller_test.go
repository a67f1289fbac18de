package control

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/motor"
	"github.com/robotalks/esc.go/pkg/sim"
)

type fakeTransport struct {
	lock    sync.Mutex
	frames  []can.Frame
	handler can.FrameHandler
}

func (t *fakeTransport) Send(f can.Frame) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.frames = append(t.frames, f)
	return nil
}

func (t *fakeTransport) SetHandler(h can.FrameHandler) { t.handler = h }

func (t *fakeTransport) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (t *fakeTransport) Close() error { return nil }

func (t *fakeTransport) commands() (cmds []motor.Command) {
	t.lock.Lock()
	defer t.lock.Unlock()
	for _, f := range t.frames {
		if _, cmd, ok := motor.DefaultCodec.DecodeCommand(f); ok {
			cmds = append(cmds, cmd)
		}
	}
	return
}

func telemetryFrame(node can.NodeID, faults motor.FaultBits, speed float32) can.Frame {
	return motor.DefaultCodec.TelemetryFrame(motor.Telemetry{
		Node:       node,
		FaultBits:  faults,
		BusVoltage: 24,
		Speed:      speed,
	})
}

func TestNewValidatesNode(t *testing.T) {
	_, err := New(&fakeTransport{}, 0)
	require.Equal(t, can.ErrInvalidNodeID, err)
	_, err = New(&fakeTransport{}, 128)
	require.Equal(t, can.ErrInvalidNodeID, err)
	c, err := New(&fakeTransport{}, 127)
	require.NoError(t, err)
	require.Equal(t, can.NodeID(127), c.Node())
	require.Equal(t, can.ErrInvalidNodeID, c.SetNode(0))
	require.Equal(t, can.NodeID(127), c.Node())
}

func TestStopAndReset(t *testing.T) {
	tr := &fakeTransport{}
	c, err := New(tr, 5)
	require.NoError(t, err)
	c.SetSpeed(100)
	c.Start()
	require.True(t, c.Sending())
	require.NoError(t, c.tick())
	require.NoError(t, c.Stop())
	require.False(t, c.Sending())
	require.NoError(t, c.tick())
	require.NoError(t, c.Reset())
	require.Equal(t, []motor.Command{motor.SpeedControl(100), motor.Stop(), motor.Reset()}, tr.commands())
	for _, f := range tr.frames {
		require.Equal(t, can.NodeID(5), f.Node())
	}
}

// gatedTransport holds the first Send until released and records frames
// when Send returns.
type gatedTransport struct {
	fakeTransport
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (t *gatedTransport) Send(f can.Frame) error {
	first := false
	t.once.Do(func() { first = true })
	if first {
		close(t.entered)
		<-t.release
	}
	return t.fakeTransport.Send(f)
}

func TestStopAfterInflightTick(t *testing.T) {
	tr := &gatedTransport{entered: make(chan struct{}), release: make(chan struct{})}
	c, err := New(tr, 5)
	require.NoError(t, err)
	c.SetSpeed(100)
	c.Start()

	tickErr := make(chan error, 1)
	go func() { tickErr <- c.tick() }()
	<-tr.entered

	stopErr := make(chan error, 1)
	go func() { stopErr <- c.Stop() }()
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, tr.commands())

	close(tr.release)
	require.NoError(t, <-tickErr)
	require.NoError(t, <-stopErr)
	require.Equal(t, []motor.Command{motor.SpeedControl(100), motor.Stop()}, tr.commands())

	require.NoError(t, c.tick())
	require.Len(t, tr.commands(), 2)
}

func TestExecute(t *testing.T) {
	tr := &fakeTransport{}
	c, err := New(tr, 5)
	require.NoError(t, err)
	require.NoError(t, c.Execute(5, motor.SpeedControl(-20)))
	require.True(t, c.Sending())
	require.Equal(t, float32(-20), c.Speed())
	require.Empty(t, tr.commands())

	require.NoError(t, c.Execute(6, motor.SpeedControl(30)))
	require.Equal(t, []motor.Command{motor.SpeedControl(30)}, tr.commands())
	require.Equal(t, can.NodeID(6), tr.frames[0].Node())

	require.NoError(t, c.Execute(5, motor.Stop()))
	require.False(t, c.Sending())
	require.Equal(t, can.ErrInvalidNodeID, c.Execute(0, motor.Stop()))
}

func TestTelemetryFilter(t *testing.T) {
	var records []motor.Telemetry
	c, err := New(&fakeTransport{}, 1)
	require.NoError(t, err)
	c.Sink = SinkFunc(func(ctx context.Context, rec motor.Telemetry) {
		records = append(records, rec)
	})

	_, ok := c.Latest()
	require.False(t, ok)
	c.HandleFrame(context.TODO(), telemetryFrame(2, 0, 50))
	c.HandleFrame(context.TODO(), can.NewFrame(0x201, make([]byte, 8)))
	c.HandleFrame(context.TODO(), can.NewFrame(0x281, make([]byte, 8)))
	_, ok = c.Latest()
	require.False(t, ok)
	require.Empty(t, records)

	c.HandleFrame(context.TODO(), telemetryFrame(1, 0, 10))
	rec, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, float32(10), rec.Speed)
	require.Len(t, records, 1)

	c.AllNodes = true
	c.HandleFrame(context.TODO(), telemetryFrame(2, 0, 50))
	require.Len(t, records, 2)
	rec, _ = c.Latest()
	require.Equal(t, can.NodeID(1), rec.Node)

	require.NoError(t, c.SetNode(2))
	_, ok = c.Latest()
	require.False(t, ok)
}

func TestFaultLatch(t *testing.T) {
	c, err := New(&fakeTransport{}, 1)
	require.NoError(t, err)
	require.NoError(t, c.Fault())
	c.HandleFrame(context.TODO(), telemetryFrame(1, 0x1, 0))
	c.HandleFrame(context.TODO(), telemetryFrame(1, 0x4, 0))
	c.HandleFrame(context.TODO(), telemetryFrame(1, 0, 0))
	err = c.Fault()
	require.Error(t, err)
	fe, ok := err.(*FaultError)
	require.True(t, ok)
	require.Equal(t, &FaultError{Node: 1, Bits: 0x5}, fe)
	require.Equal(t, "node 1 fault 0x0005", fe.Error())

	require.NoError(t, c.Reset())
	require.NoError(t, c.Fault())
}

func TestMultiSink(t *testing.T) {
	var a, b int
	sink := MultiSink{
		SinkFunc(func(context.Context, motor.Telemetry) { a++ }),
		SinkFunc(func(context.Context, motor.Telemetry) { b++ }),
	}
	sink.HandleTelemetry(context.TODO(), motor.Telemetry{})
	require.Equal(t, 1, a)
	require.Equal(t, 1, b)
}

func TestDisplaySpeed(t *testing.T) {
	require.Zero(t, DisplaySpeed(0.00005))
	require.Zero(t, DisplaySpeed(-0.00009))
	require.Equal(t, float32(0.001), DisplaySpeed(0.001))
	require.Equal(t, float32(-12.5), DisplaySpeed(-12.5))
}

func TestRunWithoutTransport(t *testing.T) {
	require.Equal(t, ErrNoTransport, (&Controller{}).Run(context.TODO()))
}

func TestControllerWithSimulator(t *testing.T) {
	bus := sim.NewBus(3)
	dev := bus.Device(3)
	dev.Interval = 10 * time.Millisecond
	dev.Accel = 1000

	c, err := New(bus.Host(), 3)
	require.NoError(t, err)
	c.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	busDone, ctlDone := make(chan error, 1), make(chan error, 1)
	go func() { busDone <- bus.Run(ctx) }()
	go func() { ctlDone <- c.Run(ctx) }()

	c.SetSpeed(100)
	c.Start()
	require.Eventually(t, func() bool {
		rec, ok := c.Latest()
		return ok && rec.Speed == 100
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Stop())
	require.Eventually(t, func() bool {
		rec, _ := c.Latest()
		return rec.Speed == 0
	}, 2*time.Second, 10*time.Millisecond)

	dev.InjectFault(0x2)
	require.Eventually(t, func() bool {
		return c.Fault() != nil
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Reset())
	require.Eventually(t, func() bool {
		rec, _ := c.Latest()
		return rec.FaultBits == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	for _, ch := range []chan error{busDone, ctlDone} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("not stopped")
		}
	}
}
