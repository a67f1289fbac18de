package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/motor"
)

type frameRecorder struct {
	frames []can.Frame
}

func (r *frameRecorder) Send(f can.Frame) error {
	r.frames = append(r.frames, f)
	return nil
}

func TestDeviceRamp(t *testing.T) {
	d := NewDevice(3, &frameRecorder{})
	require.Zero(t, d.Step(time.Second).Speed)

	d.Apply(motor.SpeedControl(100))
	require.Equal(t, float32(20), d.Step(100*time.Millisecond).Speed)
	require.Equal(t, float32(100), d.Step(time.Second).Speed)

	d.Apply(motor.SpeedControl(-100))
	require.Equal(t, float32(60), d.Step(200*time.Millisecond).Speed)

	d.Apply(motor.Stop())
	rec := d.Step(time.Second)
	require.Zero(t, rec.Speed)
	require.Equal(t, can.NodeID(3), rec.Node)
	require.Equal(t, float32(DefaultBusVoltage), rec.BusVoltage)
}

func TestDeviceFaultLatch(t *testing.T) {
	d := NewDevice(3, &frameRecorder{})
	d.Apply(motor.SpeedControl(100))
	d.Step(time.Second)
	d.InjectFault(0x4)
	rec := d.Step(time.Second)
	require.Equal(t, motor.FaultBits(0x4), rec.FaultBits)
	require.Zero(t, rec.Speed)

	d.Apply(motor.SpeedControl(100))
	require.Zero(t, d.Step(time.Second).Speed)

	d.Apply(motor.Reset())
	require.Zero(t, d.Step(time.Second).FaultBits)
	d.Apply(motor.SpeedControl(100))
	require.Equal(t, float32(100), d.Step(time.Second).Speed)
}

func TestDeviceHandleFrame(t *testing.T) {
	d := NewDevice(3, &frameRecorder{})
	d.HandleFrame(context.TODO(), motor.DefaultCodec.CommandFrame(4, motor.SpeedControl(50)))
	require.Zero(t, d.Step(time.Second).Speed)
	d.HandleFrame(context.TODO(), motor.DefaultCodec.CommandFrame(3, motor.SpeedControl(50)))
	require.Equal(t, float32(50), d.Step(time.Second).Speed)
}

func TestDeviceRun(t *testing.T) {
	r := &frameRecorder{}
	d := NewDevice(3, r)
	d.Interval = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.TODO(), 50*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, d.Run(ctx))
	require.NotEmpty(t, r.frames)
	rec, ok := motor.DefaultCodec.DecodeTelemetry(r.frames[0])
	require.True(t, ok)
	require.Equal(t, can.NodeID(3), rec.Node)
}
