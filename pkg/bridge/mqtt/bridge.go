package mqtt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/motor"
	"github.com/robotalks/esc.go/pkg/msgs"
)

// Topic suffixes under <prefix><node>/.
const (
	TelemetryTopic = "telemetry"
	CommandTopic   = "cmd"
)

// Commander executes commands for a node.
type Commander interface {
	Execute(can.NodeID, motor.Command) error
}

// Publisher publishes payloads. Queue is the default.
type Publisher interface {
	Pub(topic string, payload []byte) paho.Token
}

// Bridge publishes telemetry and forwards commands from the broker.
type Bridge struct {
	Queue     *Queue
	Publisher Publisher
	Commander Commander
}

// NewBridge creates a Bridge.
func NewBridge(q *Queue, commander Commander) *Bridge {
	return &Bridge{Queue: q, Publisher: q, Commander: commander}
}

// TelemetryMessage converts a record to its wire message.
func TelemetryMessage(rec motor.Telemetry, at time.Time) *msgs.Telemetry {
	return &msgs.Telemetry{
		Node:       uint32(rec.Node),
		FaultBits:  uint32(rec.FaultBits),
		BusVoltage: rec.BusVoltage,
		Speed:      rec.Speed,
		Timestamp:  at.UnixNano(),
	}
}

// CommandFromMessage converts a wire message to a Command.
func CommandFromMessage(m *msgs.Command) (motor.Command, error) {
	switch m.Code {
	case msgs.CodeSpeed:
		return motor.SpeedControl(m.Speed), nil
	case msgs.CodeStop:
		return motor.Stop(), nil
	case msgs.CodeReset:
		return motor.Reset(), nil
	}
	return motor.Command{}, fmt.Errorf("unknown command code %#x", m.Code)
}

// HandleTelemetry implements control.TelemetrySink.
func (b *Bridge) HandleTelemetry(ctx context.Context, rec motor.Telemetry) {
	data, err := proto.Marshal(TelemetryMessage(rec, time.Now()))
	if err != nil {
		glog.Errorf("marshal telemetry: %v", err)
		return
	}
	b.Publisher.Pub(strconv.Itoa(int(rec.Node))+"/"+TelemetryTopic, data)
}

// Run connects to the broker and forwards commands until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Queue.Connect(); err != nil {
		return err
	}
	defer b.Queue.Close()
	token := b.Queue.Sub("+/"+CommandTopic, b.handleCommand)
	if token.Wait(); token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	return ctx.Err()
}

func (b *Bridge) handleCommand(topic string, payload []byte) {
	if err := b.execute(topic, payload); err != nil {
		glog.Warningf("command %q: %v", topic, err)
	}
}

func (b *Bridge) execute(topic string, payload []byte) error {
	node, err := nodeOfTopic(topic)
	if err != nil {
		return err
	}
	var m msgs.Command
	if err := proto.Unmarshal(payload, &m); err != nil {
		return err
	}
	cmd, err := CommandFromMessage(&m)
	if err != nil {
		return err
	}
	return b.Commander.Execute(node, cmd)
}

func nodeOfTopic(topic string) (can.NodeID, error) {
	item := topic
	if pos := strings.IndexByte(topic, '/'); pos >= 0 {
		item = topic[:pos]
	}
	n, err := strconv.ParseUint(item, 10, 8)
	if err != nil || !can.NodeID(n).IsValid() {
		return 0, can.ErrInvalidNodeID
	}
	return can.NodeID(n), nil
}
