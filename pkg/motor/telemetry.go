package motor

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/robotalks/esc.go/pkg/can"
)

// TelemetryKind classifies telemetry object classes.
type TelemetryKind int

// Telemetry kinds.
const (
	KindUnrecognized TelemetryKind = iota
	KindPrimary
	KindReserved
)

// TelemetryKindOf maps an object class to its kind.
func TelemetryKindOf(class can.ObjectClass) TelemetryKind {
	switch class {
	case can.ClassTelemetry:
		return KindPrimary
	case can.ClassTelemetry2, can.ClassTelemetry3, can.ClassTelemetry4:
		return KindReserved
	}
	return KindUnrecognized
}

// FaultBits is the bitmask of active faults, 0 when healthy.
// The controller keeps the motor off until a Reset arrives.
type FaultBits uint16

// Any reports whether any fault is active.
func (f FaultBits) Any() bool {
	return f != 0
}

// Telemetry is a decoded primary telemetry record.
type Telemetry struct {
	Node      can.NodeID `json:"node"`
	FaultBits FaultBits  `json:"fault_bits"`
	// BusVoltage is the DC bus voltage in V.
	BusVoltage float32 `json:"bus_voltage"`
	// Speed is the electrical speed in Hz.
	Speed float32 `json:"speed"`
}

// String implements fmt.Stringer.
func (t Telemetry) String() string {
	return fmt.Sprintf("node %d faults %#04x %g V DC speed %g Hz",
		t.Node, uint16(t.FaultBits), t.BusVoltage, t.Speed)
}

// TelemetryJSON is the JSON form of Telemetry. Readings that aren't finite
// (NaN, ±Inf) are null, and null reads back as NaN.
type TelemetryJSON struct {
	Node       can.NodeID `json:"node"`
	FaultBits  FaultBits  `json:"fault_bits"`
	BusVoltage *float32   `json:"bus_voltage"`
	Speed      *float32   `json:"speed"`
}

// JSON converts t to its JSON form.
func (t Telemetry) JSON() TelemetryJSON {
	return TelemetryJSON{
		Node:       t.Node,
		FaultBits:  t.FaultBits,
		BusVoltage: finite(t.BusVoltage),
		Speed:      finite(t.Speed),
	}
}

// Telemetry converts j back to a record.
func (j TelemetryJSON) Telemetry() Telemetry {
	return Telemetry{
		Node:       j.Node,
		FaultBits:  j.FaultBits,
		BusVoltage: reading(j.BusVoltage),
		Speed:      reading(j.Speed),
	}
}

// MarshalJSON implements json.Marshaler.
func (t Telemetry) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.JSON())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Telemetry) UnmarshalJSON(data []byte) error {
	var j TelemetryJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*t = j.Telemetry()
	return nil
}

func finite(v float32) *float32 {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return nil
	}
	return &v
}

func reading(v *float32) float32 {
	if v == nil {
		return float32(math.NaN())
	}
	return *v
}
