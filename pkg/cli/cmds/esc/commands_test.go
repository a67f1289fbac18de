package esc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/esc.go/pkg/motor"
)

func TestTelemetryViewJSON(t *testing.T) {
	data, err := json.Marshal(TelemetryView{
		Telemetry: motor.Telemetry{Node: 2, FaultBits: 1, BusVoltage: 24, Speed: motor.DecodeFloat16(0x7e00)},
		Fault:     "node 2 fault 0x0001",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"node":2,"fault_bits":1,"bus_voltage":24,"speed":null,"fault":"node 2 fault 0x0001"}`, string(data))
}
