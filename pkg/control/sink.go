package control

import (
	"context"

	"github.com/robotalks/esc.go/pkg/motor"
)

// TelemetrySink consumes decoded telemetry records.
type TelemetrySink interface {
	HandleTelemetry(context.Context, motor.Telemetry)
}

// SinkFunc is the func form of TelemetrySink.
type SinkFunc func(context.Context, motor.Telemetry)

// HandleTelemetry implements TelemetrySink.
func (f SinkFunc) HandleTelemetry(ctx context.Context, t motor.Telemetry) {
	f(ctx, t)
}

// MultiSink fans out records to all sinks in order.
type MultiSink []TelemetrySink

// HandleTelemetry implements TelemetrySink.
func (s MultiSink) HandleTelemetry(ctx context.Context, t motor.Telemetry) {
	for _, sink := range s {
		sink.HandleTelemetry(ctx, t)
	}
}
