package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/esc.go/pkg/transport"
)

const namespace = "esc"

var (
	framesInDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "transport", "frames_received_total"),
		"Frames decoded from the bus.", nil, nil)
	framesOutDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "transport", "frames_sent_total"),
		"Frames sent to the bus.", nil, nil)
	droppedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "transport", "sentences_dropped_total"),
		"Malformed sentences discarded.", nil, nil)
)

// StatsCollector exports transport.Stats.
type StatsCollector struct {
	Source transport.StatsSource
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- framesInDesc
	ch <- framesOutDesc
	ch <- droppedDesc
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.Source.Stats()
	ch <- prometheus.MustNewConstMetric(framesInDesc, prometheus.CounterValue, float64(stats.FramesIn))
	ch <- prometheus.MustNewConstMetric(framesOutDesc, prometheus.CounterValue, float64(stats.FramesOut))
	ch <- prometheus.MustNewConstMetric(droppedDesc, prometheus.CounterValue, float64(stats.Dropped))
}

type telemetryMetrics struct {
	records    *prometheus.CounterVec
	faults     *prometheus.CounterVec
	busVoltage *prometheus.GaugeVec
	speed      *prometheus.GaugeVec
	faultBits  *prometheus.GaugeVec
}

func newTelemetryMetrics() *telemetryMetrics {
	labels := []string{"node"}
	return &telemetryMetrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_records_total",
			Help:      "Telemetry records received.",
		}, labels),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_fault_records_total",
			Help:      "Telemetry records reporting faults.",
		}, labels),
		busVoltage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bus_voltage_volts",
			Help:      "DC bus voltage.",
		}, labels),
		speed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "speed_hertz",
			Help:      "Electrical speed.",
		}, labels),
		faultBits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fault_bits",
			Help:      "Active fault bitmask.",
		}, labels),
	}
}

func (m *telemetryMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.records, m.faults, m.busVoltage, m.speed, m.faultBits}
}
