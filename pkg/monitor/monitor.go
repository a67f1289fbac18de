// Package monitor exposes telemetry and transport statistics over HTTP:
// prometheus metrics, a health check, windowed statistics and a websocket
// stream of records.
package monitor

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/net/websocket"

	"github.com/robotalks/esc.go/pkg/can"
	fx "github.com/robotalks/esc.go/pkg/framework"
	"github.com/robotalks/esc.go/pkg/motor"
	"github.com/robotalks/esc.go/pkg/transport"
)

// DefaultWindowSize is the number of samples kept per node.
const DefaultWindowSize = 100

const streamBacklog = 16

// NodeStats summarizes the latest samples of a node.
type NodeStats struct {
	Node       can.NodeID `json:"node"`
	BusVoltage Summary    `json:"bus_voltage"`
	Speed      Summary    `json:"speed"`
}

type nodeWindows struct {
	busVoltage *Window
	speed      *Window
}

// Monitor is a control.TelemetrySink serving what it collects over HTTP.
type Monitor struct {
	Registry   *prometheus.Registry
	WindowSize int

	metrics *telemetryMetrics

	lock    sync.Mutex
	windows map[can.NodeID]*nodeWindows
	streams map[chan []byte]struct{}
}

// New creates a Monitor. stats may be nil.
func New(stats transport.StatsSource) *Monitor {
	m := &Monitor{
		Registry:   prometheus.NewRegistry(),
		WindowSize: DefaultWindowSize,
		metrics:    newTelemetryMetrics(),
		windows:    make(map[can.NodeID]*nodeWindows),
		streams:    make(map[chan []byte]struct{}),
	}
	m.Registry.MustRegister(m.metrics.collectors()...)
	if stats != nil {
		m.Registry.MustRegister(&StatsCollector{Source: stats})
	}
	return m
}

// HandleTelemetry implements control.TelemetrySink.
func (m *Monitor) HandleTelemetry(ctx context.Context, t motor.Telemetry) {
	node := strconv.Itoa(int(t.Node))
	m.metrics.records.WithLabelValues(node).Inc()
	if t.FaultBits.Any() {
		m.metrics.faults.WithLabelValues(node).Inc()
	}
	m.metrics.busVoltage.WithLabelValues(node).Set(float64(t.BusVoltage))
	m.metrics.speed.WithLabelValues(node).Set(float64(t.Speed))
	m.metrics.faultBits.WithLabelValues(node).Set(float64(t.FaultBits))

	m.lock.Lock()
	defer m.lock.Unlock()
	w := m.windows[t.Node]
	if w == nil {
		w = &nodeWindows{busVoltage: NewWindow(m.WindowSize), speed: NewWindow(m.WindowSize)}
		m.windows[t.Node] = w
	}
	w.busVoltage.Add(float64(t.BusVoltage))
	w.speed.Add(float64(t.Speed))

	data, err := json.Marshal(t)
	if err != nil {
		glog.Errorf("marshal telemetry: %v", err)
		return
	}
	for ch := range m.streams {
		select {
		case ch <- data:
		default:
			// slow client, skip
		}
	}
}

// Stats gets windowed statistics of all nodes, ordered by node.
func (m *Monitor) Stats() []NodeStats {
	m.lock.Lock()
	defer m.lock.Unlock()
	nodes := maps.Keys(m.windows)
	slices.Sort(nodes)
	result := make([]NodeStats, 0, len(nodes))
	for _, node := range nodes {
		w := m.windows[node]
		result = append(result, NodeStats{
			Node:       node,
			BusVoltage: w.busVoltage.Summary(),
			Speed:      w.speed.Summary(),
		})
	}
	return result
}

// Handler serves /metrics, /health, /stats and /telemetry.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(m.Stats())
	})
	mux.Handle("/telemetry", websocket.Handler(m.stream))
	return mux
}

func (m *Monitor) stream(conn *websocket.Conn) {
	ch := make(chan []byte, streamBacklog)
	m.lock.Lock()
	m.streams[ch] = struct{}{}
	m.lock.Unlock()
	defer func() {
		m.lock.Lock()
		delete(m.streams, ch)
		m.lock.Unlock()
	}()
	glog.V(2).Infof("telemetry stream %s connected", conn.Request().RemoteAddr)
	done := make(chan struct{})
	go func() {
		// clients send nothing, a read returns when they go away
		io.Copy(io.Discard, conn)
		close(done)
	}()
	for {
		select {
		case data := <-ch:
			if err := websocket.Message.Send(conn, string(data)); err != nil {
				glog.V(2).Infof("telemetry stream closed: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}

// Server serves a Monitor on an address.
type Server struct {
	Addr    string
	Monitor *Monitor
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("monitor listening on %s", ln.Addr())
	srv := &http.Server{Handler: s.Monitor.Handler(), ReadHeaderTimeout: 5 * time.Second}
	return fx.RunWithContextCloser(ctx, srv, func() error {
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}
