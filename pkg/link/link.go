// Package link opens CAN transports from URLs.
//
//	serial:///dev/ttyACM0?baud=115200&bitrate=1000000
//	/dev/ttyACM0
//	socketcan://can0?up=true
//	sim://?nodes=1,2
package link

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/robotalks/esc.go/pkg/can"
	fx "github.com/robotalks/esc.go/pkg/framework"
	"github.com/robotalks/esc.go/pkg/sim"
	"github.com/robotalks/esc.go/pkg/transport"
	"github.com/robotalks/esc.go/pkg/transport/serial"
	"github.com/robotalks/esc.go/pkg/transport/socketcan"
)

// Link is an opened transport, with the simulated bus behind it for sim://.
type Link struct {
	can.Transport
	URL *url.URL
	Sim *sim.Bus
}

// Open opens the transport named by rawURL.
func Open(rawURL string) (*Link, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	l := &Link{URL: u}
	query := u.Query()
	switch u.Scheme {
	case "", "serial":
		name := u.Path
		if u.Host != "" {
			name = u.Host + u.Path
		}
		baud, err := intParam(query, "baud")
		if err != nil {
			return nil, err
		}
		bitrate, err := intParam(query, "bitrate")
		if err != nil {
			return nil, err
		}
		s, err := serial.Open(name, baud)
		if err != nil {
			return nil, err
		}
		s.Bitrate = bitrate
		l.Transport = s
	case "socketcan":
		if up, _ := strconv.ParseBool(query.Get("up")); up {
			if err := socketcan.SetLinkUp(u.Host, true); err != nil {
				return nil, fmt.Errorf("set %s up: %w", u.Host, err)
			}
		}
		conn, err := socketcan.Dial(u.Host)
		if err != nil {
			return nil, err
		}
		l.Transport = conn
	case "sim":
		nodes, err := nodesParam(query.Get("nodes"))
		if err != nil {
			return nil, err
		}
		l.Sim = sim.NewBus(nodes...)
		l.Transport = l.Sim.Host()
	default:
		return nil, fmt.Errorf("unknown transport scheme %q", u.Scheme)
	}
	return l, nil
}

// Run implements can.Transport.
func (l *Link) Run(ctx context.Context) error {
	if l.Sim == nil {
		return l.Transport.Run(ctx)
	}
	runner := fx.NewRunnerWith(ctx)
	runner.Go(fx.NamedRun("link", l.Transport), fx.NamedRun("sim", l.Sim))
	return runner.WaitFirst()
}

// Close implements can.Transport.
func (l *Link) Close() error {
	var errs fx.AggregatedError
	errs.Add(l.Transport.Close())
	if l.Sim != nil {
		errs.Add(l.Sim.Close())
	}
	return errs.Aggregate()
}

// Stats implements transport.StatsSource.
func (l *Link) Stats() transport.Stats {
	if src, ok := l.Transport.(transport.StatsSource); ok {
		return src.Stats()
	}
	return transport.Stats{}
}

func intParam(query url.Values, name string) (int, error) {
	val := query.Get(name)
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, val)
	}
	return n, nil
}

func nodesParam(val string) ([]can.NodeID, error) {
	if val == "" {
		return []can.NodeID{1}, nil
	}
	var nodes []can.NodeID
	for _, item := range strings.Split(val, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(item), 0, 8)
		if err != nil || !can.NodeID(n).IsValid() {
			return nil, fmt.Errorf("node %q: %w", item, can.ErrInvalidNodeID)
		}
		nodes = append(nodes, can.NodeID(n))
	}
	return nodes, nil
}
