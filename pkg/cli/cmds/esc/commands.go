// Package esc registers the motor commands of the shell.
package esc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/cli/sh"
	"github.com/robotalks/esc.go/pkg/control"
	"github.com/robotalks/esc.go/pkg/monitor"
	"github.com/robotalks/esc.go/pkg/motor"
	"github.com/robotalks/esc.go/pkg/transport"
)

// TelemetryView is the telemetry output of the shell.
type TelemetryView struct {
	motor.Telemetry
	Fault string `json:"fault,omitempty"`
}

type telemetryViewJSON struct {
	motor.TelemetryJSON
	Fault string `json:"fault,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v TelemetryView) MarshalJSON() ([]byte, error) {
	return json.Marshal(telemetryViewJSON{TelemetryJSON: v.Telemetry.JSON(), Fault: v.Fault})
}

// StatsView is the stats output of the shell.
type StatsView struct {
	Transport transport.Stats     `json:"transport"`
	Nodes     []monitor.NodeStats `json:"nodes"`
}

func parseFloatArg(c *ishell.Context, name string) (float32, bool) {
	if len(c.Args) < 1 {
		c.Err(fmt.Errorf("%s required", name))
		return 0, false
	}
	val, err := strconv.ParseFloat(c.Args[0], 32)
	if err != nil {
		c.Err(fmt.Errorf("invalid %s: %v", name, err))
		return 0, false
	}
	return float32(val), true
}

func printErr(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	sh.Print(c, map[string]bool{"ok": true}, "OK")
}

var (
	// NodeCmd shows or selects the node.
	NodeCmd = ishell.Cmd{
		Name:    "node",
		Aliases: []string{"n"},
		Help:    "[ID] show or select the node (1-127)",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			if len(c.Args) > 0 {
				n, err := strconv.ParseUint(c.Args[0], 0, 8)
				if err != nil {
					c.Err(can.ErrInvalidNodeID)
					return
				}
				if err := s.Controller.SetNode(can.NodeID(n)); err != nil {
					c.Err(err)
					return
				}
				sh.ShellFrom(c).UpdatePrompt()
			}
			node := s.Controller.Node()
			sh.Print(c, map[string]can.NodeID{"node": node}, strconv.Itoa(int(node)))
		}),
	}

	// SpeedCmd sets the target speed.
	SpeedCmd = ishell.Cmd{
		Name:    "speed",
		Aliases: []string{"v"},
		Help:    "HZ set the target electrical speed",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			if hz, ok := parseFloatArg(c, "HZ"); ok {
				s.Controller.SetSpeed(hz)
				printErr(c, nil)
			}
		}),
	}

	// StartCmd starts repeating the speed command.
	StartCmd = ishell.Cmd{
		Name: "start",
		Help: "[HZ] start sending the speed command",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			if len(c.Args) > 0 {
				hz, ok := parseFloatArg(c, "HZ")
				if !ok {
					return
				}
				s.Controller.SetSpeed(hz)
			}
			s.Controller.Start()
			printErr(c, nil)
		}),
	}

	// StopCmd stops the motor.
	StopCmd = ishell.Cmd{
		Name: "stop",
		Help: "stop sending the speed command and stop the motor",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			printErr(c, s.Controller.Stop())
		}),
	}

	// ResetCmd resets the controller.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "clear faults and power off the motor",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			printErr(c, s.Controller.Reset())
		}),
	}

	// TelemetryCmd shows the latest telemetry.
	TelemetryCmd = ishell.Cmd{
		Name:    "telemetry",
		Aliases: []string{"t"},
		Help:    "show the latest telemetry of the node",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			rec, ok := s.Controller.Latest()
			if !ok {
				c.Err(fmt.Errorf("no telemetry from node %d", s.Controller.Node()))
				return
			}
			view := TelemetryView{Telemetry: rec}
			view.Speed = control.DisplaySpeed(rec.Speed)
			if err := s.Controller.Fault(); err != nil {
				view.Fault = err.Error()
			}
			text := view.Telemetry.String()
			if view.Fault != "" {
				text += " (" + view.Fault + ")"
			}
			sh.Print(c, view, text)
		}),
	}

	// StatsCmd shows transport and telemetry statistics.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "show transport and telemetry statistics",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			view := StatsView{Transport: s.Link.Stats(), Nodes: s.Monitor.Stats()}
			var w strings.Builder
			fmt.Fprintf(&w, "frames in %d out %d dropped %d",
				view.Transport.FramesIn, view.Transport.FramesOut, view.Transport.Dropped)
			for _, n := range view.Nodes {
				fmt.Fprintf(&w, "\nnode %d: %d samples, %.2f V (±%.2f), %.2f Hz [%.2f, %.2f]",
					n.Node, n.Speed.Count, n.BusVoltage.Mean, n.BusVoltage.StdDev,
					n.Speed.Mean, n.Speed.Min, n.Speed.Max)
			}
			sh.Print(c, view, w.String())
		}),
	}

	// FaultCmd injects a fault into a simulated controller.
	FaultCmd = ishell.Cmd{
		Name: "fault",
		Help: "BITS inject a fault into the simulated node (sim:// only)",
		Func: sh.MustBeConnected(func(c *ishell.Context, s *sh.Session) {
			if s.Link.Sim == nil {
				c.Err(fmt.Errorf("not a simulated link"))
				return
			}
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("BITS required"))
				return
			}
			bits, err := strconv.ParseUint(c.Args[0], 0, 16)
			if err != nil || bits == 0 {
				c.Err(fmt.Errorf("invalid BITS %q", c.Args[0]))
				return
			}
			dev := s.Link.Sim.Device(s.Controller.Node())
			if dev == nil {
				c.Err(fmt.Errorf("node %d is not simulated", s.Controller.Node()))
				return
			}
			dev.InjectFault(motor.FaultBits(bits))
			printErr(c, nil)
		}),
	}
)

func init() {
	sh.AddCmds(
		&NodeCmd,
		&SpeedCmd,
		&StartCmd,
		&StopCmd,
		&ResetCmd,
		&TelemetryCmd,
		&StatsCmd,
		&FaultCmd,
	)
}
