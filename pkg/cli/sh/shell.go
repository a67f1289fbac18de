// Package sh provides the interactive shell of esccli.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/esc.go/pkg/config"
	"github.com/robotalks/esc.go/pkg/control"
	"github.com/robotalks/esc.go/pkg/link"
	"github.com/robotalks/esc.go/pkg/monitor"
	"github.com/robotalks/esc.go/pkg/transport/serial"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *config.Config
	Session *Session
}

// Session is a connected link with its control loop running.
type Session struct {
	Ctx        context.Context
	Cancel     func()
	URL        string
	Link       *link.Link
	Controller *control.Controller
	Monitor    *monitor.Monitor

	done chan struct{}
	err  error
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly    bool
	outputJSON  bool
	autoConnect bool

	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&autoConnect, "connect", autoConnect, "Connect the configured transport on start.")
}

// AddCmds is used by other command providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requiring a connection.
func MustBeConnected(fn func(c *ishell.Context, s *Session)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		sess := ShellFrom(c).Session
		if sess == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		select {
		case <-sess.done:
			c.Err(fmt.Errorf("connection lost: %v", sess.err))
			return
		default:
		}
		fn(c, sess)
	}
}

// Print prints v as JSON in JSON mode, or text otherwise.
func Print(c *ishell.Context, v interface{}, text string) {
	if !ShellFrom(c).OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Connect opens the link at url and starts controlling the configured node.
func (s *Shell) Connect(url string) error {
	l, err := link.Open(url)
	if err != nil {
		return err
	}
	ctl, err := control.New(l, s.Config.NodeID())
	if err != nil {
		l.Close()
		return err
	}
	ctl.Interval = s.Config.Interval
	ctl.AllNodes = s.Config.AllNodes
	mon := monitor.New(l)
	ctl.Sink = mon

	sess := &Session{
		URL:        url,
		Link:       l,
		Controller: ctl,
		Monitor:    mon,
		done:       make(chan struct{}),
	}
	sess.Ctx, sess.Cancel = context.WithCancel(context.Background())
	s.Disconnect()
	s.Session = sess
	go func() {
		defer close(sess.done)
		if sess.err = ctl.Run(sess.Ctx); sess.err != nil && sess.Ctx.Err() == nil {
			glog.Errorf("%s: %v", url, sess.err)
		}
	}()
	s.UpdatePrompt()
	return nil
}

// UpdatePrompt shows the link and the selected node.
func (s *Shell) UpdatePrompt() {
	if s.Session == nil {
		s.Shell.SetPrompt(unconnectedPrompt)
		return
	}
	s.Shell.SetPrompt(fmt.Sprintf("[%s #%d] > ", s.Session.URL, s.Session.Controller.Node()))
}

// Disconnect stops the motor and closes the current link.
func (s *Shell) Disconnect() {
	sess := s.Session
	if sess == nil {
		return
	}
	if err := sess.Controller.Stop(); err != nil {
		glog.Warningf("stop: %v", err)
	}
	sess.Cancel()
	<-sess.done
	sess.Link.Close()
	s.Session = nil
	s.UpdatePrompt()
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Transport != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Transport)
		}
		if err := s.Connect(s.Config.Transport); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Transport, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"p"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				Print(c, append([]string{}, ports...), "")
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd connects a link.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "URL (serial:///dev/ttyACM0, socketcan://can0, sim://)",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.Config.Transport
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			if err := s.Connect(url); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects the current link.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "stop the motor and close the link",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(config.MustNewConfig()).WithAutoConnect(autoConnect).Run(flag.Args()...)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}
