// Package config holds the options shared by the commands.
//
// Values are taken, in increasing precedence, from built-in defaults,
// ESC_* environment variables and command line flags. The -config flag
// loads a YAML file at the point it appears on the command line, so flags
// after it override the file.
package config

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/esc.go/pkg/can"
)

// Config is the configuration of a daemon or tool.
type Config struct {
	// Transport is the URL of the CAN link, e.g.
	// serial:///dev/ttyACM0?baud=115200, socketcan://can0 or sim://.
	// A bare path is a serial port.
	Transport string        `yaml:"transport"`
	Node      uint8         `yaml:"node"`
	Interval  time.Duration `yaml:"interval"`
	AllNodes  bool          `yaml:"all_nodes"`

	MQTT    MQTTConfig    `yaml:"mqtt"`
	Redis   RedisConfig   `yaml:"redis"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// MQTTConfig configures the MQTT bridge. Empty URL disables it.
type MQTTConfig struct {
	// URL is like mqtt://host:port/topic-prefix/
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id"`
}

// RedisConfig configures the telemetry recorder. Empty Addr disables it.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	Channel    string `yaml:"channel"`
	HistoryLen int64  `yaml:"history_len"`
}

// MonitorConfig configures the HTTP monitor. Empty Addr disables it.
type MonitorConfig struct {
	Addr       string `yaml:"addr"`
	WindowSize int    `yaml:"window_size"`
}

var defaultConfig = Config{
	Transport: "serial:///dev/ttyACM0",
	Node:      1,
	Interval:  100 * time.Millisecond,
	Redis: RedisConfig{
		Channel:    "esc:telemetry",
		HistoryLen: 1000,
	},
	Monitor: MonitorConfig{
		WindowSize: 100,
	},
}

func init() {
	defaultConfig.MQTT.ClientID = DefaultClientID()
	if err := defaultConfig.ApplyEnv(os.LookupEnv); err != nil {
		log.Printf("ignored environment: %v", err)
	}
}

// DefaultClientID derives a stable MQTT client id from the machine id.
func DefaultClientID() string {
	id, err := machineid.ProtectedID("esc.go")
	if err != nil || len(id) < 12 {
		return "esc"
	}
	return "esc-" + id[:12]
}

// ApplyEnv overrides c with ESC_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if val, ok := lookup("ESC_PORT"); ok && val != "" {
		c.Transport = val
	}
	if val, ok := lookup("ESC_NODE"); ok && val != "" {
		n, err := parseNode(val)
		if err != nil {
			return fmt.Errorf("ESC_NODE: %w", err)
		}
		c.Node = n
	}
	if val, ok := lookup("ESC_MQTT_URL"); ok {
		c.MQTT.URL = val
	}
	if val, ok := lookup("ESC_REDIS_ADDR"); ok {
		c.Redis.Addr = val
	}
	if val, ok := lookup("ESC_MONITOR_ADDR"); ok {
		c.Monitor.Addr = val
	}
	return nil
}

// Load merges YAML from r into c.
func (c *Config) Load(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// LoadFile merges a YAML file into c.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := c.Load(f); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Validate checks the values.
func (c *Config) Validate() error {
	if c.Transport == "" {
		return fmt.Errorf("transport is required")
	}
	if !can.NodeID(c.Node).IsValid() {
		return fmt.Errorf("node %d: %w", c.Node, can.ErrInvalidNodeID)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Redis.HistoryLen <= 0 {
		return fmt.Errorf("redis history_len must be positive")
	}
	if c.Monitor.WindowSize <= 0 {
		return fmt.Errorf("monitor window_size must be positive")
	}
	return nil
}

// NodeID gets Node as can.NodeID.
func (c *Config) NodeID() can.NodeID {
	return can.NodeID(c.Node)
}

type nodeValue struct {
	node *uint8
}

func (v nodeValue) String() string {
	if v.node == nil {
		return ""
	}
	return strconv.Itoa(int(*v.node))
}

func (v nodeValue) Set(s string) error {
	n, err := parseNode(s)
	if err == nil {
		*v.node = n
	}
	return err
}

func parseNode(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil || !can.NodeID(n).IsValid() {
		return 0, can.ErrInvalidNodeID
	}
	return uint8(n), nil
}

// SetupFlags binds the defaults to command line flags of fs, or the
// process flags when fs is nil.
func SetupFlags(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	c := &defaultConfig
	fs.Func("config", "YAML config file, flags after it take precedence.", c.LoadFile)
	fs.StringVar(&c.Transport, "port", c.Transport, "Transport URL: serial:///dev/ttyACM0?baud=115200, socketcan://can0, sim://")
	fs.Var(nodeValue{node: &c.Node}, "node", "Node ID (1-127).")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Speed command repeat interval.")
	fs.BoolVar(&c.AllNodes, "all-nodes", c.AllNodes, "Report telemetry of all nodes.")
	fs.StringVar(&c.MQTT.URL, "mqtt", c.MQTT.URL, "MQTT broker URL, empty to disable.")
	fs.StringVar(&c.MQTT.ClientID, "mqtt-client-id", c.MQTT.ClientID, "MQTT client ID.")
	fs.StringVar(&c.Redis.Addr, "redis", c.Redis.Addr, "Redis address, empty to disable.")
	fs.StringVar(&c.Monitor.Addr, "monitor", c.Monitor.Addr, "Monitor HTTP listen address, empty to disable.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a copy of the default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// MustNewConfig creates a validated copy of the default config and fails on
// error.
func MustNewConfig() *Config {
	conf := NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	return conf
}
