package joystick

import (
	"flag"
)

// Config maps joystick input to motor commands.
type Config struct {
	DeviceIndex int
	// Axis sets the speed, full deflection is MaxSpeed. Pushing a stick
	// forward reads negative, so Invert defaults to true.
	Axis     int
	Invert   bool
	MaxSpeed float64
	// Buttons, -1 to disable.
	StartButton int
	StopButton  int
	ResetButton int
	Verbose     bool
}

var defaultConfig = Config{
	DeviceIndex: -1,
	Axis:        1,
	Invert:      true,
	MaxSpeed:    100,
	StartButton: 0,
	StopButton:  1,
	ResetButton: 2,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "js-device", defaultConfig.DeviceIndex, "Joystick index, -1 for auto detection.")
	flag.IntVar(&defaultConfig.Axis, "js-axis", defaultConfig.Axis, "Joystick axis controlling the speed.")
	flag.BoolVar(&defaultConfig.Invert, "js-invert", defaultConfig.Invert, "Invert the speed axis.")
	flag.Float64Var(&defaultConfig.MaxSpeed, "js-max-speed", defaultConfig.MaxSpeed, "Speed in Hz at full deflection.")
	flag.IntVar(&defaultConfig.StartButton, "js-start", defaultConfig.StartButton, "Button starting the motor.")
	flag.IntVar(&defaultConfig.StopButton, "js-stop", defaultConfig.StopButton, "Button stopping the motor.")
	flag.IntVar(&defaultConfig.ResetButton, "js-reset", defaultConfig.ResetButton, "Button resetting the controller.")
	flag.BoolVar(&defaultConfig.Verbose, "js-verbose", defaultConfig.Verbose, "Log joystick events.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewThrottle creates a Throttle driving target using the config.
func (c *Config) NewThrottle(target Target) *Throttle {
	return &Throttle{Config: *c, Target: target}
}
