package motor

import "fmt"

// CommandCode is byte 0 of a command payload.
type CommandCode byte

// Supported commands.
const (
	CodeReset        CommandCode = 0x01
	CodeStop         CommandCode = 0x04
	CodeSpeedControl CommandCode = 0x20
)

// String implements fmt.Stringer.
func (c CommandCode) String() string {
	switch c {
	case CodeReset:
		return "reset"
	case CodeStop:
		return "stop"
	case CodeSpeedControl:
		return "speed"
	}
	return fmt.Sprintf("command(%#02x)", byte(c))
}

// Command is one of the supported commands.
type Command struct {
	Code CommandCode
	// Speed is the target electrical speed in Hz, for CodeSpeedControl.
	Speed float32
}

// SpeedControl creates an electronic speed control command.
func SpeedControl(hz float32) Command {
	return Command{Code: CodeSpeedControl, Speed: hz}
}

// Stop creates a stop command.
func Stop() Command {
	return Command{Code: CodeStop}
}

// Reset creates a reset command. It clears latched faults and powers off
// the motor.
func Reset() Command {
	return Command{Code: CodeReset}
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if c.Code == CodeSpeedControl {
		return fmt.Sprintf("speed %g Hz", c.Speed)
	}
	return c.Code.String()
}
