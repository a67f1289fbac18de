// Package can provides the CAN frame model and the identifier layout
// shared by every transport talking to the motor controllers.
//
// A standard (11-bit) identifier carries two things at once: the node id of
// the controller in the low 7 bits, and the object class (message format)
// as a multiple of 0x80 above it. The two are added, not OR-ed, which only
// works while node ids stay below 0x80.
//
//	Producer: motor controller (telemetry), host (commands)
//	Consumer: host (telemetry), motor controller (commands)
package can
