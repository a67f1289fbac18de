// Package transport moves CAN frames between the host and the motor
// controllers.
//
// Stream carries SLCAN sentences over any byte stream: a USB virtual serial
// port (see package serial), a pty, or an in-memory pipe. The socketcan
// package provides the native Linux alternative. Both implement
// can.Transport so the control loop doesn't care which one it talks to.
package transport
