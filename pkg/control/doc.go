// Package control keeps a motor controller spinning at a target speed and
// collects its telemetry.
//
// The device stops the motor when speed commands stop arriving, so while
// sending is enabled the Controller repeats the speed command every
// Interval.
package control
