// Package motor encodes commands for and decodes telemetry from the
// brushless motor controllers.
//
// Payloads are 8 bytes. Commands carry the command code in byte 0 and the
// parameters at fixed offsets, with every unused byte zero. Primary
// telemetry (object class 0x180) carries fault bits at 0, the DC bus
// voltage as a half-precision float at 2 and the electrical speed in Hz as
// a single-precision float at 4.
//
// Multi-byte fields use Codec.ByteOrder. The controllers are little-endian.
package motor
