package motor

import "github.com/x448/float16"

// DecodeFloat16 expands an IEEE 754 half-precision sample.
//
// The voltage field is assumed to be a true binary16 value; if a device
// reference defines a scaled fixed-point format instead, this is the only
// place to change.
func DecodeFloat16(bits uint16) float32 {
	return float16.Frombits(bits).Float32()
}

// EncodeFloat16 rounds a value to the nearest half-precision sample.
func EncodeFloat16(v float32) uint16 {
	return float16.Fromfloat32(v).Bits()
}
