package slcan

import (
	"encoding/hex"

	"github.com/robotalks/esc.go/pkg/can"
)

const hexDigits = "0123456789abcdef"

// AppendFrame appends the sentence of a frame to dst.
func AppendFrame(dst []byte, f can.Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return dst, err
	}
	dst = append(dst, frameStd,
		hexDigits[f.ID>>8&0xf], hexDigits[f.ID>>4&0xf], hexDigits[f.ID&0xf],
		hexDigits[f.Len])
	n := len(dst)
	dst = append(dst, make([]byte, hex.EncodedLen(len(f.Data)))...)
	hex.Encode(dst[n:], f.Data)
	return append(dst, terminator), nil
}

// Encode renders a frame as a sentence ready for writing.
func Encode(f can.Frame) ([]byte, error) {
	return AppendFrame(make([]byte, 0, MaxSentenceLen), f)
}
