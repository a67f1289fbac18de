package can

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameValidate(t *testing.T) {
	testCases := []struct {
		name  string
		frame Frame
		err   error
	}{
		{"empty", Frame{ID: 0x181}, nil},
		{"full", NewFrame(0x7ff, make([]byte, 8)), nil},
		{"id too large", NewFrame(0x800, nil), ErrInvalidID},
		{"too long", NewFrame(0x181, make([]byte, 9)), ErrInvalidLen},
		{"len mismatch", Frame{ID: 0x181, Len: 2, Data: []byte{1}}, ErrInvalidLen},
		{"len without data", Frame{ID: 0x181, Len: 8}, ErrInvalidLen},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.err, tc.frame.Validate())
		})
	}
}

func TestFrameAddress(t *testing.T) {
	f := NewFrame(0x205, []byte{0x20, 0, 0, 0, 0, 0, 0xc8, 0x42})
	require.Equal(t, NodeID(5), f.Node())
	require.Equal(t, ClassCommand, f.Class())
	require.Equal(t, "205#200000000000c842", f.String())
}
