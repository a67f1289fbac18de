package slcan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/esc.go/pkg/can"
)

type decoderTestSequence struct {
	in     string
	state  State
	frames []can.Frame
}

type decoderTestSequenceBuilder struct {
	seq []decoderTestSequence
}

func decoderTestSequences() *decoderTestSequenceBuilder {
	return &decoderTestSequenceBuilder{}
}

func (b *decoderTestSequenceBuilder) on(in string) *decoderTestSequenceBuilder {
	b.seq = append(b.seq, decoderTestSequence{in: in})
	return b
}

func (b *decoderTestSequenceBuilder) in(state State) *decoderTestSequenceBuilder {
	b.seq[len(b.seq)-1].state = state
	return b
}

func (b *decoderTestSequenceBuilder) frame(id uint32, data ...byte) *decoderTestSequenceBuilder {
	s := &b.seq[len(b.seq)-1]
	if data == nil {
		data = []byte{}
	}
	s.frames = append(s.frames, can.NewFrame(id, data))
	return b
}

func (b *decoderTestSequenceBuilder) build() []decoderTestSequence {
	return b.seq
}

func TestDecoder(t *testing.T) {
	testCases := []struct {
		name    string
		seq     []decoderTestSequence
		dropped uint64
	}{
		{
			name: "single frame",
			seq: decoderTestSequences().
				on("t2058200000000000c842\r").frame(0x205, 0x20, 0, 0, 0, 0, 0, 0xc8, 0x42).
				build(),
		},
		{
			name: "upper case digits",
			seq: decoderTestSequences().
				on("t18180100003C0000C842\r").frame(0x181, 0x01, 0, 0, 0x3c, 0, 0, 0xc8, 0x42).
				build(),
		},
		{
			name: "zero length",
			seq: decoderTestSequences().
				on("t7ff0\r").frame(0x7ff).
				build(),
		},
		{
			name: "partial states",
			seq: decoderTestSequences().
				on("t").in(StateID).
				on("18").in(StateID).
				on("1").in(StateLen).
				on("2").in(StateData).
				on("abc").in(StateData).
				on("d").in(StateTerminator).
				on("\r").frame(0x181, 0xab, 0xcd).
				build(),
		},
		{
			name: "back to back",
			seq: decoderTestSequences().
				on("t1811aa\rt2820102\r").frame(0x181, 0xaa).frame(0x282, 0x01, 0x02).
				build(),
		},
		{
			name: "idle chatter",
			seq: decoderTestSequences().
				on("\r\azz\r012").
				on("t1811aa\r").frame(0x181, 0xaa).
				on("\a\r").
				build(),
		},
		{
			name: "opened mid sentence",
			seq: decoderTestSequences().
				on("0000c842\r").
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 0,
		},
		{
			name: "truncated sentence followed by a valid one",
			seq: decoderTestSequences().
				on("t18180100").in(StateData).
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 1,
		},
		{
			name: "invalid length digit",
			seq: decoderTestSequences().
				on("t1819").
				on("0011223344556677\r").
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 1,
		},
		{
			name: "non hex identifier",
			seq: decoderTestSequences().
				on("t1g1").
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 1,
		},
		{
			name: "non hex payload",
			seq: decoderTestSequences().
				on("t1812a").in(StateData).
				on("x").in(StateIdle).
				on("bcc\r").
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 1,
		},
		{
			name: "identifier beyond 11 bits",
			seq: decoderTestSequences().
				on("t8001aa\r").
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 1,
		},
		{
			name: "sentence too long",
			seq: decoderTestSequences().
				on("t1811aabb\r").
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 1,
		},
		{
			name: "terminator too early",
			seq: decoderTestSequences().
				on("t1812aa\r").in(StateIdle).
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
			dropped: 1,
		},
		{
			name: "extended and remote frames are skipped",
			seq: decoderTestSequences().
				on("T123456781aa\r").
				on("r1810\r").
				on("t1811aa\r").frame(0x181, 0xaa).
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var decoder Decoder
			var total uint64
			for n, s := range tc.seq {
				var frames []can.Frame
				for _, b := range []byte(s.in) {
					if f := decoder.Feed(b); f != nil {
						frames = append(frames, *f)
					}
				}
				require.Equalf(t, s.frames, frames, "seq[%d] frames mismatch", n)
				require.Equalf(t, s.state, decoder.State(), "seq[%d] state mismatch", n)
				total += uint64(len(s.frames))
			}
			require.Equal(t, total, decoder.Frames())
			require.Equal(t, tc.dropped, decoder.Dropped())
		})
	}
}

func TestDecoderSplitInvariant(t *testing.T) {
	sentence := []byte("t2058200000000000c842\r")
	expect := can.NewFrame(0x205, []byte{0x20, 0, 0, 0, 0, 0, 0xc8, 0x42})
	for i := 0; i <= len(sentence); i++ {
		for j := i; j <= len(sentence); j++ {
			var decoder Decoder
			var frames []can.Frame
			frames = append(frames, decoder.Decode(sentence[:i])...)
			frames = append(frames, decoder.Decode(sentence[i:j])...)
			frames = append(frames, decoder.Decode(sentence[j:])...)
			require.Equalf(t, []can.Frame{expect}, frames, "split at %d/%d", i, j)
		}
	}
}

func TestDecoderResyncAfterAnyPrefix(t *testing.T) {
	sentence := "t2058200000000000c842\r"
	expect := []can.Frame{can.NewFrame(0x205, []byte{0x20, 0, 0, 0, 0, 0, 0xc8, 0x42})}
	// every proper prefix of a sentence is a truncated sentence
	for i := 0; i < len(sentence); i++ {
		var decoder Decoder
		frames := decoder.Decode([]byte(sentence[:i] + sentence))
		require.Equalf(t, expect, frames, "prefix %q", sentence[:i])
	}
}

func TestDecoderReset(t *testing.T) {
	var decoder Decoder
	decoder.Reset()
	require.Zero(t, decoder.Dropped())
	require.Empty(t, decoder.Decode([]byte("t181")))
	require.Equal(t, StateLen, decoder.State())
	decoder.Reset()
	require.Equal(t, StateIdle, decoder.State())
	require.Equal(t, uint64(1), decoder.Dropped())
	require.Empty(t, decoder.Decode([]byte("1aa\r")))
}
