package slcan

import (
	"github.com/golang/glog"

	"github.com/robotalks/esc.go/pkg/can"
)

// State is the position of the decoder inside a sentence.
type State int

// Decoder states.
const (
	StateIdle       State = iota // waiting for sentence start
	StateID                      // reading identifier digits
	StateLen                     // reading the length digit
	StateData                    // reading payload digits
	StateTerminator              // waiting for carriage return
)

const (
	frameStd   byte = 't'
	terminator byte = '\r'
	idDigits        = 3

	// MaxSentenceLen is the size of the longest standard frame sentence.
	MaxSentenceLen = 1 + idDigits + 1 + 2*can.MaxDataLen + 1
)

// Decoder assembles frames from an SLCAN byte stream.
// A Decoder belongs to exactly one stream and must not be fed
// concurrently.
type Decoder struct {
	state  State
	id     uint32
	length uint8
	data   [can.MaxDataLen]byte
	digits int

	frames  uint64
	dropped uint64
}

// State gets the current state.
func (d *Decoder) State() State {
	return d.state
}

// Frames gets the number of frames decoded so far.
func (d *Decoder) Frames() uint64 {
	return d.frames
}

// Dropped gets the number of malformed sentences discarded so far.
func (d *Decoder) Dropped() uint64 {
	return d.dropped
}

// Reset discards any partial sentence.
func (d *Decoder) Reset() {
	if d.state != StateIdle {
		d.dropped++
	}
	d.state = StateIdle
}

// Feed consumes one byte and returns a frame when the byte completes a
// sentence, or nil otherwise.
func (d *Decoder) Feed(b byte) *can.Frame {
	switch d.state {
	case StateIdle:
		d.start(b)
	case StateID:
		v, ok := hexValue(b)
		if !ok {
			return d.resync(b)
		}
		d.id = d.id<<4 | uint32(v)
		if d.digits++; d.digits == idDigits {
			if d.id > can.MaxID {
				return d.resync(b)
			}
			d.state = StateLen
		}
	case StateLen:
		v, ok := hexValue(b)
		if !ok || v > can.MaxDataLen {
			return d.resync(b)
		}
		d.length, d.digits = v, 0
		if v == 0 {
			d.state = StateTerminator
		} else {
			d.state = StateData
		}
	case StateData:
		v, ok := hexValue(b)
		if !ok {
			return d.resync(b)
		}
		if i := d.digits >> 1; d.digits&1 == 0 {
			d.data[i] = v << 4
		} else {
			d.data[i] |= v
		}
		if d.digits++; d.digits == int(d.length)*2 {
			d.state = StateTerminator
		}
	case StateTerminator:
		if b != terminator {
			return d.resync(b)
		}
		return d.frameReady()
	}
	return nil
}

// Decode feeds a chunk of bytes and returns all frames completed by it.
func (d *Decoder) Decode(p []byte) (frames []can.Frame) {
	for _, b := range p {
		if f := d.Feed(b); f != nil {
			frames = append(frames, *f)
		}
	}
	return
}

func (d *Decoder) start(b byte) {
	if b == frameStd {
		d.state, d.id, d.length, d.digits = StateID, 0, 0, 0
	}
}

// resync drops the partial sentence. The offending byte may itself start
// the next sentence.
func (d *Decoder) resync(b byte) *can.Frame {
	d.dropped++
	if glog.V(3) {
		glog.Infof("slcan: drop sentence in state %d at %q", d.state, b)
	}
	d.state = StateIdle
	d.start(b)
	return nil
}

func (d *Decoder) frameReady() *can.Frame {
	d.state = StateIdle
	d.frames++
	data := make([]byte, d.length)
	copy(data, d.data[:d.length])
	return &can.Frame{ID: d.id, Len: d.length, Data: data}
}

func hexValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
