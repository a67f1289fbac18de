package transport

import "io"

type duplex struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (d *duplex) Close() error {
	for _, c := range d.closers {
		c.Close()
	}
	return nil
}

// Pair creates two Streams connected back to back in memory.
// Sentences sent on one are received by the other.
func Pair() (*Stream, *Stream) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a := &duplex{Reader: ar, Writer: aw, closers: []io.Closer{ar, aw}}
	b := &duplex{Reader: br, Writer: bw, closers: []io.Closer{br, bw}}
	return NewStream(a), NewStream(b)
}
