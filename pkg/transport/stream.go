package transport

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/slcan"
)

// Stats counts traffic on a transport.
type Stats struct {
	FramesIn  uint64
	FramesOut uint64
	Dropped   uint64
}

// StatsSource exposes Stats.
type StatsSource interface {
	Stats() Stats
}

const readChunkSize = 64

// Stream sends/receives frames as SLCAN sentences.
type Stream struct {
	ReadWriter  io.ReadWriter
	Handler     can.FrameHandler
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read
	// Bitrate, when non-zero, configures a generic SLCAN adapter and opens
	// its channel before reading.
	Bitrate int

	decoder  slcan.Decoder
	sendLock sync.Mutex
	sendBuf  []byte

	framesIn  atomic.Uint64
	framesOut atomic.Uint64
	dropped   atomic.Uint64
	closed    atomic.Bool
}

// NewStream creates a Stream.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{ReadWriter: rw}
}

// SetHandler implements can.Transport.
func (s *Stream) SetHandler(h can.FrameHandler) {
	s.Handler = h
}

// Stats implements StatsSource.
func (s *Stream) Stats() Stats {
	return Stats{
		FramesIn:  s.framesIn.Load(),
		FramesOut: s.framesOut.Load(),
		Dropped:   s.dropped.Load(),
	}
}

// Send implements can.Transport.
func (s *Stream) Send(f can.Frame) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.sendLock.Lock()
	defer s.sendLock.Unlock()
	buf, err := slcan.AppendFrame(s.sendBuf[:0], f)
	if err != nil {
		return err
	}
	s.sendBuf = buf
	if _, err = s.ReadWriter.Write(buf); err != nil {
		return err
	}
	s.framesOut.Add(1)
	if glog.V(2) {
		glog.Infof("SND %s", f)
	}
	return nil
}

// Run implements can.Transport.
func (s *Stream) Run(ctx context.Context) error {
	if err := s.setup(); err != nil {
		return err
	}
	if s.ReadTimeout {
		buf := make([]byte, readChunkSize)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			n, err := s.ReadWriter.Read(buf)
			if n > 0 {
				s.feed(ctx, buf[:n])
			}
			if err != nil && !os.IsTimeout(err) {
				return s.readErr(err)
			}
		}
	}

	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.readLoop(subCtx, chunkCh, errCh)
	for {
		select {
		case chunk := <-chunkCh:
			s.feed(ctx, chunk)
		case err := <-errCh:
			return s.readErr(err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close implements can.Transport.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.Bitrate != 0 {
		s.sendLock.Lock()
		s.ReadWriter.Write(slcan.CloseCommand)
		s.sendLock.Unlock()
	}
	if closer, ok := s.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Stream) setup() error {
	if s.Bitrate == 0 {
		return nil
	}
	bitrate, err := slcan.BitrateCommand(s.Bitrate)
	if err != nil {
		return err
	}
	s.sendLock.Lock()
	defer s.sendLock.Unlock()
	for _, cmd := range [][]byte{slcan.CloseCommand, bitrate, slcan.OpenCommand} {
		if _, err := s.ReadWriter.Write(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stream) readLoop(ctx context.Context, chunkCh chan []byte, errCh chan error) {
	for {
		buf := make([]byte, readChunkSize)
		n, err := s.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		select {
		case chunkCh <- buf[:n]:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Stream) feed(ctx context.Context, p []byte) {
	for _, b := range p {
		f := s.decoder.Feed(b)
		if f == nil {
			continue
		}
		s.framesIn.Add(1)
		if glog.V(2) {
			glog.Infof("RCV %s", f)
		}
		if h := s.Handler; h != nil {
			h.HandleFrame(ctx, *f)
		}
	}
	s.dropped.Store(s.decoder.Dropped())
}

func (s *Stream) readErr(err error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return err
}
