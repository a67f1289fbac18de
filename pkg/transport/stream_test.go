package transport

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/esc.go/pkg/can"
)

type testStream struct {
	r       *io.PipeReader
	w       *io.PipeWriter
	written bytes.Buffer
	lock    sync.Mutex
}

func newTestStream() *testStream {
	r, w := io.Pipe()
	return &testStream{r: r, w: w}
}

func (s *testStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *testStream) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.written.Write(p)
}

func (s *testStream) Close() error {
	return s.r.Close()
}

func (s *testStream) inject(t *testing.T, p string) {
	_, err := s.w.Write([]byte(p))
	require.NoError(t, err)
}

func (s *testStream) output() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.written.String()
}

func runStream(t *testing.T, s *Stream) (chan can.Frame, func() error) {
	frameCh := make(chan can.Frame, 16)
	s.SetHandler(can.HandleFrameFunc(func(ctx context.Context, f can.Frame) {
		frameCh <- f
	}))
	ctx, cancel := context.WithCancel(context.TODO())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(ctx)
	}()
	return frameCh, func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(time.Second):
			t.Fatal("stream didn't stop")
			return nil
		}
	}
}

func expectFrame(t *testing.T, frameCh chan can.Frame) can.Frame {
	select {
	case f := <-frameCh:
		return f
	case <-time.After(time.Second):
		t.Fatal("expect frame timeout")
		return can.Frame{}
	}
}

func TestStreamReceive(t *testing.T) {
	ts := newTestStream()
	s := NewStream(ts)
	frameCh, stop := runStream(t, s)

	ts.inject(t, "0000c842\rt18")
	ts.inject(t, "180100003c0000c842\r")
	f := expectFrame(t, frameCh)
	require.Equal(t, can.NewFrame(0x181, []byte{0x01, 0, 0, 0x3c, 0, 0, 0xc8, 0x42}), f)

	ts.inject(t, "t1812a")
	ts.inject(t, "t2051ff\r")
	f = expectFrame(t, frameCh)
	require.Equal(t, can.NewFrame(0x205, []byte{0xff}), f)

	require.Equal(t, context.Canceled, stop())
	stats := s.Stats()
	require.Equal(t, uint64(2), stats.FramesIn)
	require.Equal(t, uint64(1), stats.Dropped)
}

func TestStreamSend(t *testing.T) {
	ts := newTestStream()
	s := NewStream(ts)
	require.NoError(t, s.Send(can.NewFrame(0x205, []byte{0x04, 0, 0, 0, 0, 0, 0, 0})))
	require.NoError(t, s.Send(can.NewFrame(0x181, nil)))
	require.Equal(t, can.ErrInvalidID, s.Send(can.NewFrame(0x800, nil)))
	require.Equal(t, "t20580400000000000000\rt1810\r", ts.output())
	require.Equal(t, uint64(2), s.Stats().FramesOut)

	require.NoError(t, s.Close())
	require.Equal(t, ErrClosed, s.Send(can.NewFrame(0x181, nil)))
}

func TestStreamAdapterSetup(t *testing.T) {
	ts := newTestStream()
	s := NewStream(ts)
	s.Bitrate = 500000
	_, stop := runStream(t, s)
	require.Eventually(t, func() bool {
		return ts.output() == "C\rS6\rO\r"
	}, time.Second, 10*time.Millisecond)
	stop()
	require.NoError(t, s.Close())
	require.Equal(t, "C\rS6\rO\rC\r", ts.output())
}

func TestStreamClosed(t *testing.T) {
	ts := newTestStream()
	s := NewStream(ts)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(context.TODO())
	}()
	require.NoError(t, s.Close())
	select {
	case err := <-errCh:
		require.Equal(t, ErrClosed, err)
	case <-time.After(time.Second):
		t.Fatal("stream didn't stop")
	}
}

func TestPair(t *testing.T) {
	a, b := Pair()
	_, stopA := runStream(t, a)
	frameCh, stopB := runStream(t, b)
	defer stopA()
	defer stopB()

	sent := can.NewFrame(0x205, []byte{0x20, 0, 0, 0, 0, 0, 0xc8, 0x42})
	require.NoError(t, a.Send(sent))
	require.Equal(t, sent, expectFrame(t, frameCh))
}
