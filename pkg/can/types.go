package can

import "context"

// FrameHandler is called when a frame is received.
type FrameHandler interface {
	HandleFrame(context.Context, Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame Frame) {
	f(ctx, frame)
}

// FrameSender sends frames.
type FrameSender interface {
	Send(Frame) error
}

// Transport moves frames between the host and the bus.
// Run blocks, delivering received frames to the handler, until the
// context is canceled or the underlying link fails.
type Transport interface {
	FrameSender
	SetHandler(FrameHandler)
	Run(context.Context) error
	Close() error
}
