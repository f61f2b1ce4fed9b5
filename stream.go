package wasmnet

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync/atomic"

	"github.com/tarndt/wasmnet/internal/broadcast"
)

//Stream is one reader's view of a connection's events. Streams are independent: each sees every event
// produced after it was created, in order, ending with Closed. A Stream is not restartable.
type Stream struct {
	rcv   *broadcast.Receiver[Event]
	ended atomic.Bool
}

func newStream(rcv *broadcast.Receiver[Event]) *Stream {
	return &Stream{rcv: rcv}
}

//Next returns the next event, waiting for one if needed. After Closed has been returned it returns
// io.EOF. If ctx ends first ctx.Err() is returned and nothing is lost; Next may be called again.
func (s *Stream) Next(ctx context.Context) (Event, error) {
	if s.ended.Load() {
		return nil, io.EOF
	}

	ev, err := s.rcv.Recv(ctx)
	switch {
	case errors.Is(err, broadcast.ErrClosed):
		s.ended.Store(true)
		return nil, io.EOF
	case err != nil:
		return nil, err
	}

	if _, final := ev.(Closed); final {
		s.ended.Store(true)
		s.rcv.Close()
	}
	return ev, nil
}

//All iterates the remaining events. Iteration stops after Closed or when ctx ends.
func (s *Stream) All(ctx context.Context) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev, err := s.Next(ctx)
			if err != nil || !yield(ev) {
				return
			}
		}
	}
}

//Close abandons the stream. It has no effect on the connection or any other Stream.
func (s *Stream) Close() {
	s.ended.Store(true)
	s.rcv.Close()
}

//Buffered is the number of events waiting to be read
func (s *Stream) Buffered() int { return s.rcv.Len() }

//Dropped is the number of events lost because this stream lagged beyond Options.StreamCapacity
func (s *Stream) Dropped() uint64 { return s.rcv.Dropped() }
