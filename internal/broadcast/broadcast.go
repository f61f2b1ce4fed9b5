// Package broadcast is a single producer, multiple cursor fan-out channel.
//
// Send never blocks the producer: every receiver owns its own queue, so a slow
// receiver can only ever hurt itself. Queues are unbounded unless a capacity is
// given, in which case the oldest queued values of a lagging receiver are dropped.
// The terminal value passed to Close is never dropped.
package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/eapache/queue"
)

//ErrClosed is returned by Recv once the channel is closed and the receiver drained
var ErrClosed = errors.New("broadcast: channel closed")

type Channel[T any] struct {
	mu        sync.Mutex
	capacity  int
	receivers map[*Receiver[T]]struct{}

	closed   bool
	terminal T
}

//New returns a channel whose receivers queue at most capacity values.
// A capacity <= 0 means unbounded.
func New[T any](capacity int) *Channel[T] {
	return &Channel[T]{
		capacity:  capacity,
		receivers: make(map[*Receiver[T]]struct{}),
	}
}

//Subscribe returns a new receiver that observes every value sent from now on.
// Subscribing to a closed channel yields a receiver holding only the terminal value.
func (c *Channel[T]) Subscribe() *Receiver[T] {
	rcv := &Receiver[T]{
		owner: c,
		q:     queue.New(),
		ready: make(chan struct{}, 1),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		rcv.push(c.terminal, true)
		rcv.finish()
		return rcv
	}
	c.receivers[rcv] = struct{}{}
	return rcv
}

//Send queues v for every current receiver; it is a no-op after Close
func (c *Channel[T]) Send(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for rcv := range c.receivers {
		rcv.push(v, false)
	}
}

//Close queues final for every receiver and retires the send side.
// It reports false if the channel was already closed.
func (c *Channel[T]) Close(final T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed, c.terminal = true, final
	for rcv := range c.receivers {
		rcv.push(final, true)
		rcv.finish()
	}
	clear(c.receivers)
	return true
}

//Closed reports whether Close has been called
func (c *Channel[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

//Len is the number of live receivers
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.receivers)
}

func (c *Channel[T]) unsubscribe(rcv *Receiver[T]) {
	c.mu.Lock()
	delete(c.receivers, rcv)
	c.mu.Unlock()
}

//Receiver is one independent cursor over a Channel
type Receiver[T any] struct {
	owner *Channel[T]

	mu       sync.Mutex
	q        *queue.Queue
	ready    chan struct{}
	finished bool
	detached bool
	dropped  uint64
}

//Recv returns the next queued value, waiting for one if none is queued.
// It returns ErrClosed once the channel is closed and every queued value has been
// returned, or ctx.Err() if ctx ends first.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	for {
		r.mu.Lock()
		if r.q.Length() > 0 {
			v := r.q.Remove().(T)
			r.mu.Unlock()
			return v, nil
		}
		if r.finished || r.detached {
			r.mu.Unlock()
			return zero, ErrClosed
		}
		r.mu.Unlock()

		select {
		case <-r.ready:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

//TryRecv returns the next queued value without waiting
func (r *Receiver[T]) TryRecv() (v T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.q.Length() < 1 {
		return v, false
	}
	return r.q.Remove().(T), true
}

//Len is the number of values queued for this receiver
func (r *Receiver[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.q.Length()
}

//Dropped is the number of values discarded because this receiver lagged
func (r *Receiver[T]) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

//Close unsubscribes the receiver and discards anything still queued.
// Other receivers and the producer are unaffected.
func (r *Receiver[T]) Close() {
	r.owner.unsubscribe(r)

	r.mu.Lock()
	r.detached = true
	for r.q.Length() > 0 {
		r.q.Remove()
	}
	r.mu.Unlock()
	r.wake()
}

//push is called with the owner's lock held
func (r *Receiver[T]) push(v T, terminal bool) {
	r.mu.Lock()
	if r.detached {
		r.mu.Unlock()
		return
	}
	if capacity := r.owner.capacity; !terminal && capacity > 0 {
		for r.q.Length() >= capacity {
			r.q.Remove()
			r.dropped++
		}
	}
	r.q.Add(v)
	r.mu.Unlock()
	r.wake()
}

func (r *Receiver[T]) finish() {
	r.mu.Lock()
	r.finished = true
	r.mu.Unlock()
	r.wake()
}

func (r *Receiver[T]) wake() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}
