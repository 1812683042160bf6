package bounded

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"pizzeria/internal/pkg/errs"
)

// ErrCancelled is returned by Put, Take and TakeUpTo when the caller's context is
// done before the operation could complete. The returned error also wraps the
// context cause, so errors.Is(err, context.Canceled) holds for a plain cancel.
var ErrCancelled = errors.New("bounded channel wait cancelled")

// Channel is a fixed-capacity FIFO shared by many producers and consumers.
//
// Producers block in Put while the channel is full; consumers block in Take and
// TakeUpTo while it is empty. Every state change broadcasts on the opposite
// condition and every waiter re-checks its predicate, so a waiter that gave up
// on cancellation never swallows a wakeup meant for another one.
type Channel[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	// buf is a ring of len == capacity; items live at head .. head+size-1 (mod capacity)
	buf  []T
	head int
	size int

	recorder Recorder
}

// New creates a channel that holds at most capacity items.
// A non-positive capacity is rejected with errs.ErrValueIsOutOfRange.
func New[T any](capacity int, opts ...Option) (*Channel[T], error) {
	if capacity <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("capacity", capacity, 1, math.MaxInt)
	}

	o := options{recorder: noopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Channel[T]{
		buf:      make([]T, capacity),
		recorder: o.recorder,
	}
	c.notFull = sync.NewCond(&c.mu)
	c.notEmpty = sync.NewCond(&c.mu)
	return c, nil
}

// Put appends item to the tail, blocking while the channel is full.
// If ctx is done before space frees up the item is not inserted and an error
// matching ErrCancelled is returned.
func (c *Channel[T]) Put(ctx context.Context, item T) error {
	c.recorder.RecordPutAttempt()

	c.mu.Lock()
	defer c.mu.Unlock()

	stop := c.wakeOnDone(ctx, c.notFull)
	defer stop()

	for {
		if ctx.Err() != nil {
			return cancelled(ctx)
		}
		if c.size < len(c.buf) {
			break
		}
		c.notFull.Wait()
	}

	c.buf[(c.head+c.size)%len(c.buf)] = item
	c.size++

	c.recorder.RecordPut(c.size)
	c.notEmpty.Broadcast()
	return nil
}

// Take removes and returns the head item, blocking while the channel is empty.
func (c *Channel[T]) Take(ctx context.Context) (T, error) {
	c.recorder.RecordTakeAttempt()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.awaitItems(ctx); err != nil {
		var zero T
		return zero, err
	}

	item := c.pop()

	c.recorder.RecordTake(1, c.size)
	c.notFull.Broadcast()
	return item, nil
}

// TakeUpTo blocks until at least one item is present and then atomically removes
// min(maxAmount, Size()) items from the head. It never waits for a second item.
// A non-positive maxAmount returns an empty batch without blocking.
func (c *Channel[T]) TakeUpTo(ctx context.Context, maxAmount int) ([]T, error) {
	if maxAmount <= 0 {
		return []T{}, nil
	}

	c.recorder.RecordTakeAttempt()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.awaitItems(ctx); err != nil {
		return nil, err
	}

	n := min(maxAmount, c.size)
	batch := make([]T, 0, n)
	for range n {
		batch = append(batch, c.pop())
	}

	c.recorder.RecordTake(n, c.size)
	c.notFull.Broadcast()
	return batch, nil
}

// DrainAll removes and returns every item currently present without blocking.
// It is meant for shutdown, after the workers have stopped.
func (c *Channel[T]) DrainAll() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	drained := make([]T, 0, c.size)
	for c.size > 0 {
		drained = append(drained, c.pop())
	}

	if len(drained) > 0 {
		c.recorder.RecordTake(len(drained), 0)
		c.notFull.Broadcast()
	}
	return drained
}

// Size returns the number of buffered items.
func (c *Channel[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// IsEmpty reports whether no items are buffered.
func (c *Channel[T]) IsEmpty() bool {
	return c.Size() == 0
}

// Capacity returns the maximum number of buffered items.
func (c *Channel[T]) Capacity() int {
	return len(c.buf)
}

// awaitItems waits on notEmpty until an item is present. Caller holds mu.
func (c *Channel[T]) awaitItems(ctx context.Context) error {
	stop := c.wakeOnDone(ctx, c.notEmpty)
	defer stop()

	for {
		if ctx.Err() != nil {
			return cancelled(ctx)
		}
		if c.size > 0 {
			return nil
		}
		c.notEmpty.Wait()
	}
}

// pop removes the head item. Caller holds mu and guarantees size > 0.
func (c *Channel[T]) pop() T {
	var zero T
	item := c.buf[c.head]
	c.buf[c.head] = zero
	c.head = (c.head + 1) % len(c.buf)
	c.size--
	return item
}

// wakeOnDone arranges for every waiter on cond to re-check its predicate once
// ctx is done. The broadcast takes mu, so it cannot slip in between a waiter's
// ctx check and its Wait call.
func (c *Channel[T]) wakeOnDone(ctx context.Context, cond *sync.Cond) func() bool {
	return context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		cond.Broadcast()
	})
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
