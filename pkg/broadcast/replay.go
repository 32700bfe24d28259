package broadcast

import (
	"context"
	"sync"
)

// DefaultLiveBuffer is the per-subscriber buffer for messages published
// after the subscription began.
const DefaultLiveBuffer = 64

// ReplayBroadcaster is an in-memory Broadcaster keeping an unbounded,
// append-only history of every message. New subscribers receive the full
// history in publish order before any live message.
//
// History and the subscriber set are guarded by a single mutex, which is
// what serializes the global publish order: all subscribers observe
// messages in the order Broadcast calls complete.
type ReplayBroadcaster[T any] struct {
	mu         sync.Mutex
	history    []Message[T]
	subs       map[*replaySubscriber[T]]struct{}
	liveBuffer int
	closed     bool
}

// NewReplayBroadcaster creates a hub whose subscribers buffer up to
// liveBuffer live messages each. Non-positive values fall back to
// DefaultLiveBuffer. Replay is unaffected by the buffer size: the history
// snapshot is always preloaded in full.
func NewReplayBroadcaster[T any](liveBuffer int) *ReplayBroadcaster[T] {
	if liveBuffer <= 0 {
		liveBuffer = DefaultLiveBuffer
	}
	return &ReplayBroadcaster[T]{
		subs:       make(map[*replaySubscriber[T]]struct{}),
		liveBuffer: liveBuffer,
	}
}

// Broadcast appends msg to the history and forwards it to every current
// subscriber. Delivery is non-blocking: a subscriber with a full buffer
// misses the message, other subscribers and the history are unaffected.
func (b *ReplayBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBroadcasterClosed
	}

	b.history = append(b.history, msg)

	for sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
			// Buffer full: drop for this subscriber only.
		}
	}
	return nil
}

// Subscribe registers a new subscriber and synchronously preloads the
// current history into its channel, so replay is complete and strictly
// precedes any message published after this call returns. The subscription
// ends when ctx is cancelled, the subscriber is closed, or the hub is
// closed. Subscribing to a closed hub yields an already-completed stream.
func (b *ReplayBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		sub := &replaySubscriber[T]{
			ch:   make(chan Message[T]),
			done: make(chan struct{}),
		}
		sub.finish()
		return sub
	}

	// Capacity covers the full history plus live headroom, so the preload
	// below can never block while the lock is held.
	sub := &replaySubscriber[T]{
		hub:  b,
		ch:   make(chan Message[T], len(b.history)+b.liveBuffer),
		done: make(chan struct{}),
	}
	for _, msg := range b.history {
		sub.ch <- msg
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				b.unsubscribe(sub)
			case <-sub.done:
			}
		}()
	}

	return sub
}

// Close shuts the hub down. All subscriber channels are closed, so every
// outstanding stream completes without error. Further Broadcast calls
// return ErrBroadcasterClosed; the history is released.
func (b *ReplayBroadcaster[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBroadcasterClosed
	}
	b.closed = true

	for sub := range b.subs {
		sub.finish()
	}
	b.subs = nil
	b.history = nil
	return nil
}

// Len reports the number of messages recorded so far.
func (b *ReplayBroadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.history)
}

// unsubscribe removes sub and completes its channel. Removal happens under
// the hub lock, which excludes concurrent sends into the channel being
// closed.
func (b *ReplayBroadcaster[T]) unsubscribe(sub *replaySubscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	sub.finish()
}

type replaySubscriber[T any] struct {
	hub  *ReplayBroadcaster[T]
	ch   chan Message[T]
	done chan struct{}
	once sync.Once
}

// Receive implements Subscriber.
func (s *replaySubscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

// Close implements Subscriber. It is safe to call multiple times and after
// the hub itself has been closed.
func (s *replaySubscriber[T]) Close() error {
	if s.hub != nil {
		s.hub.unsubscribe(s)
	}
	return nil
}

// finish closes the subscriber's channels exactly once. Callers must hold
// the hub lock (or own the subscriber exclusively) to exclude in-flight
// sends.
func (s *replaySubscriber[T]) finish() {
	s.once.Do(func() {
		close(s.ch)
		close(s.done)
	})
}
