package broadcast

import (
	"context"
	"errors"
)

// ErrBroadcasterClosed is returned by Broadcast after the hub is closed.
var ErrBroadcasterClosed = errors.New("broadcaster is closed")

// Message wraps a broadcast payload.
type Message[T any] struct {
	Data T
}

// Broadcaster distributes messages to any number of subscribers.
type Broadcaster[T any] interface {
	// Broadcast delivers msg to all current subscribers and records it for
	// replay to future ones. It never blocks on a slow consumer.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Subscribe registers a new subscriber whose lifetime is bound to ctx.
	Subscribe(ctx context.Context) Subscriber[T]

	// Close tears down the hub and completes all subscriber streams.
	Close() error
}

// Subscriber is one consumer's view of the broadcast stream.
type Subscriber[T any] interface {
	// Receive returns the channel messages arrive on. The channel is closed
	// when the subscription ends.
	Receive() <-chan Message[T]

	// Close cancels the subscription and releases its buffered state.
	Close() error
}
