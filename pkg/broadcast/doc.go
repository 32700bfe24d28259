// Package broadcast provides a generic in-memory pub/sub hub with full
// history replay and non-blocking message delivery.
//
// The package defines two interfaces:
//   - Broadcaster: sends messages to multiple subscribers
//   - Subscriber: receives broadcast messages
//
// ReplayBroadcaster is the in-memory implementation. Every broadcast is
// appended to an unbounded history, and a new subscriber first receives the
// entire history in publish order before any live message. Two subscribers
// started at different times may see different-length replay prefixes but
// always observe messages in the same relative order.
//
// Basic usage:
//
//	hub := broadcast.NewReplayBroadcaster[MovieInfo](64)
//	defer hub.Close()
//
//	sub := hub.Subscribe(ctx)
//	defer sub.Close()
//
//	go func() {
//		for msg := range sub.Receive() {
//			fmt.Println(msg.Data)
//		}
//	}()
//
//	hub.Broadcast(ctx, broadcast.Message[MovieInfo]{Data: movie})
//
// # Delivery Guarantees
//
// Replay is lossless: the history snapshot is preloaded into the subscriber's
// channel at subscription time, so a late joiner always receives every prior
// message. Live delivery is best-effort: a subscriber whose buffer is full
// has further messages dropped for it alone. Broadcast never blocks on a
// slow or absent consumer, and a dropped delivery never affects other
// subscribers or the history.
//
// # Lifecycle
//
// Subscriptions end when the subscriber calls Close, when the context passed
// to Subscribe is cancelled, or when the hub itself is closed. In every case
// the subscriber's channel is closed so ranging consumers terminate cleanly.
//
// All types are safe for concurrent use. A single hub is intended to live
// for the whole process.
package broadcast
