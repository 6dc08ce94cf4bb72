// Package broadcast provides a generic in-memory pub/sub used to fan out state
// changes to any number of subscribers.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[string](16)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	go func() {
//		for msg := range sub.Receive(ctx) {
//			fmt.Println(msg.Data)
//		}
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"})
//
// # Delivery
//
// Broadcast never blocks on a slow subscriber. When a subscriber's buffer is
// full the oldest pending message is dropped to make room for the new one, so a
// subscriber that falls behind always ends up holding the most recent message.
// This suits state streams where only the latest value matters.
//
// Subscriptions are removed and their channel closed when the subscription
// context is cancelled, when Close is called on the subscriber, or when the
// broadcaster itself is closed.
package broadcast
