package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasv2/sessionkit/pkg/broadcast"
)

func receive[T any](t *testing.T, ch <-chan broadcast.Message[T]) broadcast.Message[T] {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return broadcast.Message[T]{}
	}
}

func TestMemoryBroadcaster(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every subscriber", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b := broadcast.NewMemoryBroadcaster[string](4)
		defer b.Close()

		s1 := b.Subscribe(ctx)
		s2 := b.Subscribe(ctx)
		require.Equal(t, 2, b.Subscribers())

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"}))

		assert.Equal(t, "hello", receive(t, s1.Receive(ctx)).Data)
		assert.Equal(t, "hello", receive(t, s2.Receive(ctx)).Data)
	})

	t.Run("slow subscriber keeps the latest message", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		sub := b.Subscribe(ctx)
		for i := 1; i <= 5; i++ {
			require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: i}))
		}

		assert.Equal(t, 5, receive(t, sub.Receive(ctx)).Data)
	})

	t.Run("context cancellation removes subscriber", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		cancel()

		require.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 5*time.Millisecond)

		_, ok := <-sub.Receive(context.Background())
		assert.False(t, ok)
	})

	t.Run("subscriber close is idempotent", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		sub := b.Subscribe(context.Background())
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())
		assert.Equal(t, 0, b.Subscribers())
	})

	t.Run("closed broadcaster", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b := broadcast.NewMemoryBroadcaster[int](1)
		sub := b.Subscribe(ctx)

		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		_, ok := <-sub.Receive(ctx)
		assert.False(t, ok)

		err := b.Broadcast(ctx, broadcast.Message[int]{Data: 1})
		assert.ErrorIs(t, err, broadcast.ErrBroadcasterClosed)

		late := b.Subscribe(ctx)
		_, ok = <-late.Receive(ctx)
		assert.False(t, ok)
	})
}
