package events

import (
	"context"
	"testing"

	"github.com/relevohq/relevo/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	var got1, got2 []string
	_, err := bus.SubscribeCompleted(ctx, func(ctx context.Context, ev core.CompletedEvent) {
		got1 = append(got1, ev.InterviewID)
	})
	require.NoError(t, err)
	_, err = bus.SubscribeCompleted(ctx, func(ctx context.Context, ev core.CompletedEvent) {
		got2 = append(got2, ev.InterviewID)
	})
	require.NoError(t, err)

	ev := core.CompletedEvent{InterviewID: "iv1", OrganizationID: "org1", EmployeeID: "e1", Language: "es"}
	require.NoError(t, bus.PublishCompleted(ctx, ev))

	assert.Equal(t, []string{"iv1"}, got1)
	assert.Equal(t, []string{"iv1"}, got2)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	count := 0
	unsub, err := bus.SubscribeCompleted(ctx, func(ctx context.Context, ev core.CompletedEvent) {
		count++
	})
	require.NoError(t, err)

	require.NoError(t, bus.PublishCompleted(ctx, core.CompletedEvent{InterviewID: "iv1"}))
	require.NoError(t, unsub())
	require.NoError(t, bus.PublishCompleted(ctx, core.CompletedEvent{InterviewID: "iv2"}))

	assert.Equal(t, 1, count)
}

func TestMemoryBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewMemoryBus()

	err := bus.PublishCompleted(context.Background(), core.CompletedEvent{InterviewID: "iv1"})
	assert.NoError(t, err)
}

func TestMemoryBus_RedeliveryReachesHandlerTwice(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	count := 0
	_, err := bus.SubscribeCompleted(ctx, func(ctx context.Context, ev core.CompletedEvent) {
		count++
	})
	require.NoError(t, err)

	ev := core.CompletedEvent{InterviewID: "iv1"}
	require.NoError(t, bus.PublishCompleted(ctx, ev))
	require.NoError(t, bus.PublishCompleted(ctx, ev))

	// At-least-once semantics: the bus does not dedupe, handlers must.
	assert.Equal(t, 2, count)
}
