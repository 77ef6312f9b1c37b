package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/relevohq/relevo/internal/config"
	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/pkg/log"
)

// Handler consumes one interview-completed event. Delivery is at-least-once:
// handlers must tolerate duplicates.
type Handler func(ctx context.Context, ev core.CompletedEvent)

// Unsubscribe detaches a previously registered handler.
type Unsubscribe func() error

// Bus decouples the online interview turns from the offline extraction
// worker. It is the only thing the API and worker processes share besides
// persistence.
type Bus interface {
	PublishCompleted(ctx context.Context, ev core.CompletedEvent) error
	SubscribeCompleted(ctx context.Context, handler Handler) (Unsubscribe, error)
}

// NATSBus carries events over a NATS subject.
type NATSBus struct {
	nc      *nats.Conn
	channel string
}

func NewNATSBus(cfg *config.NATSConfig) (*NATSBus, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	return &NATSBus{nc: nc, channel: cfg.Channel}, nil
}

func (b *NATSBus) PublishCompleted(ctx context.Context, ev core.CompletedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal completed event: %w", err)
	}
	if err := b.nc.Publish(b.channel, data); err != nil {
		return fmt.Errorf("publish completed event: %w", err)
	}
	log.FromCtx(ctx).Info().
		Str("channel", b.channel).
		Str("interview_id", ev.InterviewID).
		Msg("published interview completed event")
	return nil
}

func (b *NATSBus) SubscribeCompleted(ctx context.Context, handler Handler) (Unsubscribe, error) {
	sub, err := b.nc.Subscribe(b.channel, func(msg *nats.Msg) {
		var ev core.CompletedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.FromCtx(ctx).Error().Err(err).
				Str("channel", b.channel).
				Msg("dropping malformed completed event")
			return
		}
		handler(ctx, ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	return sub.Unsubscribe, nil
}

func (b *NATSBus) Close() error {
	b.nc.Close()
	return nil
}

// MemoryBus is an in-process Bus for tests and single-binary deployments.
// Dispatch is synchronous, which keeps tests deterministic.
type MemoryBus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[int]Handler)}
}

func (b *MemoryBus) PublishCompleted(ctx context.Context, ev core.CompletedEvent) error {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
	return nil
}

func (b *MemoryBus) SubscribeCompleted(ctx context.Context, handler Handler) (Unsubscribe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler

	return func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		return nil
	}, nil
}
