package events

import (
	"context"
	"sync"
)

// InProcBus is a synchronous single-process Bus. It dispatches each event to
// every subscribed handler in subscription order on the publisher's
// goroutine, which makes it deterministic enough for tests and sufficient
// for single-node deployments.
type InProcBus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewInProcBus returns an empty in-process bus.
func NewInProcBus() *InProcBus {
	return &InProcBus{}
}

func (b *InProcBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *InProcBus) Publish(ctx context.Context, evt AppointmentEvent) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, evt)
	}
	return nil
}
