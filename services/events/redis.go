package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying appointment events.
const Channel = "campusbook:appointments"

// RedisBus is a Bus backed by Redis pub/sub so mirrors can run on a separate
// process from the API. Delivery is at-most-once per connected subscriber;
// handlers stay idempotent regardless.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger

	mu       sync.RWMutex
	handlers []Handler
}

// NewRedisBus returns a RedisBus over the given client.
func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, logger: logger}
}

func (b *RedisBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *RedisBus) Publish(ctx context.Context, evt AppointmentEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, Channel, payload).Err()
}

// Run consumes the channel until ctx is cancelled, dispatching each decoded
// event to the subscribed handlers. Decode failures are logged and skipped.
func (b *RedisBus) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt AppointmentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				b.logger.Warn("events: dropping undecodable message", zap.Error(err))
				continue
			}
			b.mu.RLock()
			handlers := make([]Handler, len(b.handlers))
			copy(handlers, b.handlers)
			b.mu.RUnlock()
			for _, h := range handlers {
				h(ctx, evt)
			}
		}
	}
}
