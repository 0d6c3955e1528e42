package notify

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Subscriber 变更事件订阅者（订阅全部被监听的表）
type Subscriber struct {
	client *redis.Client
	logger *zap.Logger

	pubsub *redis.PubSub
	done   chan struct{}
}

func NewSubscriber(client *redis.Client, logger *zap.Logger) *Subscriber {
	return &Subscriber{client: client, logger: logger}
}

// Start subscribes to every watched table and invokes handler once per event
// on a single goroutine. Reconnection on channel drop is go-redis's concern;
// events lost while disconnected are absorbed by the next full refresh.
func (s *Subscriber) Start(ctx context.Context, handler func(Event)) error {
	channels := make([]string, 0, len(Tables))
	for _, t := range Tables {
		channels = append(channels, Channel(t))
	}

	s.pubsub = s.client.Subscribe(ctx, channels...)
	// Force the subscription onto the wire before returning.
	if _, err := s.pubsub.Receive(ctx); err != nil {
		s.pubsub.Close()
		s.pubsub = nil
		return err
	}

	s.done = make(chan struct{})
	ch := s.pubsub.Channel()

	go func() {
		defer close(s.done)
		for msg := range ch {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warn("Ignoring malformed change event",
					zap.String("channel", msg.Channel),
					zap.Error(err),
				)
				continue
			}
			handler(ev)
		}
	}()

	s.logger.Info("Change feed subscribed", zap.Strings("channels", channels))
	return nil
}

// Stop unsubscribes and waits for the delivery goroutine to drain. Safe to
// call when Start never ran or failed its handshake.
func (s *Subscriber) Stop() error {
	if s.pubsub == nil {
		return nil
	}
	err := s.pubsub.Close()
	if s.done != nil {
		<-s.done
	}
	return err
}
