package stock

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

const subscriberBuffer = 16

type channelSubscriber interface {
	Subscribe(ctx context.Context, channel string) *goredis.PubSub
}

type channelPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Hub bridges the redis stock channel to in-process consumers: the cart
// reconciler and any number of SSE clients. A slow consumer loses messages
// rather than stalling the feed; the reconciler reloads authoritative state
// on every event, so a dropped message only delays a trim until the next
// one.
type Hub struct {
	source  channelSubscriber
	sink    channelPublisher
	channel string
	log     *logger.Logger

	mu   sync.Mutex
	subs map[int]chan []byte
	next int
}

// HubParams configure a Hub.
type HubParams struct {
	Source  channelSubscriber
	Sink    channelPublisher
	Channel string
	Logger  *logger.Logger
}

// NewHub builds the stock feed hub.
func NewHub(params HubParams) (*Hub, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("channel source required")
	}
	if params.Sink == nil {
		return nil, fmt.Errorf("channel sink required")
	}
	if params.Channel == "" {
		return nil, fmt.Errorf("channel name required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Hub{
		source:  params.Source,
		sink:    params.Sink,
		channel: params.Channel,
		log:     params.Logger,
		subs:    make(map[int]chan []byte),
	}, nil
}

// Publish emits an event on the shared channel. The hub's own subscription
// loops it back, so local carts reconcile through the same path as remote
// ones.
func (h *Hub) Publish(ctx context.Context, event Event) error {
	payload, err := event.Encode()
	if err != nil {
		return err
	}
	return h.sink.Publish(ctx, h.channel, payload)
}

// Subscribe registers an in-process consumer. The returned cancel func must
// be called to release the subscription.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Run consumes the redis channel and fans messages out until ctx is
// cancelled. The go-redis PubSub reconnects on its own; while it is down the
// feed is simply silent and carts stop trimming until it returns.
func (h *Hub) Run(ctx context.Context) error {
	pubsub := h.source.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	h.log.Info(ctx, fmt.Sprintf("stock feed subscribed to %s", h.channel))
	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}
