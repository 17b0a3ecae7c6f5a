package workers

import (
	"chat-relay/contract"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Ensure *Hub satisfies both boundaries at compile time.
var (
	_ contract.Dispatcher = (*Hub)(nil)
	_ contract.Worker     = (*Hub)(nil)
)

// delivery is one addressed payload waiting for fan-out.
type delivery struct {
	topic   string
	payload any
}

// Hub realizes the Dispatcher capability: it owns the topic to
// subscriber table and fans each published payload out to the sinks
// subscribed to its topic.
//
// It provides best-effort delivery with no guarantees regarding
// ordering across subscribers, durability, or retries. Hub is not a
// message broker.
//
// Hub is safe for concurrent use by multiple goroutines.
type Hub struct {
	log         *slog.Logger
	mu          sync.RWMutex
	subscribers map[string]map[string]contract.EventSink // topic -> connection ID -> sink
	deliveries  chan delivery
	sinkTimeout time.Duration
}

func NewHub(log *slog.Logger, bufferSize int, sinkTimeout time.Duration) *Hub {
	return &Hub{
		log:         log,
		subscribers: make(map[string]map[string]contract.EventSink),
		deliveries:  make(chan delivery, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

// Subscribe registers a connection's sink on a topic. Subscribing the
// same connection twice overwrites the prior sink.
func (h *Hub) Subscribe(topic, connID string, sink contract.EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[topic]; !ok {
		h.subscribers[topic] = make(map[string]contract.EventSink)
	}
	h.subscribers[topic][connID] = sink
}

// Unsubscribe removes a connection from every topic it joined.
// Empty topic sets are deleted to prevent the table from growing
// over time.
func (h *Hub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, sinks := range h.subscribers {
		delete(sinks, connID)
		if len(sinks) == 0 {
			delete(h.subscribers, topic)
		}
	}
}

// Publish enqueues one addressed payload for fan-out. When the
// deliveries channel is full the payload is dropped: a slow relay must
// not block the connection workers calling in.
func (h *Hub) Publish(ctx context.Context, topic string, payload any) {
	select {
	case h.deliveries <- delivery{topic: topic, payload: payload}:
	case <-ctx.Done():
	default:
		h.log.Warn(fmt.Sprintf("Delivery channel full for topic %s, dropping payload", topic))
	}
}

// Pending returns the number of queued deliveries, for diagnostics.
func (h *Hub) Pending() int {
	return len(h.deliveries)
}

// Topics returns the number of topics with at least one subscriber,
// for diagnostics.
func (h *Hub) Topics() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Context done, stopping hub fan-out")
			return nil
		case d := <-h.deliveries:
			h.fanout(ctx, d)
		}
	}
}

// fanout delivers one payload to every sink currently subscribed to
// its topic. A topic without subscribers is a silent no-op. Each sink
// gets sinkTimeout at most, so one dead connection cannot stall
// deliveries to the others.
func (h *Hub) fanout(ctx context.Context, d delivery) {
	h.mu.RLock()
	sinks := make([]contract.EventSink, 0, len(h.subscribers[d.topic]))
	for _, sink := range h.subscribers[d.topic] {
		sinks = append(sinks, sink)
	}
	h.mu.RUnlock()

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, h.sinkTimeout)
		if err := sink.Consume(sinkCtx, d.payload); err != nil {
			h.log.Warn("Sink refused delivery", "topic", d.topic, "error", err)
		}
		cancel()
	}
}
