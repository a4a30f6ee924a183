// Package realtime pushes events to connected browsers over websockets.
// With Redis configured, events published on any instance reach connections
// held by every instance.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel shared by all instances
const DefaultChannel = "homechef:realtime:events"

// Frame is the JSON message written to a websocket
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// relayMessage is a Frame addressed to a user, as carried over Redis
type relayMessage struct {
	UserID uuid.UUID       `json:"user_id"`
	Frame  json.RawMessage `json:"frame"`
}

// Hub tracks open connections per user and routes frames to them
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}

	redis   redis.UniversalClient
	channel string
	logger  *zap.Logger
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithRedis relays frames through Redis pub/sub
func WithRedis(client redis.UniversalClient, channel string) HubOption {
	return func(h *Hub) {
		h.redis = client
		if channel != "" {
			h.channel = channel
		}
	}
}

// NewHub creates a hub. Call Start before publishing when Redis is used.
func NewHub(logger *zap.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		channel: DefaultChannel,
		logger:  logger.Named("realtime"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start subscribes to the Redis channel. Without Redis it does nothing.
func (h *Hub) Start(ctx context.Context) error {
	if h.redis == nil {
		return nil
	}
	sub := h.redis.Subscribe(ctx, h.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", h.channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.wg.Add(1)
	go h.relay(ctx, sub)

	h.logger.Info("Realtime relay subscribed", zap.String("channel", h.channel))
	return nil
}

func (h *Hub) relay(ctx context.Context, sub *redis.PubSub) {
	defer h.wg.Done()
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
			raw := []byte(msg.Payload)
			userID, err := uuid.Parse(gjson.GetBytes(raw, "user_id").String())
			if err != nil {
				h.logger.Warn("Dropping relay message without user", zap.Error(err))
				continue
			}
			frame := gjson.GetBytes(raw, "frame")
			if !frame.IsObject() {
				h.logger.Warn("Dropping relay message without frame", zap.String("user_id", userID.String()))
				continue
			}
			h.deliver(userID, []byte(frame.Raw))
		}
	}
}

// Stop ends the Redis relay and closes every connection
func (h *Hub) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()

	h.mu.Lock()
	all := h.clients
	h.clients = make(map[uuid.UUID]map[*Client]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			c.close()
		}
	}
}

// PublishToUser sends an event to every connection of the user on any
// instance. A user with no open connection is not an error.
func (h *Hub) PublishToUser(ctx context.Context, userID uuid.UUID, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	frame, err := json.Marshal(Frame{Type: eventType, Payload: body, SentAt: h.now().UTC()})
	if err != nil {
		return err
	}

	if h.redis == nil {
		h.deliver(userID, frame)
		return nil
	}
	msg, err := json.Marshal(relayMessage{UserID: userID, Frame: frame})
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, h.channel, msg).Err()
}

// deliver writes a frame to the local connections of a user. A connection
// whose buffer is full is dropped.
func (h *Hub) deliver(userID uuid.UUID, frame []byte) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.clients[userID] {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow realtime connection", zap.String("user_id", userID.String()))
		h.unregister(c)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if ok {
		if _, member := set[c]; !member {
			ok = false
		} else {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

// Connections returns the number of open connections of a user
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
