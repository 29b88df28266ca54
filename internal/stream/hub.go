package stream

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans live workout snapshots out to websocket subscribers. When a redis
// client is configured, snapshots are also relayed across instances via
// pub/sub, so a viewer can follow a session tracked elsewhere.
type Hub struct {
	id    string
	redis *redis.Client

	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

// envelope wraps a relayed payload with the publishing hub's id so the relay
// can drop the echo of its own publishes.
type envelope struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

// Subscriber is one websocket viewer of a session's live feed. Delivery is
// lossy: a slow consumer misses snapshots instead of stalling the hub.
type Subscriber struct {
	SessionID string
	Feed      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		id:    uuid.NewString(),
		redis: redisClient,
		subs:  map[string]map[*Subscriber]struct{}{},
	}
	if redisClient != nil {
		go h.relayRedis()
	}
	return h
}

func (h *Hub) Subscribe(sessionID string) *Subscriber {
	sub := &Subscriber{
		SessionID: sessionID,
		Feed:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = map[*Subscriber]struct{}{}
	}
	h.subs[sessionID][sub] = struct{}{}
	return sub
}

func (h *Hub) Drop(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionSubs, ok := h.subs[sub.SessionID]; ok {
		delete(sessionSubs, sub)
		if len(sessionSubs) == 0 {
			delete(h.subs, sub.SessionID)
		}
	}
	close(sub.Feed)
}

// Publish delivers a payload to local subscribers of a session and, when
// redis is configured, to subscribers on other instances. Relayed messages
// carry this hub's id; the relay drops them so local viewers see each
// snapshot exactly once.
func (h *Hub) Publish(sessionID string, payload []byte) {
	h.deliver(sessionID, payload)

	if h.redis != nil {
		msg, err := json.Marshal(envelope{Origin: h.id, Payload: payload})
		if err != nil {
			log.Printf("relay encode error: %v", err)
			return
		}
		if err := h.redis.Publish(context.Background(), liveChannel(sessionID), msg).Err(); err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

// PublishJSON marshals v and publishes it as the session's live payload.
func (h *Hub) PublishJSON(sessionID string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("snapshot marshal error: %v", err)
		return
	}
	h.Publish(sessionID, payload)
}

// deliver holds the read lock across the sends so a concurrent Drop cannot
// close a feed mid-send; the sends never block.
func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[sessionID] {
		select {
		case sub.Feed <- payload:
		default:
		}
	}
}

func (h *Hub) relayRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "workout:*:live")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		sessionID := sessionFromChannel(msg.Channel)
		if sessionID == "" {
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("relay decode error: %v", err)
			continue
		}
		if env.Origin == h.id {
			// Our own publish; local subscribers already have it.
			continue
		}
		h.deliver(sessionID, env.Payload)
	}
}

func liveChannel(sessionID string) string {
	return "workout:" + sessionID + ":live"
}

func sessionFromChannel(ch string) string {
	// workout:{session}:live
	rest, ok := strings.CutPrefix(ch, "workout:")
	if !ok {
		return ""
	}
	session, ok := strings.CutSuffix(rest, ":live")
	if !ok {
		return ""
	}
	return session
}
