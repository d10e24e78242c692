package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/view"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel is the Redis channel instances use to forward view changes
// for app sessions they do not hold a socket for.
const ClusterChannel = "cluster_events"

const (
	viewKeyPrefix = "app_session:view:"
	viewKeyTTL    = time.Hour
	redisTimeout  = 2 * time.Second
)

type clusterMessage struct {
	TargetSessionID string          `json:"target_session_id"`
	Origin          string          `json:"origin"`
	Message         json.RawMessage `json:"message,omitempty"`
	Closed          bool            `json:"closed,omitempty"`
}

type registration struct {
	client *Client
	hello  func() []byte
}

func viewKey(sessionID string) string {
	return viewKeyPrefix + sessionID
}

type Hub struct {
	// app session id -> connected sockets
	clients map[string]map[*Client]struct{}

	register   chan registration
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb    *redis.Client
	origin string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan registration),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

// Run serves register/unregister requests until ctx is cancelled, then
// closes every remaining socket's send channel.
func (h *Hub) Run(ctx context.Context) {
	var wg sync.WaitGroup
	if h.rdb != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.subscribeToRedis(ctx)
		}()
	}
	defer func() {
		close(h.done)
		h.mu.Lock()
		for id, set := range h.clients {
			for c := range set {
				close(c.Send)
			}
			delete(h.clients, id)
		}
		h.mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case reg := <-h.register:
			client := reg.client
			h.mu.Lock()
			set, ok := h.clients[client.SessionID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.SessionID] = set
			}
			set[client] = struct{}{}
			// the first frame is read under the lock so no push can be queued ahead of it
			if reg.hello != nil {
				if msg := reg.hello(); msg != nil {
					client.Send <- msg
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"app_session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.SessionID]; ok {
				if _, present := set[client]; present {
					delete(set, client)
					close(client.Send)
				}
				if len(set) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"app_session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register attaches c to its app session. hello, when non-nil, produces the
// first frame c receives; it runs after c is attached and returns nil to send
// nothing. Register returns false when the hub has stopped.
func (h *Hub) Register(c *Client, hello func() []byte) bool {
	select {
	case h.register <- registration{client: c, hello: hello}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Connected reports how many sockets are attached to an app session.
func (h *Hub) Connected(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// ViewMessage is the frame pushed to a socket whenever its app session
// changes view.
func ViewMessage(v view.View) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "view",
		"data": map[string]string{"view": string(v)},
	})
	return data
}

// Track records the view of an app session this instance owns, so sockets
// attached on other instances can start from it.
func (h *Hub) Track(sessionID string, v view.View) {
	if h.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := h.rdb.Set(ctx, viewKey(sessionID), string(v), viewKeyTTL).Err(); err != nil {
		h.logger.Warn("Hub", "Redis view store failed", map[string]interface{}{"app_session_id": sessionID, "error": err.Error()})
	}
}

// RemoteView returns the last view another instance tracked for sessionID.
func (h *Hub) RemoteView(ctx context.Context, sessionID string) (view.View, bool) {
	if h.rdb == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	raw, err := h.rdb.Get(ctx, viewKey(sessionID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("Hub", "Redis view lookup failed", map[string]interface{}{"app_session_id": sessionID, "error": err.Error()})
		}
		return "", false
	}
	v, err := view.Parse(raw)
	if err != nil {
		return "", false
	}
	return v, true
}

// PushView delivers to local sockets, then records the view and forwards the
// frame to other instances over Redis.
func (h *Hub) PushView(sessionID string, v view.View) {
	data := ViewMessage(v)
	h.deliverLocal(sessionID, data)

	if h.rdb != nil {
		h.Track(sessionID, v)
		h.publish(clusterMessage{TargetSessionID: sessionID, Origin: h.origin, Message: data})
	}
}

// Forget closes every socket attached to sessionID on any instance.
func (h *Hub) Forget(sessionID string) {
	h.closeLocal(sessionID)

	if h.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		if err := h.rdb.Del(ctx, viewKey(sessionID)).Err(); err != nil {
			h.logger.Warn("Hub", "Redis view delete failed", map[string]interface{}{"app_session_id": sessionID, "error": err.Error()})
		}
		h.publish(clusterMessage{TargetSessionID: sessionID, Origin: h.origin, Closed: true})
	}
}

func (h *Hub) publish(msg clusterMessage) {
	payload, _ := json.Marshal(msg)
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := h.rdb.Publish(ctx, ClusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) closeLocal(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[sessionID]
	if !ok {
		return
	}
	for c := range set {
		close(c.Send)
	}
	delete(h.clients, sessionID)
	h.logger.Info("Hub", "App session sockets closed", map[string]interface{}{"app_session_id": sessionID, "count": len(set)})
}

func (h *Hub) deliverLocal(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[sessionID] {
		select {
		case c.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"app_session_id": sessionID})
			go h.Unregister(c)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			h.logger.Error("Hub", "Redis subscribe failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.origin {
				continue
			}
			if payload.Closed {
				h.closeLocal(payload.TargetSessionID)
				continue
			}
			h.deliverLocal(payload.TargetSessionID, payload.Message)
		}
	}
}
