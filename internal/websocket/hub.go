package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"intellius-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries deliveries between instances sharing one Redis.
const ClusterChannel = "cluster_events"

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

type Hub struct {
	// UserID -> connected clients (one per device/tab)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex

	// Optional. Without it delivery stays local to this instance.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register blocks until the hub accepts the client. It reports false once the hub
// has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
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

// remove detaches c and closes its Send channel. Only the call that finds c in the
// map closes the channel, so repeated removals are harmless.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.UserID]
	for i, existing := range clients {
		if existing != c {
			continue
		}
		h.clients[c.UserID] = append(clients[:i:i], clients[i+1:]...)
		close(c.Send)
		break
	}
	if len(h.clients[c.UserID]) == 0 {
		delete(h.clients, c.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": c.UserID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

// ConnectedClients returns how many sockets the user has on this instance.
func (h *Hub) ConnectedClients(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser delivers data to every local socket of userID and republishes it
// so other instances can reach the user's remaining devices.
func (h *Hub) SendToUser(userID uuid.UUID, data []byte) {
	h.deliverLocal(userID, data)

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(clusterMessage{
		Origin:       h.instanceID,
		TargetUserID: userID.String(),
		Message:      data,
	})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to publish cluster event", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": userID})
		h.remove(client)
	}
}

func decodeClusterMessage(raw string) (clusterMessage, uuid.UUID, error) {
	var msg clusterMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return msg, uuid.Nil, err
	}
	uid, err := uuid.Parse(msg.TargetUserID)
	return msg, uid, err
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			cm, uid, err := decodeClusterMessage(msg.Payload)
			if err != nil {
				h.logger.Warn("Hub", "Dropping malformed cluster event", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Our own publish; local sockets already have it.
			if cm.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(uid, cm.Message)
		}
	}
}
