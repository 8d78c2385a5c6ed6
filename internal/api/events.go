package api

import (
	"net/http"
	"sync"

	"sidequest/internal/model"
	"sidequest/pkg/auth"
	"sidequest/pkg/logger"

	json "github.com/goccy/go-json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const clientSendBuffer = 16

type eventClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub fans accepted progress mutations out to the owning user's
// open websocket connections. Publishing never blocks: a client that
// cannot keep up has its connection dropped.
type EventHub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*eventClient]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[uuid.UUID]map[*eventClient]struct{}),
	}
}

type eventMessage struct {
	Type    string              `json:"type"`
	Payload model.ProgressEvent `json:"payload"`
}

func (h *EventHub) PublishProgress(event model.ProgressEvent) {
	log := logger.Logger()

	data, err := json.Marshal(eventMessage{
		Type:    "progress",
		Payload: event,
	})
	if err != nil {
		log.Error("failed to marshal progress event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[event.UserID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer. Closing the send channel ends its write loop.
			go h.unregister(event.UserID, client)
		}
	}
}

func (h *EventHub) register(userID uuid.UUID, client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*eventClient]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *EventHub) unregister(userID uuid.UUID, client *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.clients[userID]; ok {
		if _, ok := set[client]; ok {
			delete(set, client)
			close(client.send)
		}
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
}

type eventRoutes struct {
	hub *EventHub
	a   *auth.SessionAuth
}

func NewEventRoutes(handler *gin.RouterGroup, hub *EventHub, a *auth.SessionAuth) {
	r := &eventRoutes{hub: hub, a: a}
	handler.GET("/events/ws", a.SessionMiddleware(), r.handleWebSocket)
}

func (r *eventRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	sessionUser, exists := auth.SessionUserFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &eventClient{
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}
	r.hub.register(sessionUser.ID, client)

	go client.writeLoop()
	go r.readLoop(sessionUser.ID, client)
}

func (cl *eventClient) writeLoop() {
	defer cl.conn.Close()

	for data := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readLoop discards inbound frames; the feed is one-way. It exists to
// observe the close handshake and unregister the client.
func (r *eventRoutes) readLoop(userID uuid.UUID, client *eventClient) {
	log := logger.Logger()

	defer r.hub.unregister(userID, client)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}
