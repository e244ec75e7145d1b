package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	"github.com/narabyte/pantalla-signage/internal/pantallad/metrics"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Players connect from kiosk devices on arbitrary origins
		return true
	},
}

// Hub tracks the control-channel connections of all players. It implements
// terminal.ControlPublisher and event.RefreshPublisher so domain services can
// nudge players without knowing about WebSockets.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]map[*connection]struct{}
	logger *slog.Logger
}

// NewHub creates an empty control hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[uuid.UUID]map[*connection]struct{}),
		logger: logger,
	}
}

// NotifyRefresh tells the players of one terminal to re-fetch early
func (h *Hub) NotifyRefresh(terminalID uuid.UUID) {
	msg := refreshMessage()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[terminalID] {
		c.enqueue(msg)
		metrics.ControlNudges.Inc()
	}
}

// NotifyScheduleChanged announces an area's agenda change. The hub does not
// track which terminal shows which area, so the nudge goes to every connected
// player; those showing an unchanged area simply re-fetch an identical payload.
func (h *Hub) NotifyScheduleChanged(areaID uuid.UUID) {
	msg := refreshMessage()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.conns {
		for c := range conns {
			c.enqueue(msg)
			metrics.ControlNudges.Inc()
		}
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.terminalID] == nil {
		h.conns[c.terminalID] = make(map[*connection]struct{})
	}
	h.conns[c.terminalID][c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.conns[c.terminalID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.conns, c.terminalID)
		}
	}
}

func refreshMessage() []byte {
	msg, _ := json.Marshal(v1alpha1.ControlMessage{
		TypeMeta:  v1alpha1.TypeMeta{Kind: "ControlMessage", APIVersion: "v1alpha1"},
		Type:      v1alpha1.ControlMessageRefresh,
		Timestamp: time.Now().UTC(),
	})
	return msg
}

// connection is a middleman between one player's websocket and the hub
type connection struct {
	terminalID uuid.UUID
	ws         *websocket.Conn
	send       chan []byte
	hub        *Hub
	logger     *slog.Logger
}

// enqueue delivers a message unless the player's buffer is full; slow
// players miss nudges rather than stalling the hub
func (c *connection) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping control message for slow player",
			"terminalId", c.terminalID,
		)
	}
}

func (c *connection) cleanup() {
	c.hub.unregister(c)
	if err := c.ws.Close(); err != nil {
		c.logger.Debug("error closing websocket connection",
			"error", err,
			"terminalId", c.terminalID,
		)
	}
}

func (c *connection) readPump() {
	defer c.cleanup()

	c.ws.SetReadLimit(maxMessageSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read error",
					"error", err,
					"terminalId", c.terminalID,
				)
			}
			return
		}

		var msg v1alpha1.ControlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn("malformed control message from player",
				"error", err,
				"terminalId", c.terminalID,
			)
			continue
		}

		if msg.Type == v1alpha1.ControlMessageStatus && msg.Status != nil {
			c.logger.Info("player status report",
				"terminalId", c.terminalID,
				"connectivity", msg.Status.Connectivity,
				"activeEventId", msg.Status.ActiveEventID,
				"clockOffsetMs", msg.Status.ClockOffsetMS,
			)
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cleanup()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeControlSocket upgrades a player connection onto the control channel
func (h *Handler) ServeControlSocket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "terminalID"))
	if err != nil {
		http.Error(w, "terminal ID must be a UUID", http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			"error", err,
			"terminalId", id,
		)
		return
	}

	c := &connection{
		terminalID: id,
		ws:         ws,
		send:       make(chan []byte, 8),
		hub:        h.hub,
		logger:     h.logger,
	}
	h.hub.register(c)

	go c.writePump()
	go c.readPump()
}
