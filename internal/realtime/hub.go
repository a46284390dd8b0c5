package realtime

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type EventType string

const (
	EventConnected      EventType = "connected"
	EventProjectUpdated EventType = "project.updated"
	EventProjectDeleted EventType = "project.deleted"
	EventMembersChanged EventType = "members.changed"
	EventTicketChanged  EventType = "ticket.changed"
	EventTicketDeleted  EventType = "ticket.deleted"
	EventCommentAdded   EventType = "comment.added"
)

type Event struct {
	Type      EventType `json:"type"`
	ProjectID ids.ID    `json:"projectId"`
	TicketID  *ids.ID   `json:"ticketId,omitempty"`
	At        time.Time `json:"at"`
}

// Hub fans project events out to the websocket clients watching that
// project. Clients are only told that something changed; they refetch.
type Hub struct {
	mu      sync.RWMutex
	clients map[ids.ID]map[*client]struct{}
	log     logrus.FieldLogger
}

// client is one connection. Only its write pump writes to conn; Publish
// hands payloads over through send and never blocks on a slow reader.
type client struct {
	conn   *websocket.Conn
	userID ids.ID
	send   chan []byte
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() { c.conn.Close() })
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[ids.ID]map[*client]struct{}),
		log:     log,
	}
}

func (h *Hub) register(projectID ids.ID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*client]struct{})
	}
	h.clients[projectID][c] = struct{}{}
}

func (h *Hub) unregister(projectID ids.ID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[projectID]; exists {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
}

// Clients reports how many connections watch projectID.
func (h *Hub) Clients(projectID ids.ID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[projectID])
}

func (h *Hub) snapshot(projectID ids.ID) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[projectID]
	targets := make([]*client, 0, len(clients))
	for c := range clients {
		targets = append(targets, c)
	}
	return targets
}

func (h *Hub) Publish(projectID ids.ID, eventType EventType, ticketID *ids.ID) {
	targets := h.snapshot(projectID)
	if len(targets) == 0 {
		return
	}

	payload, err := json.Marshal(Event{Type: eventType, ProjectID: projectID, TicketID: ticketID, At: time.Now().UTC()})
	if err != nil {
		h.log.WithError(err).Error("Failed to encode project event")
		return
	}

	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			h.log.WithField("project_id", projectID.String()).Debug("Dropping slow websocket client")
			h.unregister(projectID, c)
			c.close()
		}
	}
}

// Disconnect closes every connection userID holds on projectID. Used when
// the user loses access to the project.
func (h *Hub) Disconnect(projectID, userID ids.ID) {
	for _, c := range h.snapshot(projectID) {
		if c.userID.Equal(userID) {
			h.unregister(projectID, c)
			c.close()
		}
	}
}

func (h *Hub) writePump(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case payload := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
		}
	}
}

// Serve registers conn for userID on projectID and blocks until the client
// goes away. It owns conn and closes it on return.
func (h *Hub) Serve(projectID, userID ids.ID, conn *websocket.Conn) {
	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.log.WithError(err).Warn("Failed to set initial read deadline")
		c.close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	welcome, err := json.Marshal(Event{Type: EventConnected, ProjectID: projectID, At: time.Now().UTC()})
	if err != nil {
		c.close()
		return
	}
	c.send <- welcome

	h.register(projectID, c)

	done := make(chan struct{})
	defer func() {
		close(done)
		h.unregister(projectID, c)
		c.close()
		h.log.WithField("project_id", projectID.String()).Debug("WebSocket connection closed")
	}()

	go h.writePump(c, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).WithField("project_id", projectID.String()).Debug("WebSocket read error")
			}
			return
		}
	}
}
