package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

const sendBufferSize = 256

// Client represents a connected WebSocket client
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	id         string
	tableToken string
	canShoot   bool
	send       chan []byte
}

// Hub maintains the set of active clients, grouped by table
type Hub struct {
	tables     *game.TableManager
	clients    map[string]*Client            // client ID -> Client
	tableRooms map[string]map[string]*Client // table token -> client ID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex
}

// NewHub creates a new Hub serving tables from tm.
func NewHub(tm *game.TableManager) *Hub {
	return &Hub{
		tables:     tm,
		clients:    make(map[string]*Client),
		tableRooms: make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TableStateMessage is sent after every moving tick and on request.
type TableStateMessage struct {
	Type   string                `json:"type"`
	Table  string                `json:"table"`
	State  game.Snapshot         `json:"state"`
	Events []game.CollisionEvent `json:"events,omitempty"`
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			log.Println("[WS] Hub stopping")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.tableRooms[client.tableToken]; !exists {
				h.tableRooms[client.tableToken] = make(map[string]*Client)
			}
			h.tableRooms[client.tableToken][client.id] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s connected to table %s (shooter=%v)", client.id, client.tableToken, client.canShoot)

			if at, err := h.tables.GetTable(client.tableToken); err == nil {
				h.sendTo(client, TableStateMessage{Type: "table_state", Table: client.tableToken, State: at.Runner.Snapshot()})
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				h.removeLocked(client)
				log.Printf("[WS] Client %s disconnected from table %s", client.id, client.tableToken)
			}
			h.mu.Unlock()
		}
	}
}

// attach hands a new client to Run. It reports false once the hub stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach hands a leaving client to Run, or drops it once the hub stopped.
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// removeLocked drops client from the maps and closes its send channel.
// h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client.id)
	if room, exists := h.tableRooms[client.tableToken]; exists {
		delete(room, client.id)
		if len(room) == 0 {
			delete(h.tableRooms, client.tableToken)
		}
	}
	close(client.send)
}

// BroadcastToTable sends a message to every client watching a table
func (h *Hub) BroadcastToTable(tableToken string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.tableRooms[tableToken] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for client %s on table %s, dropping message", client.id, tableToken)
		}
	}
}

func (h *Hub) sendTo(client *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if cur, ok := h.clients[client.id]; !ok || cur != client {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Printf("[WS] sendTo dropped message for client %s (buffer full)", client.id)
	}
}

// RoomSize returns how many clients watch a table.
func (h *Hub) RoomSize(tableToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tableRooms[tableToken])
}

// OnTick implements game.Listener.
func (h *Hub) OnTick(token string, snap game.Snapshot, events []game.CollisionEvent) {
	h.BroadcastToTable(token, TableStateMessage{Type: "table_state", Table: token, State: snap, Events: events})
}

// OnRest implements game.Listener.
func (h *Hub) OnRest(token string, snap game.Snapshot) {
	h.BroadcastToTable(token, TableStateMessage{Type: "at_rest", Table: token, State: snap})
}

// OnReset implements game.LifecycleListener.
func (h *Hub) OnReset(token string, snap game.Snapshot) {
	h.BroadcastToTable(token, TableStateMessage{Type: "table_state", Table: token, State: snap})
}

// OnClosed implements game.LifecycleListener. Every client on the table is
// told why and disconnected.
func (h *Hub) OnClosed(token, reason string) {
	h.BroadcastToTable(token, map[string]interface{}{
		"type":   "table_closed",
		"table":  token,
		"reason": reason,
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.tableRooms[token] {
		h.removeLocked(client)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.hub.sendTo(c, map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
