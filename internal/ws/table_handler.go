package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/game"
)

// TakeShotData is the payload of a take_shot message. Either angle or an
// aim point is given.
type TakeShotData struct {
	Angle *float64 `json:"angle,omitempty"`
	AimX  *float64 `json:"aim_x,omitempty"`
	AimY  *float64 `json:"aim_y,omitempty"`
	Power float64  `json:"power"`
}

// ShotParams converts the payload into a game shot request.
func (d TakeShotData) ShotParams() (game.ShotParams, error) {
	shot := game.ShotParams{Power: d.Power}
	switch {
	case d.AimX != nil && d.AimY != nil:
		aim := game.NewVec2(*d.AimX, *d.AimY)
		shot.Aim = &aim
	case d.Angle != nil:
		shot.Angle = *d.Angle
	default:
		return shot, errors.New("angle or aim_x/aim_y required")
	}
	return shot, nil
}

type AimData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ServeTable upgrades the request and attaches the client to a table. Only
// clients with canShoot may shoot or reset; the rest are viewers.
func (h *Hub) ServeTable(c *gin.Context, tableToken string, canShoot bool) {
	if _, err := h.tables.GetTable(tableToken); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}
	id, err := auth.GenerateToken(6)
	if err != nil {
		log.Printf("[WS] Failed to create client id: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:        h,
		conn:       conn,
		id:         "c_" + id,
		tableToken: tableToken,
		canShoot:   canShoot,
		send:       make(chan []byte, sendBufferSize),
	}

	if !h.attach(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump reads messages from the table socket.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.hub.handleMessage(c, msg)
	}
}

// handleMessage processes one inbound table message.
func (h *Hub) handleMessage(c *Client, msg WSMessage) {
	at, err := h.tables.GetTable(c.tableToken)
	if err != nil {
		c.sendError("Table not found")
		return
	}

	switch msg.Type {
	case "take_shot":
		if !c.canShoot {
			c.sendError("Viewers cannot shoot")
			return
		}
		var data TakeShotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid shot data")
			return
		}
		h.handleTakeShot(c, data)

	case "aim":
		var data AimData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid aim data")
			return
		}
		h.tables.Touch(c.tableToken)
		h.sendTo(c, map[string]interface{}{
			"type":  "aim_guide",
			"table": c.tableToken,
			"guide": at.Runner.AimGuide(game.NewVec2(data.X, data.Y)),
		})

	case "get_state":
		h.sendTo(c, TableStateMessage{Type: "table_state", Table: c.tableToken, State: at.Runner.Snapshot()})

	case "reset":
		if !c.canShoot {
			c.sendError("Viewers cannot reset the table")
			return
		}
		// The manager notifies the hub, which broadcasts the new rack.
		if _, err := h.tables.Reset(c.tableToken); err != nil {
			c.sendError(err.Error())
		}

	default:
		c.sendError("Unknown message type")
	}
}

func (h *Hub) handleTakeShot(c *Client, data TakeShotData) {
	shot, err := data.ShotParams()
	if err != nil {
		c.sendError(err.Error())
		return
	}

	rec, err := h.tables.Shoot(c.tableToken, shot)
	if err != nil {
		h.sendTo(c, map[string]interface{}{
			"type":   "shot_rejected",
			"table":  c.tableToken,
			"reason": err.Error(),
		})
		return
	}

	h.BroadcastToTable(c.tableToken, map[string]interface{}{
		"type": "shot_taken",
		"shot": rec,
	})
}
