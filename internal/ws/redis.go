package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/billiards/internal/game"
	"github.com/redis/go-redis/v9"
)

// StartTableEventSubscriber relays table events published by other instances
// to the clients connected here.
func (h *Hub) StartTableEventSubscriber(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; table event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.TableEventChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.TableEventChannel)
		for msg := range ch {
			var ev game.TableEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			h.handleTableEvent(ev)
		}
		log.Printf("[WS] %s subscriber stopped", game.TableEventChannel)
	}()
}

// handleTableEvent applies one published event. Events from this instance
// were already delivered locally.
func (h *Hub) handleTableEvent(ev game.TableEvent) {
	if ev.Origin == h.tables.InstanceID() {
		return
	}

	switch ev.Type {
	case "close_requested":
		// Only the owning instance has the table.
		if err := h.tables.RemoveTable(ev.TableToken, ev.Reason); err == nil {
			log.Printf("[WS] closed table %s on request from %s", ev.TableToken, ev.Origin)
		}
	case "table_reset":
		if ev.Snapshot != nil && h.RoomSize(ev.TableToken) > 0 {
			h.OnReset(ev.TableToken, *ev.Snapshot)
		}
	case "table_closed":
		if h.RoomSize(ev.TableToken) > 0 {
			h.OnClosed(ev.TableToken, ev.Reason)
		}
	default:
		log.Printf("[WS] unknown event type: %s", ev.Type)
	}
}
