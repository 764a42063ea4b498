package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/billiards/internal/config"
	"github.com/redis/go-redis/v9"
)

// StartIdleWorker starts a background worker that closes tables with no shots
// or viewer activity for TableIdleMinutes. With Redis the candidates come from
// the table_idle sorted set; without it the manager is scanned directly.
func StartIdleWorker(ctx context.Context, tm *TableManager, rdb *redis.Client, cfg *config.Config) {
	if tm == nil || cfg == nil || cfg.TableIdleMinutes <= 0 {
		log.Println("[IDLE] Manager or config missing; idle worker not started")
		return
	}

	poll := time.Duration(cfg.IdleWorkerPollInterval) * time.Second
	if poll <= 0 {
		poll = 30 * time.Second
	}
	idleFor := time.Duration(cfg.TableIdleMinutes) * time.Minute

	log.Printf("[IDLE] Idle worker started (idle=%s poll=%s)", idleFor, poll)
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				n := closeIdleTables(ctx, tm, rdb, time.Now().Add(-idleFor))
				if n > 0 {
					log.Printf("[IDLE] Closed %d idle table(s)", n)
				}
			}
		}
	}()
}

// closeIdleTables closes every local table idle since before cutoff and
// returns how many were closed.
func closeIdleTables(ctx context.Context, tm *TableManager, rdb *redis.Client, cutoff time.Time) int {
	var candidates []string
	if rdb != nil {
		members, err := rdb.ZRangeByScore(ctx, IdleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", cutoff.Unix())}).Result()
		if err != nil {
			log.Printf("[IDLE] Failed to fetch idle tables: %v", err)
			return 0
		}
		candidates = members
	} else {
		candidates = tm.IdleSince(cutoff)
	}

	closed := 0
	for _, token := range candidates {
		at, err := tm.GetTable(token)
		if err != nil {
			// Owned by another instance.
			continue
		}
		// The sorted set can lag behind in-memory activity.
		if at.Runner.IsMoving() || !at.Runner.LastActivity().Before(cutoff) {
			if rdb != nil {
				rdb.ZAdd(ctx, IdleSetKey, redis.Z{Score: float64(at.Runner.LastActivity().Unix()), Member: token})
			}
			continue
		}
		if rdb != nil {
			if removed, _ := rdb.ZRem(ctx, IdleSetKey, token).Result(); removed == 0 {
				continue
			}
		}
		log.Printf("[IDLE] Closing table %s due to inactivity", token)
		if err := tm.RemoveTable(token, "idle"); err == nil {
			closed++
		}
	}
	return closed
}
