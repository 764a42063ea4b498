package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTooManyTables = errors.New("table limit reached")
)

// Redis keys and channels shared with the ws layer and the idle worker.
const (
	IdleSetKey        = "table_idle"
	TableEventChannel = "table_events"
)

func stateKey(token string) string {
	return "table:" + token + ":state"
}

// TableEvent is a lifecycle notification published on TableEventChannel.
type TableEvent struct {
	Type       string    `json:"type"`
	Origin     string    `json:"origin"`
	TableToken string    `json:"table_token"`
	Reason     string    `json:"reason,omitempty"`
	Snapshot   *Snapshot `json:"snapshot,omitempty"`
	At         time.Time `json:"at"`
}

// LifecycleListener is implemented by listeners that also want to hear about
// tables being re-racked or closed on this instance.
type LifecycleListener interface {
	OnReset(token string, snap Snapshot)
	OnClosed(token, reason string)
}

// ActiveTable is a running table owned by the manager.
type ActiveTable struct {
	Token     string
	SessionID int
	CreatedAt time.Time
	Runner    *Runner
}

// TableInfo is the listing view of a table.
type TableInfo struct {
	Token          string    `json:"token"`
	SessionID      int       `json:"session_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivity   time.Time `json:"last_activity"`
	Moving         bool      `json:"moving"`
	Shots          int       `json:"shots"`
	RemainingBalls int       `json:"remaining_balls"`
}

// TableManager owns every table on this instance. Persistence to Postgres and
// Redis is best-effort and skipped when the client is nil.
type TableManager struct {
	tables     map[string]*ActiveTable
	instanceID string
	table      *Table
	params     Params
	listener   Listener
	ctx        context.Context
	rdb        *redis.Client
	db         *sqlx.DB
	config     *config.Config
	mu         sync.RWMutex
}

// ParamsFromConfig reads the physics tuning knobs.
func ParamsFromConfig(cfg *config.Config) Params {
	p := DefaultParams()
	if cfg == nil {
		return p
	}
	p.FrictionFactor = cfg.FrictionFactor
	p.SnapThreshold = cfg.SnapThreshold
	p.ImpulseScale = cfg.ImpulseScale
	p.MaxPower = cfg.MaxShotPower
	p.CaptureBallFraction = cfg.CaptureBallFraction
	return p
}

// TableFromConfig builds the table geometry every new table uses.
func TableFromConfig(cfg *config.Config) (*Table, error) {
	if cfg == nil {
		return NewStandardTable(), nil
	}
	return NewTable(cfg.TableX, cfg.TableY, cfg.TableWidth, cfg.TableHeight, cfg.PocketRadius, cfg.PocketMouthInset)
}

// NewTableManager validates the configured geometry and physics and returns
// an empty manager. Runners started by the manager stop when ctx is done.
func NewTableManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) (*TableManager, error) {
	t, err := TableFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("table config: %w", err)
	}
	p := ParamsFromConfig(cfg)
	// Racking once up front catches a table too small for the rack.
	if _, err := NewSimulation(t, p); err != nil {
		return nil, fmt.Errorf("physics config: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	instanceID, err := auth.GenerateToken(8)
	if err != nil {
		return nil, err
	}
	return &TableManager{
		tables:     make(map[string]*ActiveTable),
		instanceID: instanceID,
		table:      t,
		params:     p,
		ctx:        ctx,
		rdb:        rdb,
		db:         db,
		config:     cfg,
	}, nil
}

// SetListener registers where tick and rest notifications go.
func (tm *TableManager) SetListener(l Listener) {
	tm.mu.Lock()
	tm.listener = l
	tm.mu.Unlock()
}

// InstanceID identifies this process in published table events.
func (tm *TableManager) InstanceID() string {
	return tm.instanceID
}

func (tm *TableManager) lifecycleListener() LifecycleListener {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	ll, _ := tm.listener.(LifecycleListener)
	return ll
}

func (tm *TableManager) tickRate() int {
	if tm.config == nil {
		return DefaultTickRate
	}
	return tm.config.TickRateHz
}

// CreateTable racks a new table and starts its runner.
func (tm *TableManager) CreateTable() (*ActiveTable, error) {
	tm.mu.Lock()
	if tm.config != nil && tm.config.MaxTables > 0 && len(tm.tables) >= tm.config.MaxTables {
		tm.mu.Unlock()
		return nil, ErrTooManyTables
	}

	// Each simulation gets its own copy of the table.
	t := *tm.table
	t.pockets = t.buildPockets()
	sim, err := NewSimulation(&t, tm.params)
	if err != nil {
		tm.mu.Unlock()
		return nil, err
	}

	token, err := auth.GenerateToken(16)
	if err != nil {
		tm.mu.Unlock()
		return nil, err
	}
	at := &ActiveTable{
		Token:     token,
		CreatedAt: time.Now(),
	}
	at.Runner = NewRunner(token, sim, tm.tickRate(), tm)
	tm.tables[token] = at
	tm.mu.Unlock()

	at.SessionID = tm.insertSession(at)
	at.Runner.Start(tm.ctx)
	tm.markActive(token, at.CreatedAt)
	tm.cacheSnapshot(token, sim.Snapshot())

	log.Printf("[TABLE] Table created: %s (session=%d)", token, at.SessionID)
	return at, nil
}

// GetTable returns the running table for token.
func (tm *TableManager) GetTable(token string) (*ActiveTable, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	at, ok := tm.tables[token]
	if !ok {
		return nil, ErrTableNotFound
	}
	return at, nil
}

// ListTables returns every table on this instance, oldest first.
func (tm *TableManager) ListTables() []TableInfo {
	tm.mu.RLock()
	tables := make([]*ActiveTable, 0, len(tm.tables))
	for _, at := range tm.tables {
		tables = append(tables, at)
	}
	tm.mu.RUnlock()

	infos := make([]TableInfo, 0, len(tables))
	for _, at := range tables {
		snap := at.Runner.Snapshot()
		infos = append(infos, TableInfo{
			Token:          at.Token,
			SessionID:      at.SessionID,
			CreatedAt:      at.CreatedAt,
			LastActivity:   at.Runner.LastActivity(),
			Moving:         snap.Moving,
			Shots:          snap.Shots,
			RemainingBalls: snap.RemainingBalls,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.Before(infos[j].CreatedAt) })
	return infos
}

// ActiveTableCount returns how many tables are running.
func (tm *TableManager) ActiveTableCount() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.tables)
}

// Shoot applies a shot to the table and records it.
func (tm *TableManager) Shoot(token string, shot ShotParams) (ShotRecord, error) {
	at, err := tm.GetTable(token)
	if err != nil {
		return ShotRecord{}, err
	}
	rec, err := at.Runner.Apply(shot)
	if err != nil {
		return ShotRecord{}, err
	}
	tm.markActive(token, time.Now())
	tm.recordShot(at.SessionID, rec, shot)
	return rec, nil
}

// Reset re-racks a table that is at rest.
func (tm *TableManager) Reset(token string) (Snapshot, error) {
	at, err := tm.GetTable(token)
	if err != nil {
		return Snapshot{}, err
	}
	if err := at.Runner.Reset(); err != nil {
		return Snapshot{}, err
	}
	snap := at.Runner.Snapshot()
	tm.markActive(token, time.Now())
	tm.cacheSnapshot(token, snap)
	tm.publish(TableEvent{Type: "table_reset", TableToken: token, Snapshot: &snap, At: time.Now()})
	if ll := tm.lifecycleListener(); ll != nil {
		ll.OnReset(token, snap)
	}
	return snap, nil
}

// Touch records viewer activity on a table.
func (tm *TableManager) Touch(token string) {
	at, err := tm.GetTable(token)
	if err != nil {
		return
	}
	at.Runner.Touch()
	tm.markActive(token, time.Now())
}

// RemoveTable stops the runner and closes the session.
func (tm *TableManager) RemoveTable(token, reason string) error {
	tm.mu.Lock()
	at, ok := tm.tables[token]
	if ok {
		delete(tm.tables, token)
	}
	tm.mu.Unlock()

	if !ok {
		return ErrTableNotFound
	}

	at.Runner.Stop()
	snap := at.Runner.Snapshot()
	tm.closeSession(at.SessionID, snap.Shots, reason)

	if tm.rdb != nil {
		ctx := context.Background()
		tm.rdb.Del(ctx, stateKey(token))
		tm.rdb.ZRem(ctx, IdleSetKey, token)
	}
	tm.publish(TableEvent{Type: "table_closed", TableToken: token, Reason: reason, At: time.Now()})
	if ll := tm.lifecycleListener(); ll != nil {
		ll.OnClosed(token, reason)
	}

	log.Printf("[TABLE] Table closed: %s reason=%s shots=%d", token, reason, snap.Shots)
	return nil
}

// RequestClose closes a local table, or asks the owning instance to close it
// when the table is only known through the Redis snapshot cache.
func (tm *TableManager) RequestClose(ctx context.Context, token, reason string) error {
	err := tm.RemoveTable(token, reason)
	if !errors.Is(err, ErrTableNotFound) || tm.rdb == nil {
		return err
	}
	n, rerr := tm.rdb.Exists(ctx, stateKey(token)).Result()
	if rerr != nil {
		return fmt.Errorf("failed to look up table: %w", rerr)
	}
	if n == 0 {
		return ErrTableNotFound
	}
	tm.publish(TableEvent{Type: "close_requested", TableToken: token, Reason: reason, At: time.Now()})
	return nil
}

// IdleSince returns the tokens of tables at rest with no activity after cutoff.
func (tm *TableManager) IdleSince(cutoff time.Time) []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	var tokens []string
	for token, at := range tm.tables {
		if at.Runner.IsMoving() {
			continue
		}
		if at.Runner.LastActivity().Before(cutoff) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Shutdown closes every table.
func (tm *TableManager) Shutdown() {
	tm.mu.RLock()
	tokens := make([]string, 0, len(tm.tables))
	for token := range tm.tables {
		tokens = append(tokens, token)
	}
	tm.mu.RUnlock()

	for _, token := range tokens {
		tm.RemoveTable(token, "shutdown")
	}
}

// OnTick forwards moving-tick notifications to the registered listener.
func (tm *TableManager) OnTick(token string, snap Snapshot, events []CollisionEvent) {
	tm.mu.RLock()
	l := tm.listener
	tm.mu.RUnlock()
	if l != nil {
		l.OnTick(token, snap, events)
	}
}

// OnRest caches the resting snapshot and forwards the notification.
func (tm *TableManager) OnRest(token string, snap Snapshot) {
	tm.cacheSnapshot(token, snap)
	tm.markActive(token, time.Now())

	tm.mu.RLock()
	l := tm.listener
	tm.mu.RUnlock()
	if l != nil {
		l.OnRest(token, snap)
	}
}

// CachedSnapshot loads the last resting snapshot from Redis. It lets another
// instance answer state queries for a table it does not run.
func (tm *TableManager) CachedSnapshot(ctx context.Context, token string) (*Snapshot, error) {
	if tm.rdb == nil {
		return nil, ErrTableNotFound
	}
	data, err := tm.rdb.Get(ctx, stateKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// ListShots returns the recorded shot history for a table.
func (tm *TableManager) ListShots(token string) ([]models.Shot, error) {
	if tm.db == nil {
		return []models.Shot{}, nil
	}

	var sessionID int
	if at, err := tm.GetTable(token); err == nil && at.SessionID > 0 {
		sessionID = at.SessionID
	} else if err := tm.db.Get(&sessionID, `SELECT id FROM table_sessions WHERE table_token=$1`, token); err != nil {
		return nil, ErrTableNotFound
	}

	shots := []models.Shot{}
	err := tm.db.Select(&shots, `SELECT id, session_id, shot_number, angle, power, tick, shot_data, created_at FROM shots WHERE session_id=$1 ORDER BY shot_number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shots: %w", err)
	}
	return shots, nil
}

func (tm *TableManager) snapshotTTL() time.Duration {
	if tm.config == nil || tm.config.SnapshotTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(tm.config.SnapshotTTLMinutes) * time.Minute
}

func (tm *TableManager) cacheSnapshot(token string, snap Snapshot) {
	if tm.rdb == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal snapshot for %s: %v", token, err)
		return
	}
	if err := tm.rdb.SetEx(context.Background(), stateKey(token), data, tm.snapshotTTL()).Err(); err != nil {
		log.Printf("[REDIS] Failed to cache snapshot for %s: %v", token, err)
	}
}

func (tm *TableManager) markActive(token string, at time.Time) {
	if tm.rdb == nil {
		return
	}
	err := tm.rdb.ZAdd(context.Background(), IdleSetKey, redis.Z{Score: float64(at.Unix()), Member: token}).Err()
	if err != nil {
		log.Printf("[REDIS] Failed to mark table %s active: %v", token, err)
	}
}

func (tm *TableManager) publish(ev TableEvent) {
	if tm.rdb == nil {
		return
	}
	ev.Origin = tm.instanceID
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := tm.rdb.Publish(context.Background(), TableEventChannel, b).Err(); err != nil {
		log.Printf("[REDIS] publish %s failed: table=%s err=%v", ev.Type, ev.TableToken, err)
	}
}

func (tm *TableManager) insertSession(at *ActiveTable) int {
	if tm.db == nil {
		return 0
	}
	params, _ := json.Marshal(tm.params)
	var sessionID int
	err := tm.db.QueryRowx(
		`INSERT INTO table_sessions (table_token, status, width, height, params, created_at) VALUES ($1, 'open', $2, $3, $4::jsonb, $5) RETURNING id`,
		at.Token, tm.table.Width, tm.table.Height, string(params), at.CreatedAt,
	).Scan(&sessionID)
	if err != nil {
		log.Printf("[DB] Failed to create table_session for %s: %v", at.Token, err)
		return 0
	}
	return sessionID
}

func (tm *TableManager) closeSession(sessionID, shots int, reason string) {
	if tm.db == nil || sessionID == 0 {
		return
	}
	_, err := tm.db.Exec(
		`UPDATE table_sessions SET status='closed', closed_at=NOW(), close_reason=$1, shot_count=$2 WHERE id=$3`,
		reason, shots, sessionID,
	)
	if err != nil {
		log.Printf("[DB] Failed to close table_session %d: %v", sessionID, err)
	}
}

func (tm *TableManager) recordShot(sessionID int, rec ShotRecord, shot ShotParams) {
	if tm.db == nil || sessionID == 0 {
		return
	}
	shotData, err := json.Marshal(shot)
	if err != nil {
		log.Printf("[DB] Failed to marshal shot params for session %d: %v", sessionID, err)
		return
	}
	_, err = tm.db.Exec(
		`INSERT INTO shots (session_id, shot_number, angle, power, tick, shot_data, created_at)
		 SELECT $1, COALESCE(MAX(shot_number), 0) + 1, $2, $3, $4, $5::jsonb, NOW() FROM shots WHERE session_id = $1`,
		sessionID, rec.Angle, rec.Power, int64(rec.Tick), string(shotData),
	)
	if err != nil {
		log.Printf("[DB] Failed to record shot for session %d: %v", sessionID, err)
	}
}
