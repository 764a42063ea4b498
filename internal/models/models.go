package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// TableSession is one physical table from creation until it is closed
type TableSession struct {
	ID          int             `db:"id" json:"id"`
	TableToken  string          `db:"table_token" json:"table_token"`
	Status      string          `db:"status" json:"status"`
	Width       float64         `db:"width" json:"width"`
	Height      float64         `db:"height" json:"height"`
	Params      json.RawMessage `db:"params" json:"params"`
	ShotCount   int             `db:"shot_count" json:"shot_count"`
	CloseReason sql.NullString  `db:"close_reason" json:"close_reason,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ClosedAt    sql.NullTime    `db:"closed_at" json:"closed_at,omitempty"`
}

// Shot is an accepted cue strike
type Shot struct {
	ID         int             `db:"id" json:"id"`
	SessionID  int             `db:"session_id" json:"session_id"`
	ShotNumber int             `db:"shot_number" json:"shot_number"`
	Angle      float64         `db:"angle" json:"angle"`
	Power      float64         `db:"power" json:"power"`
	Tick       int64           `db:"tick" json:"tick"`
	ShotData   json.RawMessage `db:"shot_data" json:"shot_data"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AdminAccount is an operator allowed to inspect and close tables
type AdminAccount struct {
	Phone       string         `db:"phone" json:"phone"`
	DisplayName sql.NullString `db:"display_name" json:"display_name,omitempty"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	AllowedIPs  pq.StringArray `db:"allowed_ips" json:"allowed_ips"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit represents one admin action
type AdminAudit struct {
	ID         int             `db:"id" json:"id"`
	AdminPhone string          `db:"admin_phone" json:"admin_phone"`
	IP         string          `db:"ip" json:"ip"`
	Route      string          `db:"route" json:"route"`
	Action     string          `db:"action" json:"action"`
	Details    json.RawMessage `db:"details" json:"details"`
	Success    bool            `db:"success" json:"success"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
