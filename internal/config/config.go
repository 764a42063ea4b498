package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Table geometry
	TableX           float64
	TableY           float64
	TableWidth       float64
	TableHeight      float64
	PocketRadius     float64
	PocketMouthInset float64

	// Physics tuning
	TickRateHz          int
	FrictionFactor      float64
	SnapThreshold       float64
	ImpulseScale        float64
	MaxShotPower        float64
	CaptureBallFraction float64

	// Table lifecycle
	MaxTables              int
	TableIdleMinutes       int
	IdleWorkerPollInterval int // seconds
	SnapshotTTLMinutes     int

	// Security
	JWTSecret          string
	TableTokenTTLHours int
	AdminTokenHeader   string
	AdminPhoneHeader   string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/billiards?sslmode=disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Table geometry
		TableX:           getEnvFloat("TABLE_X", 28),
		TableY:           getEnvFloat("TABLE_Y", 28),
		TableWidth:       getEnvFloat("TABLE_WIDTH", 880),
		TableHeight:      getEnvFloat("TABLE_HEIGHT", 440),
		PocketRadius:     getEnvFloat("POCKET_RADIUS", 26),
		PocketMouthInset: getEnvFloat("POCKET_MOUTH_INSET", 0),

		// Physics tuning
		TickRateHz:          getEnvInt("TICK_RATE_HZ", 60),
		FrictionFactor:      getEnvFloat("FRICTION_FACTOR", 0.992),
		SnapThreshold:       getEnvFloat("SNAP_THRESHOLD", 0.01),
		ImpulseScale:        getEnvFloat("IMPULSE_SCALE", 0.32),
		MaxShotPower:        getEnvFloat("MAX_SHOT_POWER", 36),
		CaptureBallFraction: getEnvFloat("CAPTURE_BALL_FRACTION", 0.4),

		// Table lifecycle
		MaxTables:              getEnvInt("MAX_TABLES", 100),
		TableIdleMinutes:       getEnvInt("TABLE_IDLE_MINUTES", 30),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_INTERVAL", 30),
		SnapshotTTLMinutes:     getEnvInt("SNAPSHOT_TTL_MINUTES", 60),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		TableTokenTTLHours: getEnvInt("TABLE_TOKEN_TTL_HOURS", 12),
		AdminTokenHeader:   getEnv("ADMIN_TOKEN_HEADER", "X-Admin-Token"),
		AdminPhoneHeader:   getEnv("ADMIN_PHONE_HEADER", "X-Admin-Phone"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
