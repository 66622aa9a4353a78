package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 15 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const ExpirySweepInterval = 15 * time.Minute

// Connection code parameters
const (
	CodeLength          = 6
	CodeAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxCodeDrawAttempts = 100
)

// Request body limit for the pairing endpoints
const MaxRequestBodyBytes = 16 * 1024
