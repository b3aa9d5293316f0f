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
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Outbound call timeouts
const (
	IdentityProviderTimeout = 5 * time.Second
	StorageTimeout          = 10 * time.Second
)

// Background job intervals
const SessionCleanupInterval = 1 * time.Hour

// Guest device session cookie lifetime
const DeviceSessionMaxAge = 7 * 24 * time.Hour

// Guest join throttling (per IP, sliding window)
const (
	JoinRateLimitPerWindow = 10
	JoinRateLimitWindow    = 1 * time.Minute
)
