package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// ArenaQueueID is the upstream queue filter for Arena matches.
	ArenaQueueID   = "1700"
	MatchPageSize  = 20
	ProxyRoutePath = "/api/riot"
)

const (
	RedisKeyPrefix = "arena-god:"
)

const (
	// SyncTimeout bounds a full sync: one account lookup, one match list
	// lookup and up to MatchPageSize detail fetches.
	SyncTimeout = 2 * time.Minute
)
