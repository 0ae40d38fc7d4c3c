// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the optional Redis instance behind login throttling.

Only short-lived counters live here (failed logins per email, each with its
own TTL), so the pool is kept small and the client never retries a command on
its own: a throttle lookup that fails is skipped by the caller rather than
delayed.

Redis is optional. When REDIS_URL is empty the server runs without throttling
and this package is never touched.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client settings sized for a handful of INCR/EXPIRE calls per login.
const (
	poolSize     = 8
	minIdleConns = 1
	dialTimeout  = 3 * time.Second
	ioTimeout    = 1 * time.Second
	pingTimeout  = 2 * time.Second
)

// NewClient parses redisURL (redis:// or rediss://), applies the client
// settings and pings once before returning.
//
// # Parameters
//   - context: Bounds the initial ping.
//   - redisURL: Redis connection URL, including any password and DB number.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_parse_url: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.MaxRetries = -1
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis client connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)

	return client, nil
}

// Ping issues PING with its own short deadline. Used at startup and by /ready.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping: %w", err)
	}
	return nil
}
