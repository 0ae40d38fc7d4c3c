// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/todoapi/internal/platform/apperr"
	"github.com/taibuivan/todoapi/internal/platform/constants"
)

// # Failed-Login Throttling

// LoginGuard tracks failed logins per email and refuses attempts once an
// email is locked out.
type LoginGuard interface {
	// Check returns an apperr RATE_LIMITED error while email is locked out.
	Check(context context.Context, email string) error

	// RecordFailure counts one failed attempt for email.
	RecordFailure(context context.Context, email string) error

	// Reset clears the failure count after a successful login.
	Reset(context context.Context, email string) error
}

// NopLoginGuard never throttles. It is used when no Redis URL is configured.
type NopLoginGuard struct{}

func (NopLoginGuard) Check(context.Context, string) error         { return nil }
func (NopLoginGuard) RecordFailure(context.Context, string) error { return nil }
func (NopLoginGuard) Reset(context.Context, string) error         { return nil }

// RedisLoginGuard implements [LoginGuard] with an expiring counter per email.
//
// The counter's TTL starts at the first failure, so the lockout window is
// fixed rather than sliding.
type RedisLoginGuard struct {
	client      *redis.Client
	maxAttempts int
	lockout     time.Duration
}

// NewRedisLoginGuard creates a guard that locks an email for lockout after
// maxAttempts consecutive failures.
func NewRedisLoginGuard(client *redis.Client, maxAttempts int, lockout time.Duration) *RedisLoginGuard {
	return &RedisLoginGuard{client: client, maxAttempts: maxAttempts, lockout: lockout}
}

/*
Check reports whether email has exhausted its attempts.

Parameters:
  - context: context.Context
  - email: string (normalized)

Returns:
  - error: apperr.RateLimited while locked, or connectivity errors
*/
func (guard *RedisLoginGuard) Check(context context.Context, email string) error {
	key := constants.RedisPrefixLoginFailures + email

	count, err := guard.client.Get(context, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis_login_guard_check_failed: %w", err)
	}

	if count < guard.maxAttempts {
		return nil
	}

	remaining, err := guard.client.TTL(context, key).Result()
	if err != nil || remaining <= 0 {
		remaining = guard.lockout
	}
	return apperr.RateLimited(int(math.Ceil(remaining.Seconds())))
}

/*
RecordFailure increments the counter and starts its TTL on the first failure.

Parameters:
  - context: context.Context
  - email: string (normalized)

Returns:
  - error: Execution errors
*/
func (guard *RedisLoginGuard) RecordFailure(context context.Context, email string) error {
	key := constants.RedisPrefixLoginFailures + email

	count, err := guard.client.Incr(context, key).Result()
	if err != nil {
		return fmt.Errorf("redis_login_guard_incr_failed: %w", err)
	}

	if count == 1 {
		if err := guard.client.Expire(context, key, guard.lockout).Err(); err != nil {
			return fmt.Errorf("redis_login_guard_expire_failed: %w", err)
		}
	}
	return nil
}

// Reset deletes the counter for email.
func (guard *RedisLoginGuard) Reset(context context.Context, email string) error {
	key := constants.RedisPrefixLoginFailures + email

	if err := guard.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_login_guard_reset_failed: %w", err)
	}
	return nil
}
