package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
)

const latestSessionKeyPrefix = "dossier:audit:latest_session:"

// DefaultCacheTTL bounds how long a latest-session entry is trusted.
const DefaultCacheTTL = 5 * time.Minute

// RedisCache keeps each actor's latest session in Redis so attribution skips
// the store lookup on hot paths.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache; a non-positive ttl selects DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, actorID id.ActorID) (*audit.ActorSession, error) {
	raw, err := c.client.Get(ctx, latestSessionKeyPrefix+actorID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest session: %w", err)
	}
	var session audit.ActorSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode latest session: %w", err)
	}
	return &session, nil
}

// Set overwrites the entry only with a session at least as recent as the
// cached one.
func (c *RedisCache) Set(ctx context.Context, session *audit.ActorSession) error {
	if current, err := c.Get(ctx, session.ActorID); err == nil && current.Timestamp.After(session.Timestamp) {
		return nil
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode latest session: %w", err)
	}
	return c.client.Set(ctx, latestSessionKeyPrefix+session.ActorID.String(), raw, c.ttl).Err()
}
