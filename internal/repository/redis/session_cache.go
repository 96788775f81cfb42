package redis

import (
	"context"
	"fmt"
	"time"

	"tryout-service/internal/client"
	"tryout-service/internal/util"
)

const adminSessionPrefix = "session:admin:"

// SessionCache stores opaque admin session tokens with a TTL. The value is
// the admin username the token was issued to.
type SessionCache struct {
	client *client.RedisClient
}

func NewSessionCache(client *client.RedisClient) *SessionCache {
	return &SessionCache{client: client}
}

func (c *SessionCache) PutSession(token, username string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, adminSessionPrefix+token, username, ttl); err != nil {
		util.Error("Failed to store admin session",
			util.String("username", username),
			util.ErrorField(err))
		return fmt.Errorf("failed to store admin session: %w", err)
	}
	return nil
}

func (c *SessionCache) GetSession(token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := adminSessionPrefix + token
	username, err := c.client.Get(ctx, key)
	if err != nil {
		if c.client.IsNotFound(err, key) {
			return "", ErrNoRecord
		}
		return "", fmt.Errorf("failed to read admin session: %w", err)
	}
	return username, nil
}

func (c *SessionCache) DeleteSession(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, adminSessionPrefix+token); err != nil {
		return fmt.Errorf("failed to delete admin session: %w", err)
	}
	return nil
}
