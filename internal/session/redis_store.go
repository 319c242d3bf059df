package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creamloft/creamloft-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a checkout session store backed by Redis.
// Sessions expire via Redis TTL, so abandoned checkouts clean themselves up.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("checkout:%d", userID)
}

func (s *redisStore) Load(userID uint) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error("Failed to load checkout session from Redis", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var session CheckoutSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		logger.Error("Failed to decode checkout session", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &session, nil
}

func (s *redisStore) Save(userID uint, session *CheckoutSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, sessionKey(userID), data, ttl).Err(); err != nil {
		logger.Error("Failed to save checkout session to Redis", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Debug("Checkout session saved", map[string]interface{}{
		"user_id": userID,
		"ttl":     ttl.String(),
	})
	return nil
}

func (s *redisStore) Clear(userID uint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		logger.Error("Failed to clear checkout session from Redis", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
