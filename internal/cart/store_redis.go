package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userCartKeyPrefix    = "cart:user:"
	sessionCartKeyPrefix = "cart:session:"
)

// RedisStore keeps carts in redis with a TTL so abandoned guest carts
// clean themselves up. Used as the guest-cart store when redis is
// configured.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) FindByUser(ctx context.Context, userID int64) (*Cart, error) {
	return s.get(ctx, userCartKeyPrefix+strconv.FormatInt(userID, 10))
}

func (s *RedisStore) FindBySession(ctx context.Context, sessionID string) (*Cart, error) {
	return s.get(ctx, sessionCartKeyPrefix+sessionID)
}

func (s *RedisStore) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return s.client.Set(ctx, s.keyFor(c), data, s.ttl).Err()
}

func (s *RedisStore) DeleteByUser(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, userCartKeyPrefix+strconv.FormatInt(userID, 10)).Err()
}

func (s *RedisStore) get(ctx context.Context, key string) (*Cart, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) keyFor(c *Cart) string {
	if c.UserID != 0 {
		return userCartKeyPrefix + strconv.FormatInt(c.UserID, 10)
	}
	return sessionCartKeyPrefix + c.SessionID
}
