package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-social/internal/domain"
)

const codeKeyFormat = "verification:%s:%s"

// RedisStore implements CodeStore with one key per pair. Keys expire with the
// code, so Purge has nothing to do.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed code store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func codeKey(email string, purpose domain.Purpose) string {
	return fmt.Sprintf(codeKeyFormat, purpose, email)
}

// Latest returns the stored code of the pair.
func (s *RedisStore) Latest(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	data, err := s.client.Get(ctx, codeKey(email, purpose)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code: %w", err)
	}

	var code domain.VerificationCode
	if err := json.Unmarshal(data, &code); err != nil {
		return nil, fmt.Errorf("decode code: %w", err)
	}
	return &code, nil
}

// Replace overwrites the pair's key with code, expiring with it.
func (s *RedisStore) Replace(ctx context.Context, code *domain.VerificationCode) error {
	ttl := code.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("code for %s already expired", code.Email)
	}
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, codeKey(code.Email, code.Purpose), data, ttl).Err()
}

// DeleteAll removes the pair's key. DEL is atomic, so only one concurrent
// caller observes a count of one.
func (s *RedisStore) DeleteAll(ctx context.Context, email string, purpose domain.Purpose) (int64, error) {
	return s.client.Del(ctx, codeKey(email, purpose)).Result()
}

// Purge is a no-op; Redis expires keys natively.
func (s *RedisStore) Purge(context.Context, time.Time) (int64, error) {
	return 0, nil
}
