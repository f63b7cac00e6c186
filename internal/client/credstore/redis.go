package credstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/voltmart/storefront/internal/core/domain"
)

// RedisStore shares the credential between processes through Redis, the
// server-side analog of localStorage plus its storage events: every write
// publishes the changed key on a per-namespace channel that peer processes
// watch.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedis returns a Store scoped to namespace (one namespace per device or
// client profile, so two profiles never see each other's credential).
func NewRedis(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key(KeyToken)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("credstore: read token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key(KeyToken), token, 0).Err(); err != nil {
		return fmt.Errorf("credstore: write token: %w", err)
	}
	s.publish(ctx, KeyToken)
	return nil
}

func (s *RedisStore) CachedUser(ctx context.Context) (*domain.User, error) {
	data, err := s.client.Get(ctx, s.key(KeyUser)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read cached user: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("credstore: decode cached user: %w", err)
	}
	return &user, nil
}

func (s *RedisStore) SetCachedUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		if err := s.client.Del(ctx, s.key(KeyUser)).Err(); err != nil {
			return fmt.Errorf("credstore: clear cached user: %w", err)
		}
		s.publish(ctx, KeyUser)
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("credstore: encode cached user: %w", err)
	}
	if err := s.client.Set(ctx, s.key(KeyUser), data, 0).Err(); err != nil {
		return fmt.Errorf("credstore: write cached user: %w", err)
	}
	s.publish(ctx, KeyUser)
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(KeyToken), s.key(KeyUser)).Err(); err != nil {
		return fmt.Errorf("credstore: clear: %w", err)
	}
	s.publish(ctx, KeyToken)
	s.publish(ctx, KeyUser)
	return nil
}

// Watch delivers the changed key for every write in this namespace,
// including writes made by other processes.
func (s *RedisStore) Watch(handler func(key string)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := s.client.Subscribe(ctx, s.channel())
	go func() {
		for msg := range pubsub.Channel() {
			handler(msg.Payload)
		}
	}()
	return func() {
		cancel()
		_ = pubsub.Close()
	}
}

func (s *RedisStore) publish(ctx context.Context, key string) {
	// Best effort: a missed notification costs a stale peer until its next
	// refresh, never an inconsistent write.
	_ = s.client.Publish(ctx, s.channel(), key).Err()
}

func (s *RedisStore) key(key string) string {
	return "storefront:cred:" + s.namespace + ":" + key
}

func (s *RedisStore) channel() string {
	return "storefront:" + domain.SignalCredentialChanged + ":" + s.namespace
}
