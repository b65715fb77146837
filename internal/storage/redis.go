package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// updatesChannel carries cart change fan-out between storefront instances
// sharing the same Redis. The payload is "<instance id> <session id>"; the
// instance id lets a listener drop its own announcements, which it already
// delivered locally.
const updatesChannel = "levelup.cart.updated"

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client, instanceID: uuid.NewString()}
}

// RedisKV stores values durably, with no TTL. Cart and token keys survive
// service restarts.
type RedisKV struct {
	client     *redis.Client
	instanceID string
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// PublishUpdate announces a cart change to other instances.
func (r *RedisKV) PublishUpdate(ctx context.Context, sessionID string) error {
	payload := r.instanceID + " " + sessionID
	if err := r.client.Publish(ctx, updatesChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// ListenUpdates invokes fn with the session id of every cart change announced
// by other instances. This instance's own announcements are skipped. It
// blocks until ctx is done.
func (r *RedisKV) ListenUpdates(ctx context.Context, fn func(sessionID string)) error {
	sub := r.client.Subscribe(ctx, updatesChannel)
	defer sub.Close()

	// Force the subscription before consuming so callers can rely on
	// messages published after ListenUpdates returns control.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe failed: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			origin, sessionID, ok := strings.Cut(msg.Payload, " ")
			if !ok || origin == r.instanceID {
				continue
			}
			fn(sessionID)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ping verifies the connection, with a short deadline of its own.
func (r *RedisKV) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}
