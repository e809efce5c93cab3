package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

/* Redis implementation of update.Deduplicator
 * One key per update_id, written with SET NX and a TTL,
 * so every instance behind the webhook shares the same view
 */

const keyPrefix = "ragbot:update" // Key naming: ragbot:update:{update_id}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects to Redis and checks the connection
func NewStore(addr, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Store{
		client: client,
		ttl:    ttl,
	}, nil
}

// Seen records updateID and reports whether another delivery already recorded it
func (s *Store) Seen(ctx context.Context, updateID int64) (bool, error) {
	created, err := s.client.SetNX(ctx, key(updateID), time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("recording update %d: %w", updateID, err)
	}
	return !created, nil
}

// Forget deletes the key of updateID so the next delivery is treated as new
func (s *Store) Forget(ctx context.Context, updateID int64) error {
	if err := s.client.Del(ctx, key(updateID)).Err(); err != nil {
		return fmt.Errorf("forgetting update %d: %w", updateID, err)
	}
	return nil
}

// Count returns how many update IDs are currently remembered
func (s *Store) Count(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+":*", 500).Result()
		if err != nil {
			return 0, fmt.Errorf("scanning update keys: %w", err)
		}
		total += int64(len(keys))
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// Ping checks that Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *Store) Client() *redis.Client {
	return s.client
}

func key(updateID int64) string {
	return keyPrefix + ":" + strconv.FormatInt(updateID, 10)
}
