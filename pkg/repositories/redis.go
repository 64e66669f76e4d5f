package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/redis/go-redis/v9"
)

var _ Repository = &RedisRepository{}

const (
	redisUsersKey = "landmark:users"
)

func redisLandmarksKey(userID string) string {
	return fmt.Sprintf("landmark:user:%s:landmarks", userID)
}

func redisDeathKey(userID string) string {
	return fmt.Sprintf("landmark:user:%s:death", userID)
}

// RedisRepository keeps each user's landmarks in a hash of name to position.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository connects to the redis server named by a redis:// url.
func NewRedisRepository(ctx context.Context, connStr string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %v", err)
	}

	return &RedisRepository{
		client: client,
	}, nil
}

func (r *RedisRepository) Close(ctx context.Context) error {
	return r.client.Close()
}

func (r *RedisRepository) EnsureUser(ctx context.Context, userID string) error {
	if err := r.client.SAdd(ctx, redisUsersKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to add user: %v", err)
	}
	return nil
}

func (r *RedisRepository) Add(ctx context.Context, userID string, name string, pos kinematic.Vector) (bool, error) {
	if err := store.ValidateName(name); err != nil {
		return false, err
	}

	b, err := json.Marshal(pos)
	if err != nil {
		return false, fmt.Errorf("failed to marshal position: %v", err)
	}

	var added *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, redisUsersKey, userID)
		added = pipe.HSet(ctx, redisLandmarksKey(userID), name, b)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to store landmark: %v", err)
	}

	// HSET counts only new fields
	return added.Val() == 0, nil
}

func (r *RedisRepository) Delete(ctx context.Context, userID string, name string) error {
	n, err := r.client.HDel(ctx, redisLandmarksKey(userID), name).Result()
	if err != nil {
		return fmt.Errorf("failed to delete landmark: %v", err)
	}
	if n == 0 {
		return landmarkNotFound(name)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, userID string, name string) (kinematic.Vector, error) {
	b, err := r.client.HGet(ctx, redisLandmarksKey(userID), name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return kinematic.Vector{}, landmarkNotFound(name)
		}
		return kinematic.Vector{}, fmt.Errorf("failed to get landmark: %v", err)
	}
	return decodeRedisPosition(b)
}

func (r *RedisRepository) List(ctx context.Context, userID string) ([]string, error) {
	names, err := r.client.HKeys(ctx, redisLandmarksKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list landmarks: %v", err)
	}
	if names == nil {
		names = make([]string, 0)
	}
	sort.Strings(names)
	return names, nil
}

func (r *RedisRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, redisLandmarksKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear landmarks: %v", err)
	}
	return nil
}

func (r *RedisRepository) RecordDeath(ctx context.Context, userID string, pos kinematic.Vector) error {
	b, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %v", err)
	}
	if err := r.client.Set(ctx, redisDeathKey(userID), b, 0).Err(); err != nil {
		return fmt.Errorf("failed to record death: %v", err)
	}
	return nil
}

func (r *RedisRepository) GetLastDeath(ctx context.Context, userID string) (kinematic.Vector, error) {
	b, err := r.client.Get(ctx, redisDeathKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return kinematic.Vector{}, deathNotFound(userID)
		}
		return kinematic.Vector{}, fmt.Errorf("failed to get death: %v", err)
	}
	return decodeRedisPosition(b)
}

func decodeRedisPosition(b []byte) (kinematic.Vector, error) {
	var pos kinematic.Vector
	if err := json.Unmarshal(b, &pos); err != nil {
		return kinematic.Vector{}, fmt.Errorf("failed to unmarshal position: %v", err)
	}
	return pos, nil
}
