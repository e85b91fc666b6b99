package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mjeopardy"

func roomKey(gameID string) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, gameID)
}

// Redis is a Registry backed by a redis SET per room, for deployments
// where room membership must survive a restart or span instances.
type Redis struct {
	client *redis.Client
}

func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{client: client}, nil
}

// NewRedisWithClient wraps an existing client. Used by tests.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

var _ Registry = (*Redis)(nil)

func (r *Redis) Join(ctx context.Context, gameID, connectionID string) error {
	return r.client.SAdd(ctx, roomKey(gameID), connectionID).Err()
}

func (r *Redis) Leave(ctx context.Context, gameID, connectionID string) error {
	return r.client.SRem(ctx, roomKey(gameID), connectionID).Err()
}

func (r *Redis) Members(ctx context.Context, gameID string) ([]string, error) {
	members, err := r.client.SMembers(ctx, roomKey(gameID)).Result()
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *Redis) Count(ctx context.Context, gameID string) (int, error) {
	count, err := r.client.SCard(ctx, roomKey(gameID)).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
