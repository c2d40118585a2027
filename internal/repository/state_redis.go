package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/chucky-1/teadiary/internal/model"
)

const stateKeyPrefix = "teadiary:state:"

// StatesRedis keeps conversation state across restarts. Every write refreshes the TTL.
type StatesRedis struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewStatesRedis(rdb goredis.Cmdable, ttl time.Duration) *StatesRedis {
	return &StatesRedis{rdb: rdb, ttl: ttl}
}

// ConnectRedis parses REDIS_URL and checks the server with a ping.
func ConnectRedis(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("repository.Redis, parse url error: %w", err)
	}
	client := goredis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("repository.Redis, ping error: %w", err)
	}
	return client, nil
}

func stateKey(userID int64) string {
	return stateKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *StatesRedis) Get(ctx context.Context, userID int64) (*model.Session, error) {
	data, err := r.rdb.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return &model.Session{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("repository.StatesRedis, get error: %w", err)
	}
	return decodeSession(data)
}

func (r *StatesRedis) Set(ctx context.Context, userID int64, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("repository.StatesRedis, marshal error: %w", err)
	}
	if err = r.rdb.Set(ctx, stateKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("repository.StatesRedis, set error: %w", err)
	}
	return nil
}

func (r *StatesRedis) Clear(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, stateKey(userID)).Err(); err != nil {
		return fmt.Errorf("repository.StatesRedis, clear error: %w", err)
	}
	return nil
}
