package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"strconv"
	"time"
)

type IRedis interface {
	Incr(ctx context.Context, key string) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
	Close() error
}

type Options struct {
	Address  string
	Password string
	DB       int
}

type redisClient struct {
	client *redis.Client
}

func New(opts Options) (IRedis, error) {
	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", opts.Address))

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Address, err)
	}

	logrus.Info("Successfully connected to Redis")
	return &redisClient{client: client}, nil
}

func (r *redisClient) Incr(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error incrementing key %s: %v", key, err))
		return 0, err
	}
	return val, nil
}

func (r *redisClient) GetInt(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Key %s not found, treating as zero", key))
		return 0, nil
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting key %s: %v", key, err))
		return 0, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value of %s is not an integer: %w", key, err)
	}
	return n, nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
