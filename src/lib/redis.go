package lib

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient(redisHost string) *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// RateCounter counts hits for a key inside a fixed window.
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisRateCounter struct {
	rdb *redis.Client
}

func NewRedisRateCounter(rdb *redis.Client) *RedisRateCounter {
	return &RedisRateCounter{rdb: rdb}
}

func (r *RedisRateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.rdb.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("[redis] Error setting expiry on %s: %s\n", key, err.Error())
		}
	}
	return count, nil
}
