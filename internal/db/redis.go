package db

import (
	"context"
	"log"
	"time"

	"backend-socialbox/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client for cfg.RedisAddr, or nil when redis is not
// configured or does not answer a ping. Without redis, score streaming stays
// within this process.
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable at %s, streaming locally: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return nil
	}
	return client
}
