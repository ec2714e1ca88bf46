package database

import (
	"context"
	"log"

	"storepay/config"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

// InitRedis connects the session-scoped key-value store.
func InitRedis() {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     config.Config("REDIS_ADDR", "127.0.0.1:6379"),
		Password: config.Config("REDIS_PASS", ""),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		log.Printf("Redis connection failed, falling back to in-memory sessions: %v", err)
		RedisClient = nil
	} else {
		log.Printf("Redis connection successful")
	}
}
