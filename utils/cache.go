// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"campusbook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (slot availability and friends).
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for verified-token caching.
	AuthCacheClient *redis.Client
	// EventBusClient carries the appointment change-notification channel.
	EventBusClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitAuthCache initializes the Redis client for auth-token caching.
func InitAuthCache() {
	AuthCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := AuthCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Auth Cache): %v", err)
	}
}

// GetAuthCacheClient returns the Redis client for auth-token caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// InitEventBus initializes the Redis client used for pub/sub change events.
func InitEventBus() {
	EventBusClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventBusDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := EventBusClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Event Bus): %v", err)
	}
}

// GetEventBusClient returns the Redis client for pub/sub change events.
func GetEventBusClient() *redis.Client {
	if EventBusClient == nil {
		InitEventBus()
	}
	return EventBusClient
}
