package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "fitbot:cache:"

// RedisCache кэш в Redis, устаревание через TTL ключей
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(ctx context.Context, addr, password string, ttl time.Duration) (*RedisCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get возвращает запись, ошибки Redis считаются промахом
func (c *RedisCache) Get(ctx context.Context, kind, prompt string) (string, bool) {
	val, err := c.client.Get(ctx, redisPrefix+Key(kind, prompt)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Ошибка чтения из Redis: %v", err)
		}
		return "", false
	}
	return val, true
}

// Set сохраняет запись с TTL
func (c *RedisCache) Set(ctx context.Context, kind, prompt, response string) error {
	return c.client.Set(ctx, redisPrefix+Key(kind, prompt), response, c.ttl).Err()
}

// ClearOld ничего не делает: Redis сам удаляет ключи по TTL
func (c *RedisCache) ClearOld(context.Context) (int, error) {
	return 0, nil
}

// Close закрывает соединение
func (c *RedisCache) Close() error {
	return c.client.Close()
}
