package config

import "github.com/redis/go-redis/v9"

// ConnectToRedis opens the client backing the pending-challenge store.
func ConnectToRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
