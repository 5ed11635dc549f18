package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/OficinaProServices/oficina-api/internal/config"
)

// New devolve nil quando o redis não está configurado; quem consome
// trata nil como "sem cache".
func New(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func GetJSON(ctx context.Context, rdb *redis.Client, key string, out any) bool {
	if rdb == nil {
		return false
	}

	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, out) == nil
}

func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) {
	if rdb == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return
	}

	// cache é best-effort; erro de escrita nunca quebra a request
	rdb.Set(ctx, key, raw, ttl)
}
