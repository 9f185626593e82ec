package repository

import (
	"context"
	"log"

	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/repository/redis_repository"
	"github.com/redis/go-redis/v9"
)

// Key prefixes shared by every replica.
const (
	UploadLockPrefix = "opticqa:lock:upload:"
	PruneLockPrefix  = "opticqa:lock:prune:"
	EmbeddingPrefix  = "opticqa:"
)

// Redis bundles the redis-backed helpers. Every field is nil when redis is not
// configured; callers fall back to in-process behaviour.
type Redis struct {
	Client     *redis.Client
	UploadLock *redis_repository.Locker
	PruneLock  *redis_repository.Locker
	Cache      *redis_repository.EmbeddingCache
}

// NewRedis connects when cfg is enabled and returns an empty bundle otherwise.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	if !cfg.Enabled() {
		log.Printf("redis not configured; locks are process-local and the embedding cache is off")
		return &Redis{}, nil
	}
	var (
		c   *redis.Client
		err error
	)
	if cfg.URL != "" {
		c, err = redis_repository.ConnURL(ctx, cfg.URL, cfg.Timeout)
	} else {
		c, err = redis_repository.Conn(ctx, cfg.Host, cfg.Port, cfg.Password, cfg.DB, cfg.Timeout)
	}
	if err != nil {
		return nil, err
	}
	return &Redis{
		Client:     c,
		UploadLock: redis_repository.NewLocker(c, UploadLockPrefix),
		PruneLock:  redis_repository.NewLocker(c, PruneLockPrefix),
		Cache:      redis_repository.NewEmbeddingCache(c, EmbeddingPrefix),
	}, nil
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
