package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/pkg/config"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

var _ ledger.KeyLocker = (*RedisLocker)(nil)

const (
	redisKeyPrefix = "inventoryLock:"
	retryBackoff   = 100 * time.Millisecond
)

// NewRedisClient abre el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// RedisLocker candado distribuido por clave (bsm/redislock) para despliegues con varias instancias.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisLocker ttl acota cuánto puede retener una instancia caída la clave; mientras el
// dueño siga vivo el candado se renueva cada ttl/2.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, log: log}
}

// Lock reintenta con backoff lineal hasta ttl o hasta que ctx termine.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	retries := int(l.ttl / retryBackoff)
	lk, err := l.client.Obtain(ctx, redisKeyPrefix+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryBackoff), retries),
	})
	switch {
	case errors.Is(err, redislock.ErrNotObtained):
		return nil, fmt.Errorf("lock %s: %w", key, domain.ErrLockNotObtained)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("lock %s: %w: %w", key, domain.ErrLockNotObtained, err)
	case err != nil:
		return nil, &domain.TransientError{Op: "redis lock " + key, Err: err}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go l.keepAlive(ctx, lk, key, done, stopped)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el candado en redis")
			}
		})
	}, nil
}

// keepAlive renueva el ttl cada ttl/2 mientras el candado siga tomado.
func (l *RedisLocker) keepAlive(ctx context.Context, lk *redislock.Lock, key string, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()
	ctx = context.WithoutCancel(ctx)
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, l.ttl/2)
			err := lk.Refresh(refreshCtx, l.ttl, nil)
			cancel()
			if err != nil {
				l.log.Warn().Err(err).Str("key", key).Msg("no se pudo renovar el candado en redis")
				if errors.Is(err, redislock.ErrNotObtained) {
					return
				}
			}
		}
	}
}
