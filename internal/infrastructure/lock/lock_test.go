package lock_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/agro-ledger/pkg/config"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// exclusion verifica que nunca haya dos dueños simultáneos de la misma clave.
func exclusion(t *testing.T, l ledger.KeyLocker) {
	t.Helper()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "f1:m1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLocalLocker_Exclusion(t *testing.T) {
	exclusion(t, lock.NewLocalLocker())
}

func TestLocalLocker_ClavesIndependientes(t *testing.T) {
	l := lock.NewLocalLocker()
	unlockA, err := l.Lock(context.Background(), "f1:a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "f1:b")
	require.NoError(t, err, "otra clave no debe esperar")
	unlockB()
}

func TestLocalLocker_CancelacionEsReintentable(t *testing.T) {
	l := lock.NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "f1:m1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "f1:m1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockNotObtained)
	assert.True(t, domain.IsRetryable(err))

	unlock()
	unlock() // segunda llamada no-op

	again, err := l.Lock(context.Background(), "f1:m1")
	require.NoError(t, err)
	again()
}

// Requiere un Redis real: LEDGER_TEST_REDIS_ADDR=localhost:6379.
func TestRedisLocker_Exclusion(t *testing.T) {
	addr := os.Getenv("LEDGER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEDGER_TEST_REDIS_ADDR no definido")
	}
	rdb, err := lock.NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer rdb.Close()

	exclusion(t, lock.NewRedisLocker(rdb, 5*time.Second, logger.NewNop()))
}

// Requiere un Redis real: LEDGER_TEST_REDIS_ADDR=localhost:6379.
func TestRedisLocker_RenuevaMientrasSeRetiene(t *testing.T) {
	addr := os.Getenv("LEDGER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEDGER_TEST_REDIS_ADDR no definido")
	}
	rdb, err := lock.NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer rdb.Close()

	const ttl = 300 * time.Millisecond
	l := lock.NewRedisLocker(rdb, ttl, logger.NewNop())
	unlock, err := l.Lock(context.Background(), "f1:lento")
	require.NoError(t, err)

	time.Sleep(3 * ttl)

	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	defer cancel()
	_, err = l.Lock(ctx, "f1:lento")
	assert.ErrorIs(t, err, domain.ErrLockNotObtained, "el candado sigue tomado pasado el ttl")

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "f1:lento")
	require.NoError(t, err)
	again()
}
