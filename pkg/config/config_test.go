package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-ledger/pkg/config"
)

func TestLoad_BackendInvalido(t *testing.T) {
	t.Setenv("LEDGER_STORE", "mongo")
	cfg, err := config.Load()
	require.Error(t, err, "un backend desconocido debe rechazarse")
	assert.Nil(t, cfg)

	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("LEDGER_LOCK_BACKEND", "etcd")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestLoad_LedgerDesdeEntorno(t *testing.T) {
	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("LEDGER_LOCK_BACKEND", "redis")
	t.Setenv("LEDGER_AUDIT_ENABLED", "false")
	t.Setenv("LEDGER_AUDIT_WRITE_TIMEOUT_SECONDS", "2")
	t.Setenv("LEDGER_RECOMPUTE_CONCURRENCY", "0")
	t.Setenv("LEDGER_AUDIT_DEFAULT_LIMIT", "50")
	t.Setenv("LEDGER_AUDIT_MAX_LIMIT", "10")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.Ledger.Store)
	assert.Equal(t, config.LockRedis, cfg.Ledger.LockBackend)
	assert.False(t, cfg.Ledger.AuditEnabled)
	assert.Equal(t, 2*time.Second, cfg.Ledger.AuditWriteTimeout)
	assert.Equal(t, 1, cfg.Ledger.RecomputeConcurrency, "la concurrencia mínima es 1")
	assert.Equal(t, 50, cfg.Ledger.AuditDefaultLimit)
	assert.Equal(t, 50, cfg.Ledger.AuditMaxLimit, "el máximo nunca es menor que el límite por defecto")
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "agro", Password: "p@ss:w/rd", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://agro:p%40ss%3Aw%2Frd@db:5432/ledger?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
