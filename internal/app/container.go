// Package app arma el grafo de dependencias a partir de la configuración.
// Lo comparten el servidor HTTP y los comandos de línea (reconcile).
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/application/usecase"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
	"github.com/jhoicas/agro-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/agro-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/agro-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/agro-ledger/pkg/config"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// Container casos de uso listos para usar. Close libera conexiones y espera la auditoría pendiente.
type Container struct {
	MaterialUC *usecase.MaterialUseCase
	Creation   *ledger.CreationUseCase
	Deletion   *ledger.DeletionUseCase
	Inventory  *ledger.InventoryUseCase
	AuditQuery *audit.QueryUseCase
	AuditLog   *audit.Logger

	pool *pgxpool.Pool
	rdb  *redis.Client
}

// Build abre el almacenamiento y el candado configurados y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{}

	var (
		tx        ledger.TxRunner
		repos     ledger.TxRepos
		auditRepo repository.AuditRepository
	)
	switch cfg.Ledger.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		tx = memory.NewTxRunner(store)
		repos = store.Repos()
		auditRepo = memory.NewAuditRepository()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.pool = pool
		if err := postgres.Migrate(ctx, pool); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrar esquema: %w", err)
		}
		tx = postgres.NewTxRunner(pool)
		repos = postgres.NewRepos(pool)
		auditRepo = postgres.NewAuditRepository(pool)
	}

	var locker ledger.KeyLocker = lock.NewLocalLocker()
	if cfg.Ledger.LockBackend == config.LockRedis {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.rdb = rdb
		locker = lock.NewRedisLocker(rdb, cfg.Ledger.LockTTL, log)
	}

	c.AuditLog = audit.NewLogger(auditRepo, audit.Config{
		Enabled:      cfg.Ledger.AuditEnabled,
		WriteTimeout: cfg.Ledger.AuditWriteTimeout,
	}, log)
	c.AuditQuery = audit.NewQueryUseCase(auditRepo, cfg.Ledger.AuditDefaultLimit, cfg.Ledger.AuditMaxLimit)

	orch := ledger.NewOrchestrator(tx, locker, log, cfg.Ledger.RecomputeConcurrency)
	c.Creation = ledger.NewCreationUseCase(tx, orch, c.AuditLog, log)
	c.Deletion = ledger.NewDeletionUseCase(tx, orch, c.AuditLog, log)
	c.Inventory = ledger.NewInventoryUseCase(repos.States, repos.Materials, orch, c.AuditLog, log)
	c.MaterialUC = usecase.NewMaterialUseCase(repos.Materials, c.AuditLog)

	log.Info().
		Str("store", cfg.Ledger.Store).
		Str("lock", cfg.Ledger.LockBackend).
		Int("recompute_concurrency", cfg.Ledger.RecomputeConcurrency).
		Msg("libro de inventario listo")
	return c, nil
}

// Close espera las escrituras de auditoría y cierra Redis y el pool.
func (c *Container) Close() {
	if c.AuditLog != nil {
		c.AuditLog.Wait()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
}
