package ledger

import (
	"context"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Materials repository.MaterialRepository
	Purchases repository.PurchaseRepository
	Batches   repository.BatchRepository
	States    repository.InventoryStateRepository
}

// TxRunner ejecuta fn dentro de una transacción; Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// KeyLocker serializa el ciclo leer-calcular-escribir por clave finca:insumo.
// unlock debe llamarse siempre tras un Lock exitoso.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// AuditRecorder registra operaciones sin devolver error al llamador.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Actor quién ejecuta la operación (viene del token y de la petición HTTP).
type Actor = audit.Actor
