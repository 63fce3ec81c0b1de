package repository

import (
	"context"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

// InventoryStateRepository puerto del modelo de lectura derivado (una fila por finca+insumo).
// Get y GetForUpdate devuelven domain.ErrStateNotInitialized cuando la fila no existe y
// *domain.TransientError ante fallas reintentables; los llamadores ramifican con errors.Is.
type InventoryStateRepository interface {
	Get(ctx context.Context, farmID, materialID string) (*entity.InventoryState, error)
	// GetForUpdate bloquea la clave hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, farmID, materialID string) (*entity.InventoryState, error)
	Upsert(ctx context.Context, state *entity.InventoryState) error
	ListByFarm(ctx context.Context, farmID string) ([]*entity.InventoryState, error)
}
