package repository

import (
	"context"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para insumos (DIP).
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByFarmAndCode(ctx context.Context, farmID, code string) (*entity.Material, error)
	ListByFarm(ctx context.Context, farmID string, limit, offset int) ([]*entity.Material, error)
	// IsReferenced indica si alguna línea de compra o consumo usa el insumo.
	IsReferenced(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
