package repository

import (
	"context"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

// BatchRepository puerto del almacén de eventos para lotes de fabricación y su consumo.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	ListByFarm(ctx context.Context, farmID string) ([]*entity.Batch, error)
	ListLinesByMaterial(ctx context.Context, farmID, materialID string) ([]entity.ConsumptionLine, error)
	DeleteLine(ctx context.Context, lineID string) (bool, error)
	DeleteHeader(ctx context.Context, id string) (bool, error)
}
