package repository

import (
	"context"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

// PurchaseRepository puerto del almacén de eventos para compras (cabecera + líneas).
type PurchaseRepository interface {
	// Create persiste cabecera y líneas; usar dentro de una transacción para atomicidad.
	Create(ctx context.Context, purchase *entity.Purchase) error
	// GetByID devuelve la compra con sus líneas, o nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	ListByFarm(ctx context.Context, farmID string) ([]*entity.Purchase, error)
	ListLinesByMaterial(ctx context.Context, farmID, materialID string) ([]entity.PurchaseLine, error)
	// DeleteLine elimina una línea; false si ya no existía (no-op).
	DeleteLine(ctx context.Context, lineID string) (bool, error)
	// DeleteHeader elimina la cabecera (y en cascada las líneas restantes); false si no existía.
	DeleteHeader(ctx context.Context, id string) (bool, error)
}
