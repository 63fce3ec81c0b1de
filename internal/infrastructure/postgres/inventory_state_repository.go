package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

var _ repository.InventoryStateRepository = (*InventoryStateRepo)(nil)

// InventoryStateRepo modelo de lectura (finca, insumo) sobre PostgreSQL.
type InventoryStateRepo struct {
	q Querier
}

// NewInventoryStateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryStateRepository(q Querier) *InventoryStateRepo {
	return &InventoryStateRepo{q: q}
}

const inventoryStateColumns = `farm_id, material_id, accumulated_quantity, consumed_quantity, system_quantity,
	real_quantity, real_quantity_recorded, shrinkage, average_price, stock_value, updated_at`

func scanInventoryState(row pgx.Row) (*entity.InventoryState, error) {
	var s entity.InventoryState
	err := row.Scan(&s.FarmID, &s.MaterialID, &s.AccumulatedQuantity, &s.ConsumedQuantity, &s.SystemQuantity,
		&s.RealQuantity, &s.RealQuantityRecorded, &s.Shrinkage, &s.AveragePrice, &s.StockValue, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get lee el estado actual; domain.ErrStateNotInitialized si el par aún no tiene fila.
func (r *InventoryStateRepo) Get(ctx context.Context, farmID, materialID string) (*entity.InventoryState, error) {
	s, err := scanInventoryState(r.q.QueryRow(ctx, `
		SELECT `+inventoryStateColumns+` FROM inventory_states
		WHERE farm_id = $1 AND material_id = $2`, farmID, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStateNotInitialized
		}
		return nil, wrapErr("get inventory_state", err)
	}
	return s, nil
}

// GetForUpdate toma un advisory lock de transacción por clave (cubre también la fila que aún
// no existe) y bloquea la fila con SELECT FOR UPDATE. Solo tiene efecto dentro de una tx.
func (r *InventoryStateRepo) GetForUpdate(ctx context.Context, farmID, materialID string) (*entity.InventoryState, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, farmID+":"+materialID); err != nil {
		return nil, wrapErr("lock inventory_state", err)
	}
	s, err := scanInventoryState(r.q.QueryRow(ctx, `
		SELECT `+inventoryStateColumns+` FROM inventory_states
		WHERE farm_id = $1 AND material_id = $2
		FOR UPDATE`, farmID, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStateNotInitialized
		}
		return nil, wrapErr("get inventory_state for update", err)
	}
	return s, nil
}

// Upsert escribe todos los campos derivados de una vez.
func (r *InventoryStateRepo) Upsert(ctx context.Context, s *entity.InventoryState) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_states (`+inventoryStateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (farm_id, material_id) DO UPDATE SET
			accumulated_quantity   = EXCLUDED.accumulated_quantity,
			consumed_quantity      = EXCLUDED.consumed_quantity,
			system_quantity        = EXCLUDED.system_quantity,
			real_quantity          = EXCLUDED.real_quantity,
			real_quantity_recorded = EXCLUDED.real_quantity_recorded,
			shrinkage              = EXCLUDED.shrinkage,
			average_price          = EXCLUDED.average_price,
			stock_value            = EXCLUDED.stock_value,
			updated_at             = EXCLUDED.updated_at`,
		s.FarmID, s.MaterialID, s.AccumulatedQuantity, s.ConsumedQuantity, s.SystemQuantity,
		s.RealQuantity, s.RealQuantityRecorded, s.Shrinkage, s.AveragePrice, s.StockValue, s.UpdatedAt,
	)
	return wrapErr("upsert inventory_state", err)
}

// ListByFarm estados de la finca ordenados por insumo.
func (r *InventoryStateRepo) ListByFarm(ctx context.Context, farmID string) ([]*entity.InventoryState, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+inventoryStateColumns+` FROM inventory_states
		WHERE farm_id = $1 ORDER BY material_id`, farmID)
	if err != nil {
		return nil, wrapErr("list inventory_states", err)
	}
	defer rows.Close()
	var list []*entity.InventoryState
	for rows.Next() {
		s, err := scanInventoryState(rows)
		if err != nil {
			return nil, wrapErr("scan inventory_state", err)
		}
		list = append(list, s)
	}
	return list, wrapErr("list inventory_states", rows.Err())
}
