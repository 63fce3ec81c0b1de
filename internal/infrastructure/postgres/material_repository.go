package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de insumos. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, farm_id, code, name, unit, created_at, updated_at`

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	if err := row.Scan(&m.ID, &m.FarmID, &m.Code, &m.Name, &m.Unit, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un insumo; código repetido en la finca -> domain.ErrDuplicate.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO materials (`+materialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.FarmID, m.Code, m.Name, m.Unit, m.CreatedAt, m.UpdatedAt,
	)
	return wrapErr("insert material", err)
}

// GetByID obtiene un insumo por ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get material", err)
	}
	return m, nil
}

// GetByFarmAndCode obtiene un insumo por finca y código.
func (r *MaterialRepo) GetByFarmAndCode(ctx context.Context, farmID, code string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE farm_id = $1 AND code = $2`, farmID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get material by code", err)
	}
	return m, nil
}

// ListByFarm lista insumos de la finca ordenados por código. limit <= 0 no limita.
func (r *MaterialRepo) ListByFarm(ctx context.Context, farmID string, limit, offset int) ([]*entity.Material, error) {
	var lim any // LIMIT NULL equivale a LIMIT ALL
	if limit > 0 {
		lim = limit
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+materialColumns+` FROM materials
		WHERE farm_id = $1 ORDER BY code LIMIT $2 OFFSET $3`, farmID, lim, offset)
	if err != nil {
		return nil, wrapErr("list materials", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, wrapErr("scan material", err)
		}
		list = append(list, m)
	}
	return list, wrapErr("list materials", rows.Err())
}

// IsReferenced indica si alguna línea de compra o consumo usa el insumo.
func (r *MaterialRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	var referenced bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM purchase_lines WHERE material_id = $1)
		    OR EXISTS (SELECT 1 FROM consumption_lines WHERE material_id = $1)`, id).Scan(&referenced)
	if err != nil {
		return false, wrapErr("material referenced", err)
	}
	return referenced, nil
}

// Delete elimina un insumo por ID.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	return wrapErr("delete material", err)
}
