package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes de fabricación y líneas de consumo sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const consumptionLineColumns = `id, farm_id, material_id, batch_id, quantity_used, created_at`

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO batches (id, farm_id, formula_id, code, produced_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.FarmID, b.FormulaID, b.Code, b.ProducedAt, b.CreatedAt, b.CreatedBy,
	)
	if err != nil {
		return wrapErr("insert batch", err)
	}
	for _, l := range b.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO consumption_lines (`+consumptionLineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.FarmID, l.MaterialID, l.BatchID, l.QuantityUsed, l.CreatedAt,
		)
		if err != nil {
			return wrapErr("insert consumption line", err)
		}
	}
	return nil
}

func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	var b entity.Batch
	err := r.q.QueryRow(ctx, `
		SELECT id, farm_id, formula_id, code, produced_at, created_at, created_by
		FROM batches WHERE id = $1`, id).Scan(
		&b.ID, &b.FarmID, &b.FormulaID, &b.Code, &b.ProducedAt, &b.CreatedAt, &b.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get batch", err)
	}
	lines, err := r.queryLines(ctx, `SELECT `+consumptionLineColumns+` FROM consumption_lines
		WHERE batch_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	b.Lines = lines
	return &b, nil
}

func (r *BatchRepo) ListByFarm(ctx context.Context, farmID string) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, farm_id, formula_id, code, produced_at, created_at, created_by
		FROM batches WHERE farm_id = $1 ORDER BY created_at, id`, farmID)
	if err != nil {
		return nil, wrapErr("list batches", err)
	}
	var list []*entity.Batch
	byID := make(map[string]*entity.Batch)
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(&b.ID, &b.FarmID, &b.FormulaID, &b.Code, &b.ProducedAt, &b.CreatedAt, &b.CreatedBy); err != nil {
			rows.Close()
			return nil, wrapErr("scan batch", err)
		}
		list = append(list, &b)
		byID[b.ID] = &b
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list batches", err)
	}

	lines, err := r.queryLines(ctx, `SELECT `+consumptionLineColumns+` FROM consumption_lines
		WHERE farm_id = $1 ORDER BY created_at, id`, farmID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if b, ok := byID[l.BatchID]; ok {
			b.Lines = append(b.Lines, l)
		}
	}
	return list, nil
}

func (r *BatchRepo) ListLinesByMaterial(ctx context.Context, farmID, materialID string) ([]entity.ConsumptionLine, error) {
	return r.queryLines(ctx, `SELECT `+consumptionLineColumns+` FROM consumption_lines
		WHERE farm_id = $1 AND material_id = $2 ORDER BY created_at, id`, farmID, materialID)
}

func (r *BatchRepo) DeleteLine(ctx context.Context, lineID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM consumption_lines WHERE id = $1`, lineID)
	if err != nil {
		return false, wrapErr("delete consumption line", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BatchRepo) DeleteHeader(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete batch", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BatchRepo) queryLines(ctx context.Context, query string, args ...any) ([]entity.ConsumptionLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list consumption lines", err)
	}
	defer rows.Close()
	var lines []entity.ConsumptionLine
	for rows.Next() {
		var l entity.ConsumptionLine
		if err := rows.Scan(&l.ID, &l.FarmID, &l.MaterialID, &l.BatchID, &l.QuantityUsed, &l.CreatedAt); err != nil {
			return nil, wrapErr("scan consumption line", err)
		}
		lines = append(lines, l)
	}
	return lines, wrapErr("list consumption lines", rows.Err())
}
