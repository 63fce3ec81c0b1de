package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo compras y sus líneas sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseLineColumns = `id, farm_id, material_id, purchase_id, quantity_purchased, unit_price, created_at`

// Create inserta cabecera y líneas. Llamar dentro de TxRunner para que sea atómico.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchases (id, farm_id, supplier_id, reference, purchase_date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.FarmID, p.SupplierID, p.Reference, p.PurchaseDate, p.CreatedAt, p.CreatedBy,
	)
	if err != nil {
		return wrapErr("insert purchase", err)
	}
	for _, l := range p.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_lines (`+purchaseLineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, l.FarmID, l.MaterialID, l.PurchaseID, l.QuantityPurchased, l.UnitPrice, l.CreatedAt,
		)
		if err != nil {
			return wrapErr("insert purchase line", err)
		}
	}
	return nil
}

// GetByID obtiene la compra con sus líneas.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	var p entity.Purchase
	err := r.q.QueryRow(ctx, `
		SELECT id, farm_id, supplier_id, reference, purchase_date, created_at, created_by
		FROM purchases WHERE id = $1`, id).Scan(
		&p.ID, &p.FarmID, &p.SupplierID, &p.Reference, &p.PurchaseDate, &p.CreatedAt, &p.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get purchase", err)
	}
	lines, err := r.queryLines(ctx, `SELECT `+purchaseLineColumns+` FROM purchase_lines
		WHERE purchase_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	p.Lines = lines
	return &p, nil
}

// ListByFarm lista las compras de la finca con sus líneas (orden de creación).
func (r *PurchaseRepo) ListByFarm(ctx context.Context, farmID string) ([]*entity.Purchase, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, farm_id, supplier_id, reference, purchase_date, created_at, created_by
		FROM purchases WHERE farm_id = $1 ORDER BY created_at, id`, farmID)
	if err != nil {
		return nil, wrapErr("list purchases", err)
	}
	var list []*entity.Purchase
	byID := make(map[string]*entity.Purchase)
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(&p.ID, &p.FarmID, &p.SupplierID, &p.Reference, &p.PurchaseDate, &p.CreatedAt, &p.CreatedBy); err != nil {
			rows.Close()
			return nil, wrapErr("scan purchase", err)
		}
		list = append(list, &p)
		byID[p.ID] = &p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list purchases", err)
	}

	lines, err := r.queryLines(ctx, `SELECT `+purchaseLineColumns+` FROM purchase_lines
		WHERE farm_id = $1 ORDER BY created_at, id`, farmID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if p, ok := byID[l.PurchaseID]; ok {
			p.Lines = append(p.Lines, l)
		}
	}
	return list, nil
}

// ListLinesByMaterial todas las líneas de compra del par (finca, insumo).
func (r *PurchaseRepo) ListLinesByMaterial(ctx context.Context, farmID, materialID string) ([]entity.PurchaseLine, error) {
	return r.queryLines(ctx, `SELECT `+purchaseLineColumns+` FROM purchase_lines
		WHERE farm_id = $1 AND material_id = $2 ORDER BY created_at, id`, farmID, materialID)
}

// DeleteLine elimina una línea; false si ya no existía.
func (r *PurchaseRepo) DeleteLine(ctx context.Context, lineID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_lines WHERE id = $1`, lineID)
	if err != nil {
		return false, wrapErr("delete purchase line", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteHeader elimina la cabecera; las líneas restantes caen por ON DELETE CASCADE.
func (r *PurchaseRepo) DeleteHeader(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete purchase", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PurchaseRepo) queryLines(ctx context.Context, query string, args ...any) ([]entity.PurchaseLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list purchase lines", err)
	}
	defer rows.Close()
	var lines []entity.PurchaseLine
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.FarmID, &l.MaterialID, &l.PurchaseID, &l.QuantityPurchased, &l.UnitPrice, &l.CreatedAt); err != nil {
			return nil, wrapErr("scan purchase line", err)
		}
		lines = append(lines, l)
	}
	return lines, wrapErr("list purchase lines", rows.Err())
}
