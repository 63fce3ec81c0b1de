package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo auditoría append-only sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Normalmente con el pool: la auditoría
// no participa en la transacción de negocio.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Append agrega un registro. Nunca actualiza.
func (r *AuditRepo) Append(ctx context.Context, rec *entity.AuditRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_records (id, user_id, farm_id, source_table, record_id, action, description,
			data_before, data_new, "timestamp", ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.UserID, nullIfEmpty(rec.FarmID), rec.SourceTable, rec.RecordID, rec.Action,
		nullIfEmpty(rec.Description), jsonOrNil(rec.DataBefore), jsonOrNil(rec.DataNew), rec.Timestamp,
		nullIfEmpty(rec.IPAddress), nullIfEmpty(rec.UserAgent),
	)
	return wrapErr("insert audit_record", err)
}

// List aplica el filtro; el límite ya viene acotado por el caso de uso.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditRecord, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.FarmID != "" {
		add("farm_id = $%d", f.FarmID)
	}
	if f.SourceTable != "" {
		add("source_table = $%d", f.SourceTable)
	}
	if f.Action != "" {
		add("action = $%d", f.Action)
	}
	if f.From != nil {
		add(`"timestamp" >= $%d`, *f.From)
	}
	if f.To != nil {
		add(`"timestamp" <= $%d`, *f.To)
	}

	query := `SELECT id, user_id, COALESCE(farm_id, ''), source_table, record_id, action, COALESCE(description, ''),
		data_before, data_new, "timestamp", COALESCE(ip_address, ''), COALESCE(user_agent, '')
		FROM audit_records`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(` ORDER BY "timestamp" DESC, id LIMIT $%d`, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list audit_records", err)
	}
	defer rows.Close()
	var list []*entity.AuditRecord
	for rows.Next() {
		var (
			rec           entity.AuditRecord
			before, after []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FarmID, &rec.SourceTable, &rec.RecordID, &rec.Action,
			&rec.Description, &before, &after, &rec.Timestamp, &rec.IPAddress, &rec.UserAgent); err != nil {
			return nil, wrapErr("scan audit_record", err)
		}
		rec.DataBefore, rec.DataNew = before, after
		list = append(list, &rec)
	}
	return list, wrapErr("list audit_records", rows.Err())
}

func jsonOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
