package repository

import (
	"context"
	"time"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

// AuditFilter criterios de búsqueda de auditoría. Campos vacíos no filtran.
type AuditFilter struct {
	FarmID      string
	SourceTable string
	Action      string
	From        *time.Time
	To          *time.Time
	Limit       int
}

// AuditRepository puerto de persistencia de auditoría: solo agrega y consulta.
type AuditRepository interface {
	Append(ctx context.Context, record *entity.AuditRecord) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditRecord, error)
}
