package audit

import (
	"context"
	"time"

	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

// Filter criterios de búsqueda expuestos a los colaboradores.
type Filter struct {
	FarmID      string
	SourceTable string
	Action      string
	From        *time.Time
	To          *time.Time
	Limit       int
}

// QueryUseCase consulta de auditoría con tope de resultados.
type QueryUseCase struct {
	repo         repository.AuditRepository
	defaultLimit int
	maxLimit     int
}

// NewQueryUseCase defaultLimit se usa si el filtro no trae límite; maxLimit acota cualquier pedido.
func NewQueryUseCase(repo repository.AuditRepository, defaultLimit, maxLimit int) *QueryUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &QueryUseCase{repo: repo, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Search devuelve los registros más recientes primero.
func (uc *QueryUseCase) Search(ctx context.Context, f Filter) ([]*entity.AuditRecord, error) {
	if f.Action != "" && !entity.IsValidAuditAction(f.Action) {
		return nil, domain.NewValidationError("action", "acción desconocida")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, domain.NewValidationError("from", "debe ser anterior a to")
	}
	limit := f.Limit
	switch {
	case limit <= 0:
		limit = uc.defaultLimit
	case limit > uc.maxLimit:
		limit = uc.maxLimit
	}
	return uc.repo.List(ctx, repository.AuditFilter{
		FarmID:      f.FarmID,
		SourceTable: f.SourceTable,
		Action:      f.Action,
		From:        f.From,
		To:          f.To,
		Limit:       limit,
	})
}
