package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// SetRealQuantity registra el conteo físico. La cantidad real es la única entrada manual del
// estado; se conserva en recálculos posteriores hasta el siguiente conteo.
func (uc *InventoryUseCase) SetRealQuantity(ctx context.Context, actor Actor, farmID, materialID string, count decimal.Decimal) (*entity.InventoryState, error) {
	if count.IsNegative() {
		return nil, domain.NewValidationError("real_quantity", "no puede ser negativa")
	}
	m, err := uc.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("set real quantity: %w", err)
	}
	if m == nil || m.FarmID != farmID {
		return nil, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}

	out := uc.orchestrator.ApplyPhysicalCount(ctx, farmID, materialID, count)
	if out.Err != nil {
		return nil, fmt.Errorf("set real quantity: %w", out.Err)
	}

	uc.audit.Record(ctx, audit.Entry{
		Actor:       actor,
		FarmID:      farmID,
		SourceTable: entity.AuditTableInventoryStates,
		RecordID:    farmID + ":" + materialID,
		Action:      entity.AuditActionUpdate,
		Description: "conteo físico",
		Before:      out.Previous,
		After:       out.State,
	})
	ev := uc.log.Key(farmID, materialID).Info()
	logger.Decimal(ev, "real_quantity", count)
	logger.Decimal(ev, "shrinkage", out.State.Shrinkage).Msg("conteo físico registrado")
	return out.State, nil
}
