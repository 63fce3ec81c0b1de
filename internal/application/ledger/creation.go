package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// PurchaseLineInput una línea de compra tal como llega del colaborador.
type PurchaseLineInput struct {
	MaterialID string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// CreatePurchaseInput entrada para registrar una compra.
type CreatePurchaseInput struct {
	FarmID       string
	SupplierID   string
	Reference    string
	PurchaseDate time.Time
	Lines        []PurchaseLineInput
}

// ConsumptionLineInput consumo de un insumo en un lote.
type ConsumptionLineInput struct {
	MaterialID string
	Quantity   decimal.Decimal
}

// CreateBatchInput entrada para registrar un lote de fabricación.
type CreateBatchInput struct {
	FarmID     string
	FormulaID  string
	Code       string
	ProducedAt time.Time
	Lines      []ConsumptionLineInput
}

// PurchaseResult compra creada y estados recalculados.
type PurchaseResult struct {
	Purchase  *entity.Purchase
	Recompute RecomputeReport
}

// BatchResult lote creado y estados recalculados.
type BatchResult struct {
	Batch     *entity.Batch
	Recompute RecomputeReport
}

// CreationUseCase registra compras y lotes: valida, persiste cabecera y líneas en una
// transacción y recalcula los insumos tocados.
type CreationUseCase struct {
	tx           TxRunner
	orchestrator *Orchestrator
	audit        AuditRecorder
	log          *logger.Logger
	now          func() time.Time
}

// NewCreationUseCase construye el caso de uso.
func NewCreationUseCase(tx TxRunner, orchestrator *Orchestrator, auditRec AuditRecorder, log *logger.Logger) *CreationUseCase {
	return &CreationUseCase{tx: tx, orchestrator: orchestrator, audit: auditRec, log: log.Component("creation"), now: time.Now}
}

// RecordPurchase valida antes de persistir cualquier evento.
func (uc *CreationUseCase) RecordPurchase(ctx context.Context, actor Actor, in CreatePurchaseInput) (*PurchaseResult, error) {
	if strings.TrimSpace(in.FarmID) == "" {
		return nil, domain.NewValidationError("farm_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "se requiere al menos una línea")
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.MaterialID) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].material_id", i), "requerido")
		}
		if !l.Quantity.IsPositive() {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if !l.UnitPrice.IsPositive() {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].unit_price", i), "debe ser mayor que cero")
		}
	}

	now := uc.now().UTC()
	p := &entity.Purchase{
		ID:           uuid.New().String(),
		FarmID:       in.FarmID,
		SupplierID:   in.SupplierID,
		Reference:    in.Reference,
		PurchaseDate: in.PurchaseDate,
		CreatedAt:    now,
		CreatedBy:    actor.UserID,
	}
	if p.PurchaseDate.IsZero() {
		p.PurchaseDate = now
	}
	for _, l := range in.Lines {
		p.Lines = append(p.Lines, entity.PurchaseLine{
			ID:                uuid.New().String(),
			FarmID:            in.FarmID,
			MaterialID:        l.MaterialID,
			PurchaseID:        p.ID,
			QuantityPurchased: l.Quantity,
			UnitPrice:         l.UnitPrice,
			CreatedAt:         now,
		})
	}

	err := uc.tx.Run(ctx, func(repos TxRepos) error {
		if err := ensureMaterials(ctx, repos, in.FarmID, p.MaterialIDs()); err != nil {
			return err
		}
		return repos.Purchases.Create(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	report := uc.orchestrator.RecomputeAffected(ctx, in.FarmID, p.MaterialIDs())
	uc.audit.Record(ctx, audit.Entry{
		Actor:       actor,
		FarmID:      in.FarmID,
		SourceTable: entity.AuditTablePurchases,
		RecordID:    p.ID,
		Action:      entity.AuditActionCreate,
		After:       map[string]any{"purchase": p, "inventory_states": report.States()},
	})
	uc.log.Farm(in.FarmID).Info().Str("purchase_id", p.ID).Int("lines", len(p.Lines)).Msg("compra registrada")

	result := &PurchaseResult{Purchase: p, Recompute: report}
	if err := report.Err(); err != nil {
		return result, fmt.Errorf("recompute after purchase %s: %w", p.ID, err)
	}
	return result, nil
}

// RecordBatch registra el consumo de un lote; no valida stock disponible (el sobreconsumo se permite).
func (uc *CreationUseCase) RecordBatch(ctx context.Context, actor Actor, in CreateBatchInput) (*BatchResult, error) {
	if strings.TrimSpace(in.FarmID) == "" {
		return nil, domain.NewValidationError("farm_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "se requiere al menos una línea")
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.MaterialID) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].material_id", i), "requerido")
		}
		if !l.Quantity.IsPositive() {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
	}

	now := uc.now().UTC()
	b := &entity.Batch{
		ID:         uuid.New().String(),
		FarmID:     in.FarmID,
		FormulaID:  in.FormulaID,
		Code:       in.Code,
		ProducedAt: in.ProducedAt,
		CreatedAt:  now,
		CreatedBy:  actor.UserID,
	}
	if b.ProducedAt.IsZero() {
		b.ProducedAt = now
	}
	for _, l := range in.Lines {
		b.Lines = append(b.Lines, entity.ConsumptionLine{
			ID:           uuid.New().String(),
			FarmID:       in.FarmID,
			MaterialID:   l.MaterialID,
			BatchID:      b.ID,
			QuantityUsed: l.Quantity,
			CreatedAt:    now,
		})
	}

	err := uc.tx.Run(ctx, func(repos TxRepos) error {
		if err := ensureMaterials(ctx, repos, in.FarmID, b.MaterialIDs()); err != nil {
			return err
		}
		return repos.Batches.Create(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("record batch: %w", err)
	}

	report := uc.orchestrator.RecomputeAffected(ctx, in.FarmID, b.MaterialIDs())
	uc.audit.Record(ctx, audit.Entry{
		Actor:       actor,
		FarmID:      in.FarmID,
		SourceTable: entity.AuditTableBatches,
		RecordID:    b.ID,
		Action:      entity.AuditActionCreate,
		After:       map[string]any{"batch": b, "inventory_states": report.States()},
	})
	uc.log.Farm(in.FarmID).Info().Str("batch_id", b.ID).Int("lines", len(b.Lines)).Msg("lote registrado")

	result := &BatchResult{Batch: b, Recompute: report}
	if err := report.Err(); err != nil {
		return result, fmt.Errorf("recompute after batch %s: %w", b.ID, err)
	}
	return result, nil
}

// ensureMaterials cada insumo debe existir y pertenecer a la finca.
func ensureMaterials(ctx context.Context, repos TxRepos, farmID string, materialIDs []string) error {
	for _, id := range materialIDs {
		m, err := repos.Materials.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil || m.FarmID != farmID {
			return fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}
