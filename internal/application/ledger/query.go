package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// ValuationLine un insumo del informe de valorización.
type ValuationLine struct {
	Material entity.Material
	State    entity.InventoryState
}

// ValuationReport valorización del inventario de una finca.
type ValuationReport struct {
	FarmID          string
	GeneratedAt     time.Time
	Lines           []ValuationLine
	TotalStockValue decimal.Decimal
}

// ValuationPDFGenerator puerto para renderizar el informe (implementado con Maroto).
type ValuationPDFGenerator interface {
	GenerateValuationPDF(ctx context.Context, report *ValuationReport) ([]byte, error)
}

// InventoryUseCase modelo de lectura, conteo físico y reconciliación.
type InventoryUseCase struct {
	states       repository.InventoryStateRepository
	materials    repository.MaterialRepository
	orchestrator *Orchestrator
	audit        AuditRecorder
	log          *logger.Logger
	now          func() time.Time
}

// NewInventoryUseCase states y materials son repositorios fuera de transacción.
func NewInventoryUseCase(
	states repository.InventoryStateRepository,
	materials repository.MaterialRepository,
	orchestrator *Orchestrator,
	auditRec AuditRecorder,
	log *logger.Logger,
) *InventoryUseCase {
	return &InventoryUseCase{
		states:       states,
		materials:    materials,
		orchestrator: orchestrator,
		audit:        auditRec,
		log:          log.Component("inventory"),
		now:          time.Now,
	}
}

// GetState estado actual del par; domain.ErrStateNotInitialized si aún no tiene eventos.
func (uc *InventoryUseCase) GetState(ctx context.Context, farmID, materialID string) (*entity.InventoryState, error) {
	return uc.states.Get(ctx, farmID, materialID)
}

// ListStates estados de todos los insumos de la finca.
func (uc *InventoryUseCase) ListStates(ctx context.Context, farmID string) ([]*entity.InventoryState, error) {
	return uc.states.ListByFarm(ctx, farmID)
}

// Reconcile disparo manual o periódico; deja auditoría de cada estado corregido.
func (uc *InventoryUseCase) Reconcile(ctx context.Context, actor Actor, farmID string, materialIDs []string) (RecomputeReport, error) {
	if farmID == "" {
		return RecomputeReport{}, domain.NewValidationError("farm_id", "requerido")
	}
	report, err := uc.orchestrator.Reconcile(ctx, farmID, materialIDs)
	if err != nil {
		return report, err
	}
	for _, out := range report.Outcomes {
		if !out.Changed {
			continue
		}
		desc := "reconciliación"
		if out.Drift {
			desc = "reconciliación: deriva corregida"
		}
		uc.audit.Record(ctx, audit.Entry{
			Actor:       actor,
			FarmID:      farmID,
			SourceTable: entity.AuditTableInventoryStates,
			RecordID:    farmID + ":" + out.MaterialID,
			Action:      entity.AuditActionUpdate,
			Description: desc,
			Before:      out.Previous,
			After:       out.State,
		})
	}
	return report, nil
}

// ValuationReport estados de la finca con los datos del insumo y el total valorizado.
func (uc *InventoryUseCase) ValuationReport(ctx context.Context, farmID string) (*ValuationReport, error) {
	states, err := uc.states.ListByFarm(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("valuation report: %w", err)
	}
	materials, err := uc.materials.ListByFarm(ctx, farmID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("valuation report: %w", err)
	}
	byID := make(map[string]entity.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = *m
	}

	report := &ValuationReport{FarmID: farmID, GeneratedAt: uc.now().UTC(), TotalStockValue: decimal.Zero}
	for _, s := range states {
		m, ok := byID[s.MaterialID]
		if !ok {
			m = entity.Material{ID: s.MaterialID, FarmID: farmID, Name: s.MaterialID}
		}
		report.Lines = append(report.Lines, ValuationLine{Material: m, State: *s})
		report.TotalStockValue = report.TotalStockValue.Add(s.StockValue)
	}
	return report, nil
}

func isNotInitialized(err error) bool {
	return errors.Is(err, domain.ErrStateNotInitialized)
}
