// Package ledger orquesta el libro de inventario: recálculo por clave, creación y
// eliminación de eventos, conteo físico y consultas del modelo de lectura.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/inventory"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// MaterialOutcome resultado del recálculo de una clave (finca, insumo).
type MaterialOutcome struct {
	MaterialID string
	// Previous estado almacenado antes del recálculo; nil si no existía.
	Previous *entity.InventoryState
	State    *entity.InventoryState
	// Changed false cuando las cifras coinciden y no se escribió nada.
	Changed bool
	// Drift la cantidad del sistema cambió sin un evento de por medio (solo en Reconcile).
	Drift bool
	// NotInitialized el par no tiene estado ni eventos; no se creó fila.
	NotInitialized bool
	Err            error
}

// RecomputeReport un resultado por insumo, en orden de ID.
type RecomputeReport struct {
	FarmID   string
	Outcomes []MaterialOutcome
}

// Failed resultados con error.
func (r RecomputeReport) Failed() []MaterialOutcome {
	var failed []MaterialOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err une los errores por insumo; nil si todo se recalculó.
func (r RecomputeReport) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("material %s: %w", o.MaterialID, o.Err))
	}
	return errors.Join(errs...)
}

// States estados resultantes (omite fallidos y no inicializados).
func (r RecomputeReport) States() []*entity.InventoryState {
	var states []*entity.InventoryState
	for _, o := range r.Outcomes {
		if o.State != nil {
			states = append(states, o.State)
		}
	}
	return states
}

// Orchestrator recalcula el InventoryState de cada clave afectada, una transacción por clave.
type Orchestrator struct {
	tx          TxRunner
	locker      KeyLocker
	log         *logger.Logger
	concurrency int
	now         func() time.Time
}

// NewOrchestrator concurrency acota cuántas claves se recalculan en paralelo.
func NewOrchestrator(tx TxRunner, locker KeyLocker, log *logger.Logger, concurrency int) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		tx:          tx,
		locker:      locker,
		log:         log.Component("recompute"),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Recompute recalcula una sola clave. domain.ErrStateNotInitialized si no hay estado ni eventos.
func (o *Orchestrator) Recompute(ctx context.Context, farmID, materialID string) (*entity.InventoryState, error) {
	out := o.recomputeKey(ctx, farmID, materialID, nil)
	switch {
	case out.Err != nil:
		return nil, out.Err
	case out.NotInitialized:
		return nil, domain.ErrStateNotInitialized
	}
	return out.State, nil
}

// RecomputeAffected recalcula el conjunto de insumos. Cada clave confirma por separado:
// la falla de una no impide ni revierte las demás.
func (o *Orchestrator) RecomputeAffected(ctx context.Context, farmID string, materialIDs []string) RecomputeReport {
	keys := distinctSorted(materialIDs)
	report := RecomputeReport{FarmID: farmID, Outcomes: make([]MaterialOutcome, len(keys))}

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, materialID := range keys {
		i, materialID := i, materialID
		g.Go(func() error {
			report.Outcomes[i] = o.recomputeKey(ctx, farmID, materialID, nil)
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range report.Failed() {
		o.log.Key(farmID, out.MaterialID).Error().Err(out.Err).
			Bool("retryable", domain.IsRetryable(out.Err)).
			Msg("recálculo fallido")
	}
	return report
}

// Reconcile recalcula y marca como deriva todo cambio en la cantidad del sistema: sin eventos
// de por medio, un estado sano no cambia. Sin insumos explícitos recorre toda la finca.
func (o *Orchestrator) Reconcile(ctx context.Context, farmID string, materialIDs []string) (RecomputeReport, error) {
	if len(materialIDs) == 0 {
		ids, err := o.farmMaterials(ctx, farmID)
		if err != nil {
			return RecomputeReport{FarmID: farmID}, err
		}
		materialIDs = ids
	}

	report := o.RecomputeAffected(ctx, farmID, materialIDs)
	for i := range report.Outcomes {
		out := &report.Outcomes[i]
		if out.Previous == nil || out.State == nil || out.Previous.SystemQuantity.Equal(out.State.SystemQuantity) {
			continue
		}
		out.Drift = true
		ev := o.log.Key(farmID, out.MaterialID).Warn()
		logger.Decimal(ev, "stored_system_quantity", out.Previous.SystemQuantity)
		logger.Decimal(ev, "recomputed_system_quantity", out.State.SystemQuantity).
			Msg("deriva detectada en inventario")
	}
	return report, nil
}

// ApplyPhysicalCount registra un conteo físico con el mismo ciclo bloqueado de recálculo.
func (o *Orchestrator) ApplyPhysicalCount(ctx context.Context, farmID, materialID string, count decimal.Decimal) MaterialOutcome {
	return o.recomputeKey(ctx, farmID, materialID, &count)
}

// recomputeKey candado por clave + una transacción: leer estado, leer eventos, agregar, escribir.
func (o *Orchestrator) recomputeKey(ctx context.Context, farmID, materialID string, realCount *decimal.Decimal) MaterialOutcome {
	out := MaterialOutcome{MaterialID: materialID}

	unlock, err := o.locker.Lock(ctx, farmID+":"+materialID)
	if err != nil {
		out.Err = err
		return out
	}
	defer unlock()

	err = o.tx.Run(ctx, func(repos TxRepos) error {
		prior, err := repos.States.GetForUpdate(ctx, farmID, materialID)
		if err != nil && !errors.Is(err, domain.ErrStateNotInitialized) {
			return err
		}
		purchases, err := repos.Purchases.ListLinesByMaterial(ctx, farmID, materialID)
		if err != nil {
			return err
		}
		consumptions, err := repos.Batches.ListLinesByMaterial(ctx, farmID, materialID)
		if err != nil {
			return err
		}
		if prior == nil && realCount == nil && len(purchases) == 0 && len(consumptions) == 0 {
			out.NotInitialized = true
			return nil
		}

		next := inventory.Aggregate(inventory.Input{
			FarmID:       farmID,
			MaterialID:   materialID,
			Purchases:    purchases,
			Consumptions: consumptions,
			Prior:        prior,
			RealCount:    realCount,
			Now:          o.now().UTC(),
		})
		out.Previous = prior
		if prior != nil && inventory.SameFigures(*prior, next) {
			out.State = prior
			return nil
		}
		if err := repos.States.Upsert(ctx, &next); err != nil {
			return err
		}
		out.State, out.Changed = &next, true
		return nil
	})
	if err != nil {
		return MaterialOutcome{MaterialID: materialID, Err: err}
	}
	return out
}

// farmMaterials insumos registrados más los que ya tienen estado.
func (o *Orchestrator) farmMaterials(ctx context.Context, farmID string) ([]string, error) {
	var ids []string
	err := o.tx.Run(ctx, func(repos TxRepos) error {
		materials, err := repos.Materials.ListByFarm(ctx, farmID, 0, 0)
		if err != nil {
			return err
		}
		states, err := repos.States.ListByFarm(ctx, farmID)
		if err != nil {
			return err
		}
		for _, m := range materials {
			ids = append(ids, m.ID)
		}
		for _, s := range states {
			ids = append(ids, s.MaterialID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list farm materials: %w", err)
	}
	return distinctSorted(ids), nil
}

func distinctSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
