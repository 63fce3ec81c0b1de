package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

// document cabecera del libro (compra o lote) vista de forma uniforme por la eliminación.
type document struct {
	id          string
	farmID      string
	lines       []documentLine
	materialIDs []string
	snapshot    any
}

type documentLine struct {
	id         string
	materialID string
}

// stream operaciones de un flujo de eventos (compras o consumo).
type stream struct {
	name         string
	table        string
	get          func(ctx context.Context, repos TxRepos, id string) (*document, error)
	list         func(ctx context.Context, repos TxRepos, farmID string) ([]*document, error)
	deleteLine   func(ctx context.Context, repos TxRepos, lineID string) (bool, error)
	deleteHeader func(ctx context.Context, repos TxRepos, id string) (bool, error)
}

func purchaseDocument(p *entity.Purchase) *document {
	d := &document{id: p.ID, farmID: p.FarmID, materialIDs: p.MaterialIDs(), snapshot: p}
	for _, l := range p.Lines {
		d.lines = append(d.lines, documentLine{id: l.ID, materialID: l.MaterialID})
	}
	return d
}

func batchDocument(b *entity.Batch) *document {
	d := &document{id: b.ID, farmID: b.FarmID, materialIDs: b.MaterialIDs(), snapshot: b}
	for _, l := range b.Lines {
		d.lines = append(d.lines, documentLine{id: l.ID, materialID: l.MaterialID})
	}
	return d
}

var purchaseStream = stream{
	name:  "purchase",
	table: entity.AuditTablePurchases,
	get: func(ctx context.Context, repos TxRepos, id string) (*document, error) {
		p, err := repos.Purchases.GetByID(ctx, id)
		if err != nil || p == nil {
			return nil, err
		}
		return purchaseDocument(p), nil
	},
	list: func(ctx context.Context, repos TxRepos, farmID string) ([]*document, error) {
		list, err := repos.Purchases.ListByFarm(ctx, farmID)
		if err != nil {
			return nil, err
		}
		docs := make([]*document, 0, len(list))
		for _, p := range list {
			docs = append(docs, purchaseDocument(p))
		}
		return docs, nil
	},
	deleteLine: func(ctx context.Context, repos TxRepos, lineID string) (bool, error) {
		return repos.Purchases.DeleteLine(ctx, lineID)
	},
	deleteHeader: func(ctx context.Context, repos TxRepos, id string) (bool, error) {
		return repos.Purchases.DeleteHeader(ctx, id)
	},
}

var batchStream = stream{
	name:  "batch",
	table: entity.AuditTableBatches,
	get: func(ctx context.Context, repos TxRepos, id string) (*document, error) {
		b, err := repos.Batches.GetByID(ctx, id)
		if err != nil || b == nil {
			return nil, err
		}
		return batchDocument(b), nil
	},
	list: func(ctx context.Context, repos TxRepos, farmID string) ([]*document, error) {
		list, err := repos.Batches.ListByFarm(ctx, farmID)
		if err != nil {
			return nil, err
		}
		docs := make([]*document, 0, len(list))
		for _, b := range list {
			docs = append(docs, batchDocument(b))
		}
		return docs, nil
	},
	deleteLine: func(ctx context.Context, repos TxRepos, lineID string) (bool, error) {
		return repos.Batches.DeleteLine(ctx, lineID)
	},
	deleteHeader: func(ctx context.Context, repos TxRepos, id string) (bool, error) {
		return repos.Batches.DeleteHeader(ctx, id)
	},
}

// DeletionResult resultado de eliminar una cabecera y recalcular sus insumos.
type DeletionResult struct {
	FarmID       string
	HeaderID     string
	LinesDeleted int
	MaterialIDs  []string
	Recompute    RecomputeReport
}

// BulkItem resultado de una cabecera dentro de una purga.
type BulkItem struct {
	HeaderID     string
	LinesDeleted int
	Deleted      bool
	Err          error
}

// BulkDeletionReport resumen por cabecera de una purga administrativa.
type BulkDeletionReport struct {
	FarmID      string
	Items       []BulkItem
	MaterialIDs []string
	Recompute   RecomputeReport
}

// Succeeded cabeceras eliminadas por completo.
func (r *BulkDeletionReport) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Deleted {
			n++
		}
	}
	return n
}

// Failed cabeceras con error.
func (r *BulkDeletionReport) Failed() []BulkItem {
	var failed []BulkItem
	for _, it := range r.Items {
		if it.Err != nil {
			failed = append(failed, it)
		}
	}
	return failed
}

// DeletionUseCase elimina compras o lotes en dos fases: (1) borrar líneas y cabecera
// reuniendo los insumos tocados, (2) recalcular ese conjunto una sola vez.
type DeletionUseCase struct {
	tx           TxRunner
	orchestrator *Orchestrator
	audit        AuditRecorder
	log          *logger.Logger
}

// NewDeletionUseCase construye el caso de uso.
func NewDeletionUseCase(tx TxRunner, orchestrator *Orchestrator, auditRec AuditRecorder, log *logger.Logger) *DeletionUseCase {
	return &DeletionUseCase{tx: tx, orchestrator: orchestrator, audit: auditRec, log: log.Component("deletion")}
}

// DeletePurchase elimina la compra y recalcula sus insumos.
func (uc *DeletionUseCase) DeletePurchase(ctx context.Context, actor Actor, farmID, purchaseID string) (*DeletionResult, error) {
	return uc.deleteOne(ctx, purchaseStream, actor, farmID, purchaseID)
}

// DeleteBatch elimina el lote de fabricación y recalcula los insumos consumidos.
func (uc *DeletionUseCase) DeleteBatch(ctx context.Context, actor Actor, farmID, batchID string) (*DeletionResult, error) {
	return uc.deleteOne(ctx, batchStream, actor, farmID, batchID)
}

// BulkDeletePurchases purga todas las compras de la finca.
func (uc *DeletionUseCase) BulkDeletePurchases(ctx context.Context, actor Actor, farmID string) (*BulkDeletionReport, error) {
	return uc.deleteAll(ctx, purchaseStream, actor, farmID)
}

// BulkDeleteBatches purga todos los lotes de la finca.
func (uc *DeletionUseCase) BulkDeleteBatches(ctx context.Context, actor Actor, farmID string) (*BulkDeletionReport, error) {
	return uc.deleteAll(ctx, batchStream, actor, farmID)
}

func (uc *DeletionUseCase) deleteOne(ctx context.Context, s stream, actor Actor, farmID, id string) (*DeletionResult, error) {
	if farmID == "" || id == "" {
		return nil, domain.NewValidationError("id", "requerido")
	}

	var (
		doc    *document
		before []*entity.InventoryState
	)
	err := uc.tx.Run(ctx, func(repos TxRepos) error {
		var err error
		doc, err = s.get(ctx, repos, id)
		if err != nil || doc == nil || doc.farmID != farmID {
			return err
		}
		before, err = statesOf(ctx, repos, farmID, doc.materialIDs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", s.name, id, err)
	}
	if doc == nil || doc.farmID != farmID {
		return nil, fmt.Errorf("%s %s: %w", s.name, id, domain.ErrNotFound)
	}

	// Fase 1
	deleted, touched, err := uc.removeDocument(ctx, s, doc)
	result := &DeletionResult{FarmID: farmID, HeaderID: id, LinesDeleted: deleted, MaterialIDs: touched}
	if err != nil {
		uc.log.Farm(farmID).Error().Err(err).Str(s.name+"_id", id).Int("lines_deleted", deleted).
			Msg("eliminación interrumpida; reintentar o reconciliar")
		// Todos los insumos de la cabecera: un reintento solo verá las líneas restantes.
		result.MaterialIDs = distinctSorted(doc.materialIDs)
		result.Recompute = uc.orchestrator.RecomputeAffected(ctx, farmID, doc.materialIDs)
		if deleted > 0 {
			uc.recordDeletion(ctx, s, actor, doc, before, result.Recompute.States(), "eliminación incompleta: "+err.Error())
		}
		return result, fmt.Errorf("delete %s %s: %w", s.name, id, err)
	}

	// Fase 2
	result.Recompute = uc.orchestrator.RecomputeAffected(ctx, farmID, touched)
	uc.recordDeletion(ctx, s, actor, doc, before, result.Recompute.States(), "")

	if err := result.Recompute.Err(); err != nil {
		return result, fmt.Errorf("recompute after delete %s %s: %w", s.name, id, err)
	}
	return result, nil
}

func (uc *DeletionUseCase) deleteAll(ctx context.Context, s stream, actor Actor, farmID string) (*BulkDeletionReport, error) {
	if farmID == "" {
		return nil, domain.NewValidationError("farm_id", "requerido")
	}

	var (
		snapshot []*entity.InventoryState
		docs     []*document
	)
	err := uc.tx.Run(ctx, func(repos TxRepos) error {
		var err error
		if snapshot, err = repos.States.ListByFarm(ctx, farmID); err != nil {
			return err
		}
		docs, err = s.list(ctx, repos, farmID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bulk delete %s: enumerate: %w", s.name, err)
	}

	report := &BulkDeletionReport{FarmID: farmID, Items: make([]BulkItem, 0, len(docs))}
	var union []string
	for _, doc := range docs {
		before := filterStates(snapshot, doc.materialIDs)
		deleted, _, err := uc.removeDocument(ctx, s, doc)
		// Todos los insumos de la cabecera: si falló a medias, algunas líneas ya no existen.
		union = append(union, doc.materialIDs...)
		item := BulkItem{HeaderID: doc.id, LinesDeleted: deleted, Deleted: err == nil, Err: err}
		report.Items = append(report.Items, item)
		if err != nil {
			uc.log.Farm(farmID).Error().Err(err).Str(s.name+"_id", doc.id).Msg("purga: cabecera fallida, se continúa con las demás")
			if deleted > 0 {
				uc.recordDeletion(ctx, s, actor, doc, before, nil, "eliminación incompleta: "+err.Error())
			}
			continue
		}
		uc.recordDeletion(ctx, s, actor, doc, before, nil, "purga administrativa")
	}

	report.MaterialIDs = distinctSorted(union)
	report.Recompute = uc.orchestrator.RecomputeAffected(ctx, farmID, report.MaterialIDs)

	uc.audit.Record(ctx, audit.Entry{
		Actor:       actor,
		FarmID:      farmID,
		SourceTable: s.table,
		RecordID:    farmID,
		Action:      entity.AuditActionBulkDelete,
		Description: fmt.Sprintf("%d de %d cabeceras eliminadas, %d insumos recalculados, %d fallidos",
			report.Succeeded(), len(docs), len(report.MaterialIDs), len(report.Recompute.Failed())),
		Before: snapshot,
		After:  report.Recompute.States(),
	})
	uc.log.Farm(farmID).Info().Str("stream", s.name).
		Int("headers", len(docs)).Int("deleted", report.Succeeded()).
		Int("materials", len(report.MaterialIDs)).
		Msg("purga completada")
	return report, nil
}

// removeDocument borra cada línea en su propia transacción y la cabecera al final.
// Las líneas ya borradas no se restauran si algo falla después.
func (uc *DeletionUseCase) removeDocument(ctx context.Context, s stream, doc *document) (int, []string, error) {
	deleted := 0
	var touched []string
	for _, l := range doc.lines {
		touched = append(touched, l.materialID)
		var ok bool
		err := uc.tx.Run(ctx, func(repos TxRepos) error {
			var err error
			ok, err = s.deleteLine(ctx, repos, l.id)
			return err
		})
		if err != nil {
			return deleted, distinctSorted(touched), fmt.Errorf("line %s: %w", l.id, err)
		}
		if ok {
			deleted++
		}
	}
	err := uc.tx.Run(ctx, func(repos TxRepos) error {
		_, err := s.deleteHeader(ctx, repos, doc.id)
		return err
	})
	if err != nil {
		return deleted, distinctSorted(touched), fmt.Errorf("header %s: %w", doc.id, err)
	}
	return deleted, distinctSorted(touched), nil
}

func (uc *DeletionUseCase) recordDeletion(ctx context.Context, s stream, actor Actor, doc *document,
	before, after []*entity.InventoryState, description string) {
	var afterData any
	if after != nil {
		afterData = map[string]any{"inventory_states": after}
	}
	uc.audit.Record(ctx, audit.Entry{
		Actor:       actor,
		FarmID:      doc.farmID,
		SourceTable: s.table,
		RecordID:    doc.id,
		Action:      entity.AuditActionDelete,
		Description: description,
		Before:      map[string]any{s.name: doc.snapshot, "inventory_states": before},
		After:       afterData,
	})
}

// statesOf estados actuales de los insumos (omite los no inicializados).
func statesOf(ctx context.Context, repos TxRepos, farmID string, materialIDs []string) ([]*entity.InventoryState, error) {
	var states []*entity.InventoryState
	for _, id := range materialIDs {
		st, err := repos.States.Get(ctx, farmID, id)
		if err != nil {
			if isNotInitialized(err) {
				continue
			}
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}

func filterStates(states []*entity.InventoryState, materialIDs []string) []*entity.InventoryState {
	want := make(map[string]struct{}, len(materialIDs))
	for _, id := range materialIDs {
		want[id] = struct{}{}
	}
	var out []*entity.InventoryState
	for _, s := range states {
		if _, ok := want[s.MaterialID]; ok {
			out = append(out, s)
		}
	}
	return out
}
