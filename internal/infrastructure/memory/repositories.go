package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

var (
	_ repository.MaterialRepository       = (*MaterialRepo)(nil)
	_ repository.PurchaseRepository       = (*PurchaseRepo)(nil)
	_ repository.BatchRepository          = (*BatchRepo)(nil)
	_ repository.InventoryStateRepository = (*InventoryStateRepo)(nil)
)

// ──────────────────────────────────────────────────────────────────────────────
// Insumos
// ──────────────────────────────────────────────────────────────────────────────

type MaterialRepo struct{ a access }

func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	return r.a.with(func(d *dataset) error {
		if _, ok := d.materials[m.ID]; ok {
			return fmt.Errorf("insert material: %w", domain.ErrDuplicate)
		}
		for _, other := range d.materials {
			if other.FarmID == m.FarmID && other.Code == m.Code {
				return fmt.Errorf("insert material: %w", domain.ErrDuplicate)
			}
		}
		d.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	var out *entity.Material
	err := r.a.with(func(d *dataset) error {
		if m, ok := d.materials[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *MaterialRepo) GetByFarmAndCode(_ context.Context, farmID, code string) (*entity.Material, error) {
	var out *entity.Material
	err := r.a.with(func(d *dataset) error {
		for _, m := range d.materials {
			if m.FarmID == farmID && m.Code == code {
				m := m
				out = &m
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *MaterialRepo) ListByFarm(_ context.Context, farmID string, limit, offset int) ([]*entity.Material, error) {
	var list []*entity.Material
	err := r.a.with(func(d *dataset) error {
		for _, m := range d.materials {
			if m.FarmID == farmID {
				m := m
				list = append(list, &m)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), err
}

func (r *MaterialRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	var referenced bool
	err := r.a.with(func(d *dataset) error {
		for _, l := range d.purchaseLines {
			if l.MaterialID == id {
				referenced = true
				return nil
			}
		}
		for _, l := range d.consumptionLines {
			if l.MaterialID == id {
				referenced = true
				return nil
			}
		}
		return nil
	})
	return referenced, err
}

func (r *MaterialRepo) Delete(_ context.Context, id string) error {
	return r.a.with(func(d *dataset) error {
		delete(d.materials, id)
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras
// ──────────────────────────────────────────────────────────────────────────────

type PurchaseRepo struct{ a access }

func (r *PurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.a.with(func(d *dataset) error {
		if _, ok := d.purchases[p.ID]; ok {
			return fmt.Errorf("insert purchase: %w", domain.ErrDuplicate)
		}
		for _, l := range p.Lines {
			if _, ok := d.materials[l.MaterialID]; !ok {
				return fmt.Errorf("insert purchase line: material %s: %w", l.MaterialID, domain.ErrNotFound)
			}
		}
		header := *p
		header.Lines = nil
		d.purchases[p.ID] = header
		for _, l := range p.Lines {
			d.purchaseLines[l.ID] = l
			d.nextSeq(l.ID)
		}
		return nil
	})
}

func (r *PurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := r.a.with(func(d *dataset) error {
		p, ok := d.purchases[id]
		if !ok {
			return nil
		}
		p.Lines = d.sortedPurchaseLines(func(l entity.PurchaseLine) bool { return l.PurchaseID == id })
		out = &p
		return nil
	})
	return out, err
}

func (r *PurchaseRepo) ListByFarm(_ context.Context, farmID string) ([]*entity.Purchase, error) {
	var list []*entity.Purchase
	err := r.a.with(func(d *dataset) error {
		for _, p := range d.purchases {
			if p.FarmID != farmID {
				continue
			}
			p := p
			id := p.ID
			p.Lines = d.sortedPurchaseLines(func(l entity.PurchaseLine) bool { return l.PurchaseID == id })
			list = append(list, &p)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

func (r *PurchaseRepo) ListLinesByMaterial(_ context.Context, farmID, materialID string) ([]entity.PurchaseLine, error) {
	var lines []entity.PurchaseLine
	err := r.a.with(func(d *dataset) error {
		lines = d.sortedPurchaseLines(func(l entity.PurchaseLine) bool {
			return l.FarmID == farmID && l.MaterialID == materialID
		})
		return nil
	})
	return lines, err
}

func (r *PurchaseRepo) DeleteLine(_ context.Context, lineID string) (bool, error) {
	var deleted bool
	err := r.a.with(func(d *dataset) error {
		if _, ok := d.purchaseLines[lineID]; ok {
			delete(d.purchaseLines, lineID)
			delete(d.lineSeq, lineID)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r *PurchaseRepo) DeleteHeader(_ context.Context, id string) (bool, error) {
	var deleted bool
	err := r.a.with(func(d *dataset) error {
		if _, ok := d.purchases[id]; !ok {
			return nil
		}
		delete(d.purchases, id)
		for lid, l := range d.purchaseLines {
			if l.PurchaseID == id {
				delete(d.purchaseLines, lid)
				delete(d.lineSeq, lid)
			}
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes de fabricación
// ──────────────────────────────────────────────────────────────────────────────

type BatchRepo struct{ a access }

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	return r.a.with(func(d *dataset) error {
		if _, ok := d.batches[b.ID]; ok {
			return fmt.Errorf("insert batch: %w", domain.ErrDuplicate)
		}
		for _, l := range b.Lines {
			if _, ok := d.materials[l.MaterialID]; !ok {
				return fmt.Errorf("insert consumption line: material %s: %w", l.MaterialID, domain.ErrNotFound)
			}
		}
		header := *b
		header.Lines = nil
		d.batches[b.ID] = header
		for _, l := range b.Lines {
			d.consumptionLines[l.ID] = l
			d.nextSeq(l.ID)
		}
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.a.with(func(d *dataset) error {
		b, ok := d.batches[id]
		if !ok {
			return nil
		}
		b.Lines = d.sortedConsumptionLines(func(l entity.ConsumptionLine) bool { return l.BatchID == id })
		out = &b
		return nil
	})
	return out, err
}

func (r *BatchRepo) ListByFarm(_ context.Context, farmID string) ([]*entity.Batch, error) {
	var list []*entity.Batch
	err := r.a.with(func(d *dataset) error {
		for _, b := range d.batches {
			if b.FarmID != farmID {
				continue
			}
			b := b
			id := b.ID
			b.Lines = d.sortedConsumptionLines(func(l entity.ConsumptionLine) bool { return l.BatchID == id })
			list = append(list, &b)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

func (r *BatchRepo) ListLinesByMaterial(_ context.Context, farmID, materialID string) ([]entity.ConsumptionLine, error) {
	var lines []entity.ConsumptionLine
	err := r.a.with(func(d *dataset) error {
		lines = d.sortedConsumptionLines(func(l entity.ConsumptionLine) bool {
			return l.FarmID == farmID && l.MaterialID == materialID
		})
		return nil
	})
	return lines, err
}

func (r *BatchRepo) DeleteLine(_ context.Context, lineID string) (bool, error) {
	var deleted bool
	err := r.a.with(func(d *dataset) error {
		if _, ok := d.consumptionLines[lineID]; ok {
			delete(d.consumptionLines, lineID)
			delete(d.lineSeq, lineID)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r *BatchRepo) DeleteHeader(_ context.Context, id string) (bool, error) {
	var deleted bool
	err := r.a.with(func(d *dataset) error {
		if _, ok := d.batches[id]; !ok {
			return nil
		}
		delete(d.batches, id)
		for lid, l := range d.consumptionLines {
			if l.BatchID == id {
				delete(d.consumptionLines, lid)
				delete(d.lineSeq, lid)
			}
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado de inventario
// ──────────────────────────────────────────────────────────────────────────────

type InventoryStateRepo struct{ a access }

func (r *InventoryStateRepo) Get(_ context.Context, farmID, materialID string) (*entity.InventoryState, error) {
	var out *entity.InventoryState
	err := r.a.with(func(d *dataset) error {
		s, ok := d.states[stateKey(farmID, materialID)]
		if !ok {
			return domain.ErrStateNotInitialized
		}
		out = &s
		return nil
	})
	return out, err
}

// GetForUpdate igual que Get: la transacción en memoria ya tiene el almacén en exclusiva.
func (r *InventoryStateRepo) GetForUpdate(ctx context.Context, farmID, materialID string) (*entity.InventoryState, error) {
	return r.Get(ctx, farmID, materialID)
}

func (r *InventoryStateRepo) Upsert(_ context.Context, s *entity.InventoryState) error {
	return r.a.with(func(d *dataset) error {
		d.states[stateKey(s.FarmID, s.MaterialID)] = *s
		return nil
	})
}

func (r *InventoryStateRepo) ListByFarm(_ context.Context, farmID string) ([]*entity.InventoryState, error) {
	var list []*entity.InventoryState
	err := r.a.with(func(d *dataset) error {
		for _, s := range d.states {
			if s.FarmID == farmID {
				s := s
				list = append(list, &s)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].MaterialID < list[j].MaterialID })
	return list, err
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
