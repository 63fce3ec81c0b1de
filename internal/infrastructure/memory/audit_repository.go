package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo auditoría en memoria, independiente del Store del libro.
type AuditRepo struct {
	mu      sync.RWMutex
	records []entity.AuditRecord
}

func NewAuditRepository() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) Append(_ context.Context, rec *entity.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *AuditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []*entity.AuditRecord
	for _, rec := range r.records {
		switch {
		case f.FarmID != "" && rec.FarmID != f.FarmID,
			f.SourceTable != "" && rec.SourceTable != f.SourceTable,
			f.Action != "" && rec.Action != f.Action,
			f.From != nil && rec.Timestamp.Before(*f.From),
			f.To != nil && rec.Timestamp.After(*f.To):
			continue
		}
		rec := rec
		list = append(list, &rec)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, f.Limit, 0), nil
}
