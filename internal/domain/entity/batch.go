package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch lote de fabricación. Eliminarlo elimina en cascada sus líneas de consumo.
type Batch struct {
	ID         string
	FarmID     string
	FormulaID  string // fórmula externa; el libro no la interpreta
	Code       string
	ProducedAt time.Time
	Lines      []ConsumptionLine
	CreatedAt  time.Time
	CreatedBy  string
}

// ConsumptionLine resta de la cantidad del sistema; nunca afecta el costo promedio.
type ConsumptionLine struct {
	ID           string
	FarmID       string
	MaterialID   string
	BatchID      string
	QuantityUsed decimal.Decimal
	CreatedAt    time.Time
}

// MaterialIDs devuelve los insumos distintos consumidos por el lote.
func (b *Batch) MaterialIDs() []string {
	seen := make(map[string]struct{}, len(b.Lines))
	ids := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		if _, ok := seen[l.MaterialID]; ok {
			continue
		}
		seen[l.MaterialID] = struct{}{}
		ids = append(ids, l.MaterialID)
	}
	return ids
}
