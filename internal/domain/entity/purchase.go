package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase cabecera de una compra. Eliminarla elimina en cascada sus líneas.
type Purchase struct {
	ID           string
	FarmID       string
	SupplierID   string
	Reference    string // factura del proveedor, orden, etc.
	PurchaseDate time.Time
	Lines        []PurchaseLine
	CreatedAt    time.Time
	CreatedBy    string
}

// PurchaseLine aporte atómico a la cantidad acumulada y al numerador del costo promedio.
type PurchaseLine struct {
	ID                string
	FarmID            string
	MaterialID        string
	PurchaseID        string
	QuantityPurchased decimal.Decimal
	UnitPrice         decimal.Decimal
	CreatedAt         time.Time
}

// Subtotal cantidad × precio unitario.
func (l PurchaseLine) Subtotal() decimal.Decimal {
	return l.QuantityPurchased.Mul(l.UnitPrice)
}

// MaterialIDs devuelve los insumos distintos tocados por la compra, en orden de aparición.
func (p *Purchase) MaterialIDs() []string {
	seen := make(map[string]struct{}, len(p.Lines))
	ids := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		if _, ok := seen[l.MaterialID]; ok {
			continue
		}
		seen[l.MaterialID] = struct{}{}
		ids = append(ids, l.MaterialID)
	}
	return ids
}
