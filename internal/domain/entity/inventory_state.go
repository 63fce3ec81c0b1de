package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryState estado derivado por (finca, insumo). Nunca se edita a mano:
// se recalcula completo desde las líneas de compra y consumo.
type InventoryState struct {
	FarmID              string
	MaterialID          string
	AccumulatedQuantity decimal.Decimal // Σ cantidad comprada
	ConsumedQuantity    decimal.Decimal // Σ cantidad consumida
	SystemQuantity      decimal.Decimal // acumulada − consumida (puede ser negativa)
	RealQuantity        decimal.Decimal // conteo físico
	// RealQuantityRecorded indica si un operador registró conteo físico;
	// mientras sea false, RealQuantity sigue a SystemQuantity.
	RealQuantityRecorded bool
	Shrinkage            decimal.Decimal // merma = sistema − real
	AveragePrice         decimal.Decimal // costo promedio ponderado
	StockValue           decimal.Decimal // real × promedio
	UpdatedAt            time.Time
}

// Key clave de partición del estado.
func (s *InventoryState) Key() string {
	return s.FarmID + ":" + s.MaterialID
}
