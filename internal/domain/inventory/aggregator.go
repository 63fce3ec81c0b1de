package inventory

import (
	"time"

	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Input todo lo que el agregador necesita para derivar el estado de un par (finca, insumo).
type Input struct {
	FarmID       string
	MaterialID   string
	Purchases    []entity.PurchaseLine
	Consumptions []entity.ConsumptionLine
	// Prior estado almacenado (nil si el par no se ha inicializado). Solo se lee su conteo real.
	Prior *entity.InventoryState
	// RealCount conteo físico nuevo; si no es nil reemplaza al conteo previo.
	RealCount *decimal.Decimal
	Now       time.Time
}

// Aggregate deriva el InventoryState a partir de todas las líneas del par.
// Función pura: no hace E/S y con la misma entrada produce el mismo resultado.
// La cantidad del sistema puede quedar negativa (sobreconsumo); no se recorta.
func Aggregate(in Input) entity.InventoryState {
	purchases := make([]entity.PurchaseLine, 0, len(in.Purchases))
	for _, l := range in.Purchases {
		if l.FarmID == in.FarmID && l.MaterialID == in.MaterialID {
			purchases = append(purchases, l)
		}
	}
	consumptions := make([]entity.ConsumptionLine, 0, len(in.Consumptions))
	for _, l := range in.Consumptions {
		if l.FarmID == in.FarmID && l.MaterialID == in.MaterialID {
			consumptions = append(consumptions, l)
		}
	}

	accumulated, spend := SumPurchases(purchases)
	consumed := SumConsumption(consumptions)
	system := accumulated.Sub(consumed)

	realQty, recorded := system, false
	switch {
	case in.RealCount != nil:
		realQty, recorded = *in.RealCount, true
	case in.Prior != nil && in.Prior.RealQuantityRecorded:
		realQty, recorded = in.Prior.RealQuantity, true
	}

	return entity.InventoryState{
		FarmID:               in.FarmID,
		MaterialID:           in.MaterialID,
		AccumulatedQuantity:  accumulated,
		ConsumedQuantity:     consumed,
		SystemQuantity:       system,
		RealQuantity:         realQty,
		RealQuantityRecorded: recorded,
		Shrinkage:            system.Sub(realQty),
		AveragePrice:         AverageCost(accumulated, spend),
		StockValue:           ValueAt(realQty, accumulated, spend),
		UpdatedAt:            in.Now,
	}
}

// SameFigures compara todos los campos derivados (no UpdatedAt).
func SameFigures(a, b entity.InventoryState) bool {
	return a.FarmID == b.FarmID &&
		a.MaterialID == b.MaterialID &&
		a.AccumulatedQuantity.Equal(b.AccumulatedQuantity) &&
		a.ConsumedQuantity.Equal(b.ConsumedQuantity) &&
		a.SystemQuantity.Equal(b.SystemQuantity) &&
		a.RealQuantity.Equal(b.RealQuantity) &&
		a.RealQuantityRecorded == b.RealQuantityRecorded &&
		a.Shrinkage.Equal(b.Shrinkage) &&
		a.AveragePrice.Equal(b.AveragePrice) &&
		a.StockValue.Equal(b.StockValue)
}
