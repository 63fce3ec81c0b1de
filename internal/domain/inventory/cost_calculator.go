package inventory

import (
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DivisionPrecision decimales conservados en divisiones internas. El redondeo monetario
// solo ocurre al presentar (HTTP, PDF).
const DivisionPrecision int32 = 16

// SumPurchases devuelve Σ cantidad y Σ (cantidad × precio) de las líneas de compra.
func SumPurchases(lines []entity.PurchaseLine) (quantity, spend decimal.Decimal) {
	quantity, spend = decimal.Zero, decimal.Zero
	for _, l := range lines {
		quantity = quantity.Add(l.QuantityPurchased)
		spend = spend.Add(l.Subtotal())
	}
	return quantity, spend
}

// SumConsumption devuelve Σ cantidad usada de las líneas de consumo.
func SumConsumption(lines []entity.ConsumptionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.QuantityUsed)
	}
	return total
}

// AverageCost implementa el costo promedio ponderado (servicio de dominio).
// Promedio = Σ(Cantidad × Precio) / Σ Cantidad; 0 si no hay cantidad comprada.
func AverageCost(quantity, spend decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return spend.DivRound(quantity, DivisionPrecision)
}

// ValueAt valoriza una cantidad al promedio ponderado sin redondear el promedio primero:
// cantidad × Σ(Cantidad × Precio) / Σ Cantidad.
func ValueAt(quantity, purchasedQty, spend decimal.Decimal) decimal.Decimal {
	if purchasedQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return quantity.Mul(spend).DivRound(purchasedQty, DivisionPrecision)
}
