package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest línea de compra.
type PurchaseLineRequest struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID   string                `json:"supplier_id"`
	Reference    string                `json:"reference"`
	PurchaseDate *time.Time            `json:"purchase_date,omitempty"`
	Lines        []PurchaseLineRequest `json:"lines"`
}

// PurchaseLineResponse línea de compra persistida.
type PurchaseLineResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// PurchaseResponse compra creada con los estados recalculados.
type PurchaseResponse struct {
	ID              string                     `json:"id"`
	FarmID          string                     `json:"farm_id"`
	SupplierID      string                     `json:"supplier_id,omitempty"`
	Reference       string                     `json:"reference,omitempty"`
	PurchaseDate    time.Time                  `json:"purchase_date"`
	CreatedBy       string                     `json:"created_by"`
	Lines           []PurchaseLineResponse     `json:"lines"`
	InventoryStates []RecomputeOutcomeResponse `json:"inventory_states"`
}

// ConsumptionLineRequest consumo de un insumo.
type ConsumptionLineRequest struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// CreateBatchRequest body para POST /api/batches.
type CreateBatchRequest struct {
	FormulaID  string                   `json:"formula_id"`
	Code       string                   `json:"code"`
	ProducedAt *time.Time               `json:"produced_at,omitempty"`
	Lines      []ConsumptionLineRequest `json:"lines"`
}

// ConsumptionLineResponse línea de consumo persistida.
type ConsumptionLineResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// BatchResponse lote creado con los estados recalculados.
type BatchResponse struct {
	ID              string                     `json:"id"`
	FarmID          string                     `json:"farm_id"`
	FormulaID       string                     `json:"formula_id,omitempty"`
	Code            string                     `json:"code,omitempty"`
	ProducedAt      time.Time                  `json:"produced_at"`
	CreatedBy       string                     `json:"created_by"`
	Lines           []ConsumptionLineResponse  `json:"lines"`
	InventoryStates []RecomputeOutcomeResponse `json:"inventory_states"`
}

// DeletionResponse resultado de eliminar una compra o un lote.
type DeletionResponse struct {
	ID              string                     `json:"id"`
	LinesDeleted    int                        `json:"lines_deleted"`
	MaterialIDs     []string                   `json:"material_ids"`
	InventoryStates []RecomputeOutcomeResponse `json:"inventory_states"`
}

// BulkDeletionItemResponse resultado de una cabecera en la purga.
type BulkDeletionItemResponse struct {
	ID           string `json:"id"`
	LinesDeleted int    `json:"lines_deleted"`
	Deleted      bool   `json:"deleted"`
	Error        string `json:"error,omitempty"`
}

// BulkDeletionResponse resumen por cabecera; HTTP 200 aun con fallas parciales.
type BulkDeletionResponse struct {
	FarmID          string                     `json:"farm_id"`
	Total           int                        `json:"total"`
	Succeeded       int                        `json:"succeeded"`
	Failed          int                        `json:"failed"`
	Items           []BulkDeletionItemResponse `json:"items"`
	MaterialIDs     []string                   `json:"material_ids"`
	InventoryStates []RecomputeOutcomeResponse `json:"inventory_states"`
}
