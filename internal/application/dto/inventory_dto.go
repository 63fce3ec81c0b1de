package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decimales al presentar montos; internamente no se redondea.
const (
	StockValueDecimals   int32 = 2
	AveragePriceDecimals int32 = 4
)

// InventoryStateResponse estado derivado de un insumo en la finca.
type InventoryStateResponse struct {
	FarmID               string          `json:"farm_id"`
	MaterialID           string          `json:"material_id"`
	AccumulatedQuantity  decimal.Decimal `json:"accumulated_quantity"`
	ConsumedQuantity     decimal.Decimal `json:"consumed_quantity"`
	SystemQuantity       decimal.Decimal `json:"system_quantity"`
	RealQuantity         decimal.Decimal `json:"real_quantity"`
	RealQuantityRecorded bool            `json:"real_quantity_recorded"`
	Shrinkage            decimal.Decimal `json:"shrinkage"`
	AveragePrice         decimal.Decimal `json:"average_price"` // 4 decimales
	StockValue           decimal.Decimal `json:"stock_value"`   // 2 decimales
	UpdatedAt            time.Time       `json:"updated_at"`
}

// InventoryListResponse estados de la finca.
type InventoryListResponse struct {
	Items []InventoryStateResponse `json:"items"`
}

// SetRealQuantityRequest body para PUT /api/inventory/:materialId/real-quantity.
type SetRealQuantityRequest struct {
	RealQuantity *decimal.Decimal `json:"real_quantity"`
}

// RecomputeRequest body para POST /api/inventory/recompute; vacío recorre toda la finca.
type RecomputeRequest struct {
	MaterialIDs []string `json:"material_ids"`
}

// RecomputeOutcomeResponse resultado por insumo de un recálculo.
type RecomputeOutcomeResponse struct {
	MaterialID     string                  `json:"material_id"`
	Changed        bool                    `json:"changed"`
	Drift          bool                    `json:"drift,omitempty"`
	NotInitialized bool                    `json:"not_initialized,omitempty"`
	Retryable      bool                    `json:"retryable,omitempty"`
	Error          string                  `json:"error,omitempty"`
	State          *InventoryStateResponse `json:"state,omitempty"`
}

// RecomputeResponse resultado de la reconciliación manual.
type RecomputeResponse struct {
	FarmID   string                     `json:"farm_id"`
	Drifted  int                        `json:"drifted"`
	Failed   int                        `json:"failed"`
	Outcomes []RecomputeOutcomeResponse `json:"outcomes"`
}
