package http

import (
	"github.com/jhoicas/agro-ledger/internal/application/dto"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
)

// El redondeo monetario ocurre solo aquí y en el PDF.
func toStateResponse(s *entity.InventoryState) *dto.InventoryStateResponse {
	if s == nil {
		return nil
	}
	return &dto.InventoryStateResponse{
		FarmID:               s.FarmID,
		MaterialID:           s.MaterialID,
		AccumulatedQuantity:  s.AccumulatedQuantity,
		ConsumedQuantity:     s.ConsumedQuantity,
		SystemQuantity:       s.SystemQuantity,
		RealQuantity:         s.RealQuantity,
		RealQuantityRecorded: s.RealQuantityRecorded,
		Shrinkage:            s.Shrinkage,
		AveragePrice:         s.AveragePrice.Round(dto.AveragePriceDecimals),
		StockValue:           s.StockValue.Round(dto.StockValueDecimals),
		UpdatedAt:            s.UpdatedAt,
	}
}

func toOutcomes(r ledger.RecomputeReport) []dto.RecomputeOutcomeResponse {
	out := make([]dto.RecomputeOutcomeResponse, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		item := dto.RecomputeOutcomeResponse{
			MaterialID:     o.MaterialID,
			Changed:        o.Changed,
			Drift:          o.Drift,
			NotInitialized: o.NotInitialized,
			State:          toStateResponse(o.State),
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
			item.Retryable = domain.IsRetryable(o.Err)
		}
		out = append(out, item)
	}
	return out
}

func toPurchaseResponse(res *ledger.PurchaseResult) dto.PurchaseResponse {
	p := res.Purchase
	out := dto.PurchaseResponse{
		ID:              p.ID,
		FarmID:          p.FarmID,
		SupplierID:      p.SupplierID,
		Reference:       p.Reference,
		PurchaseDate:    p.PurchaseDate,
		CreatedBy:       p.CreatedBy,
		Lines:           make([]dto.PurchaseLineResponse, 0, len(p.Lines)),
		InventoryStates: toOutcomes(res.Recompute),
	}
	for _, l := range p.Lines {
		out.Lines = append(out.Lines, dto.PurchaseLineResponse{
			ID:         l.ID,
			MaterialID: l.MaterialID,
			Quantity:   l.QuantityPurchased,
			UnitPrice:  l.UnitPrice,
			Subtotal:   l.Subtotal(),
		})
	}
	return out
}

func toBatchResponse(res *ledger.BatchResult) dto.BatchResponse {
	b := res.Batch
	out := dto.BatchResponse{
		ID:              b.ID,
		FarmID:          b.FarmID,
		FormulaID:       b.FormulaID,
		Code:            b.Code,
		ProducedAt:      b.ProducedAt,
		CreatedBy:       b.CreatedBy,
		Lines:           make([]dto.ConsumptionLineResponse, 0, len(b.Lines)),
		InventoryStates: toOutcomes(res.Recompute),
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, dto.ConsumptionLineResponse{ID: l.ID, MaterialID: l.MaterialID, Quantity: l.QuantityUsed})
	}
	return out
}

func toDeletionResponse(res *ledger.DeletionResult) dto.DeletionResponse {
	return dto.DeletionResponse{
		ID:              res.HeaderID,
		LinesDeleted:    res.LinesDeleted,
		MaterialIDs:     nonNil(res.MaterialIDs),
		InventoryStates: toOutcomes(res.Recompute),
	}
}

func toBulkDeletionResponse(rep *ledger.BulkDeletionReport) dto.BulkDeletionResponse {
	out := dto.BulkDeletionResponse{
		FarmID:          rep.FarmID,
		Total:           len(rep.Items),
		Succeeded:       rep.Succeeded(),
		Failed:          len(rep.Failed()),
		Items:           make([]dto.BulkDeletionItemResponse, 0, len(rep.Items)),
		MaterialIDs:     nonNil(rep.MaterialIDs),
		InventoryStates: toOutcomes(rep.Recompute),
	}
	for _, it := range rep.Items {
		item := dto.BulkDeletionItemResponse{ID: it.HeaderID, LinesDeleted: it.LinesDeleted, Deleted: it.Deleted}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func toAuditResponse(r *entity.AuditRecord) dto.AuditRecordResponse {
	return dto.AuditRecordResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		FarmID:      r.FarmID,
		SourceTable: r.SourceTable,
		RecordID:    r.RecordID,
		Action:      r.Action,
		Description: r.Description,
		DataBefore:  r.DataBefore,
		DataNew:     r.DataNew,
		Timestamp:   r.Timestamp,
		IPAddress:   r.IPAddress,
		UserAgent:   r.UserAgent,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
