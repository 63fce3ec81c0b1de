package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-ledger/internal/application/dto"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
)

// InventoryHandler modelo de lectura, conteo físico, reconciliación y valorización.
type InventoryHandler struct {
	uc  *ledger.InventoryUseCase
	pdf ledger.ValuationPDFGenerator
}

// NewInventoryHandler pdf puede ser nil; el endpoint del informe responde 501.
func NewInventoryHandler(uc *ledger.InventoryUseCase, pdf ledger.ValuationPDFGenerator) *InventoryHandler {
	return &InventoryHandler{uc: uc, pdf: pdf}
}

// List godoc
// @Summary      Estado de inventario de la finca
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	states, err := h.uc.ListStates(c.UserContext(), GetFarmID(c))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.InventoryListResponse{Items: make([]dto.InventoryStateResponse, 0, len(states))}
	for _, s := range states {
		out.Items = append(out.Items, *toStateResponse(s))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Estado de inventario de un insumo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        materialId  path  string  true  "ID del insumo"
// @Success      200  {object}  dto.InventoryStateResponse
// @Failure      404  {object}  dto.ErrorResponse  "NOT_INITIALIZED si el insumo aún no tiene movimientos"
// @Router       /api/inventory/{materialId} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	st, err := h.uc.GetState(c.UserContext(), GetFarmID(c), c.Params("materialId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStateResponse(st))
}

// SetRealQuantity godoc
// @Summary      Registrar conteo físico
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        materialId  path  string  true  "ID del insumo"
// @Param        body  body  dto.SetRealQuantityRequest  true  "Cantidad contada"
// @Success      200  {object}  dto.InventoryStateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{materialId}/real-quantity [put]
func (h *InventoryHandler) SetRealQuantity(c *fiber.Ctx) error {
	var req dto.SetRealQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if req.RealQuantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "real_quantity es requerido"})
	}
	st, err := h.uc.SetRealQuantity(c.UserContext(), actorFrom(c), GetFarmID(c), c.Params("materialId"), *req.RealQuantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStateResponse(st))
}

// Recompute godoc
// @Summary      Reconciliar inventario
// @Description  Recalcula los insumos indicados (o toda la finca) y marca la deriva encontrada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecomputeRequest  false  "Insumos"
// @Success      200  {object}  dto.RecomputeResponse
// @Router       /api/inventory/recompute [post]
func (h *InventoryHandler) Recompute(c *fiber.Ctx) error {
	var req dto.RecomputeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	report, err := h.uc.Reconcile(c.UserContext(), actorFrom(c), GetFarmID(c), req.MaterialIDs)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.RecomputeResponse{FarmID: report.FarmID, Outcomes: toOutcomes(report), Failed: len(report.Failed())}
	for _, o := range report.Outcomes {
		if o.Drift {
			out.Drifted++
		}
	}
	return c.JSON(out)
}

// ValuationPDF godoc
// @Summary      Informe de valorización en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/inventory/valuation.pdf [get]
func (h *InventoryHandler) ValuationPDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "generador de PDF no configurado"})
	}
	report, err := h.uc.ValuationReport(c.UserContext(), GetFarmID(c))
	if err != nil {
		return respondError(c, err)
	}
	pdf, err := h.pdf.GenerateValuationPDF(c.UserContext(), report)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="valorizacion-%s.pdf"`, report.GeneratedAt.Format("20060102")))
	return c.Send(pdf)
}
