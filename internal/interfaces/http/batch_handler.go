package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-ledger/internal/application/dto"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
)

// BatchHandler lotes de fabricación (protegido).
type BatchHandler struct {
	creation *ledger.CreationUseCase
	deletion *ledger.DeletionUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(creation *ledger.CreationUseCase, deletion *ledger.DeletionUseCase) *BatchHandler {
	return &BatchHandler{creation: creation, deletion: deletion}
}

// Create godoc
// @Summary      Registrar lote de fabricación
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in := ledger.CreateBatchInput{FarmID: GetFarmID(c), FormulaID: req.FormulaID, Code: req.Code}
	if req.ProducedAt != nil {
		in.ProducedAt = *req.ProducedAt
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, ledger.ConsumptionLineInput{MaterialID: l.MaterialID, Quantity: l.Quantity})
	}

	res, err := h.creation.RecordBatch(c.UserContext(), actorFrom(c), in)
	if err != nil && (res == nil || len(res.Recompute.Failed()) == 0) {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(res))
}

// Delete godoc
// @Summary      Eliminar lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.DeletionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	res, err := h.deletion.DeleteBatch(c.UserContext(), actorFrom(c), GetFarmID(c), c.Params("id"))
	if err != nil {
		// Un recálculo fallido también es error; se reintenta o se reconcilia.
		return respondError(c, err)
	}
	return c.JSON(toDeletionResponse(res))
}

// BulkDelete godoc
// @Summary      Purgar todos los lotes de la finca
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BulkDeletionResponse
// @Router       /api/batches [delete]
func (h *BatchHandler) BulkDelete(c *fiber.Ctx) error {
	rep, err := h.deletion.BulkDeleteBatches(c.UserContext(), actorFrom(c), GetFarmID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBulkDeletionResponse(rep))
}
