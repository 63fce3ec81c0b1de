package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-ledger/internal/application/dto"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
)

// PurchaseHandler registro y eliminación de compras (protegido).
type PurchaseHandler struct {
	creation *ledger.CreationUseCase
	deletion *ledger.DeletionUseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(creation *ledger.CreationUseCase, deletion *ledger.DeletionUseCase) *PurchaseHandler {
	return &PurchaseHandler{creation: creation, deletion: deletion}
}

// Create godoc
// @Summary      Registrar compra
// @Description  Persiste cabecera y líneas y recalcula el inventario de los insumos tocados.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in := ledger.CreatePurchaseInput{
		FarmID:     GetFarmID(c),
		SupplierID: req.SupplierID,
		Reference:  req.Reference,
	}
	if req.PurchaseDate != nil {
		in.PurchaseDate = *req.PurchaseDate
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, ledger.PurchaseLineInput{MaterialID: l.MaterialID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}

	res, err := h.creation.RecordPurchase(c.UserContext(), actorFrom(c), in)
	// Con la compra persistida, una falla de recálculo se informa por insumo en el cuerpo.
	if err != nil && (res == nil || len(res.Recompute.Failed()) == 0) {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseResponse(res))
}

// Delete godoc
// @Summary      Eliminar compra
// @Description  Borra líneas y cabecera y recalcula una vez cada insumo afectado.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.DeletionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [delete]
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	res, err := h.deletion.DeletePurchase(c.UserContext(), actorFrom(c), GetFarmID(c), c.Params("id"))
	if err != nil {
		// Un recálculo fallido también es error; se reintenta o se reconcilia.
		return respondError(c, err)
	}
	return c.JSON(toDeletionResponse(res))
}

// BulkDelete godoc
// @Summary      Purgar todas las compras de la finca
// @Description  Resumen por cabecera; responde 200 aun con fallas parciales.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BulkDeletionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/purchases [delete]
func (h *PurchaseHandler) BulkDelete(c *fiber.Ctx) error {
	rep, err := h.deletion.BulkDeletePurchases(c.UserContext(), actorFrom(c), GetFarmID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBulkDeletionResponse(rep))
}
