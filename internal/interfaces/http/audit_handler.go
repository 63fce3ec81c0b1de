package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/application/dto"
)

// AuditHandler consulta del registro de auditoría de la finca.
type AuditHandler struct {
	uc *audit.QueryUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.QueryUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Search godoc
// @Summary      Buscar registros de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        table   query  string  false  "Tabla de origen (purchases, batches, inventory_states, materials)"
// @Param        action  query  string  false  "CREATE, UPDATE, DELETE, RESTORE, BULK_DELETE"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Máximo de registros"
// @Success      200  {object}  dto.AuditListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) Search(c *fiber.Ctx) error {
	f := audit.Filter{
		FarmID:      GetFarmID(c),
		SourceTable: c.Query("table"),
		Action:      c.Query("action"),
		Limit:       c.QueryInt("limit", 0),
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}

	records, err := h.uc.Search(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.AuditListResponse{Items: make([]dto.AuditRecordResponse, 0, len(records)), Limit: f.Limit}
	for _, r := range records {
		out.Items = append(out.Items, toAuditResponse(r))
	}
	return c.JSON(out)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
