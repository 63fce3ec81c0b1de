package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MaterialUC   *usecase.MaterialUseCase
	Creation     *ledger.CreationUseCase
	Deletion     *ledger.DeletionUseCase
	Inventory    *ledger.InventoryUseCase
	AuditQuery   *audit.QueryUseCase
	ValuationPDF ledger.ValuationPDFGenerator
	JWTSecret    string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token con finca.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireFarm())
	writers := RequireRole(RoleAdmin, RoleOperador)
	admins := RequireRole(RoleAdmin)

	// Materials
	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials.Post("/", writers, materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Delete("/:id", writers, materialHandler.Delete)

	// Purchases
	purchases := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Creation, deps.Deletion)
	purchases.Post("/", writers, purchaseHandler.Create)
	purchases.Delete("/", admins, purchaseHandler.BulkDelete)
	purchases.Delete("/:id", writers, purchaseHandler.Delete)

	// Batches
	batches := api.Group("/batches")
	batchHandler := NewBatchHandler(deps.Creation, deps.Deletion)
	batches.Post("/", writers, batchHandler.Create)
	batches.Delete("/", admins, batchHandler.BulkDelete)
	batches.Delete("/:id", writers, batchHandler.Delete)

	// Inventory: las rutas fijas van antes de /:materialId
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.ValuationPDF)
	inv.Get("/", inventoryHandler.List)
	inv.Get("/valuation.pdf", inventoryHandler.ValuationPDF)
	inv.Post("/recompute", writers, inventoryHandler.Recompute)
	inv.Get("/:materialId", inventoryHandler.Get)
	inv.Put("/:materialId/real-quantity", writers, inventoryHandler.SetRealQuantity)

	// Audit
	auditHandler := NewAuditHandler(deps.AuditQuery)
	api.Get("/audit", admins, auditHandler.Search)
}
