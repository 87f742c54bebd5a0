package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/auth"
	"github.com/invorya/ledger-api/internal/application/inventory"
	"github.com/invorya/ledger-api/internal/application/reconcile"
	"github.com/invorya/ledger-api/internal/application/usecase"
	"github.com/invorya/ledger-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	InventoryQuery   *inventory.QueryUseCase
	SyncValidation   *reconcile.SyncValidationUseCase
	Remediation      *reconcile.RemediationUseCase
	AuthUC           *auth.AuthUseCase
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)

	// Inventory (protegido): catálogo proyectado y ledger de movimientos
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.InventoryQuery)
	invGroup.Get("/products", inventoryHandler.ListProducts)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)

	// Sync-validation (protegido): GET revalida sin efectos; POST remedia.
	// La remediación queda detrás de rol admin: migrate crea filas de
	// catálogo y clean borra historial.
	syncHandler := NewSyncHandler(deps.SyncValidation, deps.Remediation)
	invGroup.Get("/sync-validation", syncHandler.Validate)
	invGroup.Post("/sync-validation", RequireRole(entity.RoleAdmin), syncHandler.Remediate)
}
