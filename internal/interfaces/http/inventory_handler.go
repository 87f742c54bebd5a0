package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/application/inventory"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del inventario (protegido):
// catálogo proyectado, historial de movimientos y registro de movimientos.
type InventoryHandler struct {
	register *inventory.RegisterMovementUseCase
	query    *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(register *inventory.RegisterMovementUseCase, query *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{register: register, query: query}
}

// ListProducts godoc
// @Summary      Catálogo con estado de stock y agregados
// @Description  Lista los productos con su estado (Agotado, Stock Bajo, Normal)
//
//	calculado desde el stock cacheado, más totales por estado y
//	valor del inventario.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit             query  int   false  "Tamaño de página (máx 100)"
// @Param        offset            query  int   false  "Desplazamiento"
// @Param        include_inactive  query  bool  false  "Incluir soft-deleted"
// @Success      200  {object}  dto.ProductListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/products [get]
func (h *InventoryHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.query.ListProducts(c.Context(), c.QueryBool("include_inactive"), page)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Description  Lista paginada por fecha descendente; los movimientos cuyo
//
//	producto ya no existe en el catálogo se listan igual.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit       query  int     false  "Tamaño de página (máx 100)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        type        query  string  false  "ENTRADA | SALIDA | AJUSTE"
// @Param        from        query  string  false  "Fecha inicial (RFC3339)"
// @Param        to          query  string  false  "Fecha final (RFC3339)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      c.Query("type"),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}
	out, err := h.query.ListMovements(c.Context(), filter, page)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(out)
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, quantity, reason"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.register.RegisterMovementFromRequest(c.Context(), userID, in); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "movimiento registrado"})
}

// storeError distingue el almacén caído (503) de cualquier otro fallo (500).
func storeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
