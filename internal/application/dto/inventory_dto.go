package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Quantity es positiva para ENTRADA/SALIDA; en AJUSTE lleva signo.
type RegisterMovementRequest struct {
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"` // ENTRADA, SALIDA, AJUSTE
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason,omitempty"`
}

// MovementDTO asiento del ledger con datos de presentación resueltos.
// ProductName/SKU pueden venir vacíos si el producto ya no existe en el
// catálogo: los movimientos huérfanos se listan igual.
type MovementDTO struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	PreviousQty decimal.Decimal `json:"previous_qty"`
	NewQty      decimal.Decimal `json:"new_qty"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
	UserName    string          `json:"user_name,omitempty"`
}

// MovementListResponse respuesta paginada de GET /api/inventory/movements.
type MovementListResponse struct {
	Movements []MovementDTO `json:"movements"`
	Page      PageResponse  `json:"page"`
}

// ProductDTO fila del catálogo con el estado calculado por el proyector.
type ProductDTO struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
	UnitMeasure string          `json:"unit_measure,omitempty"`
	Status      string          `json:"status"` // Agotado, Stock Bajo, Normal
	Active      bool            `json:"active"`
	NeedsReview bool            `json:"needs_review,omitempty"`
}

// InventoryStatsDTO agregados del catálogo.
type InventoryStatsDTO struct {
	TotalProducts int             `json:"total_products"`
	OutOfStock    int             `json:"out_of_stock"`
	LowStock      int             `json:"low_stock"`
	Normal        int             `json:"normal"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// ProductListResponse respuesta de GET /api/inventory/products.
type ProductListResponse struct {
	Products []ProductDTO      `json:"products"`
	Stats    InventoryStatsDTO `json:"stats"`
	Page     PageResponse      `json:"page"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU         string          `json:"sku,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinStock    decimal.Decimal `json:"min_stock"`
	UnitMeasure string          `json:"unit_measure,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id. El stock no se edita
// por aquí: solo cambia vía movimientos o remediación.
type UpdateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinStock    decimal.Decimal `json:"min_stock"`
	UnitMeasure string          `json:"unit_measure,omitempty"`
	Active      *bool           `json:"active,omitempty"`
}
