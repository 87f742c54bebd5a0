package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una fila del catálogo de productos.
// Stock es la proyección materializada del libro de movimientos: cada alta en
// inventory_movements actualiza esta columna en la misma transacción. El motor
// de sync-validation es el verificador de ese contrato cache+ledger.
type Product struct {
	ID          string
	SKU         string // código único, opcional
	Name        string
	Description string
	Price       decimal.Decimal // precio unitario de venta
	Stock       decimal.Decimal // cantidad actual (cache del ledger)
	MinStock    decimal.Decimal // umbral de reposición
	UnitMeasure string          // unidad de medida (UND, KG, LT...)
	Active      bool            // soft-delete
	NeedsReview bool            // true cuando fue recreado por una migración de huérfanos
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
