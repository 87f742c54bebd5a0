package repository

import (
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain/entity"
)

// InventoryStats agregados del catálogo para el proyector de stock.
type InventoryStats struct {
	TotalProducts int
	OutOfStock    int // stock == 0
	LowStock      int // 0 < stock <= min_stock
	Normal        int // stock > min_stock
	TotalValue    decimal.Decimal // sum(stock * price) sobre productos activos
}

// ProductRepository define el puerto de persistencia para el catálogo (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateStock actualiza solo la columna stock (la usa el motor de
	// movimientos dentro de su transacción).
	UpdateStock(productID string, stock decimal.Decimal) error
	List(includeInactive bool, limit, offset int) ([]*entity.Product, error)
	// ListIDs devuelve los ids del catálogo (excluyendo soft-deleted salvo
	// includeInactive). Insumo de la resta LedgerIDs − CatalogIDs.
	ListIDs(includeInactive bool) ([]string, error)
	// ListStockedWithoutMovements devuelve productos con stock > 0 y cero
	// movimientos en el ledger (anti-join en SQL, no loop por producto).
	ListStockedWithoutMovements() ([]string, error)
	// BalanceMismatches compara el stock cacheado contra el último NewQty del
	// ledger por producto.
	BalanceMismatches() ([]BalanceMismatch, error)
	Stats() (*InventoryStats, error)
	// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Product, error)
}
