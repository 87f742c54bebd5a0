package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar movimientos.
type MovementFilter struct {
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time
}

// ContinuityBreak es una rotura de continuidad en el saldo de un producto:
// el NewQty de un asiento no coincide con el PreviousQty del siguiente.
// Advertencia, no error: hay asientos históricos anteriores al invariante.
type ContinuityBreak struct {
	ProductID   string
	MovementID  string
	ExpectedQty decimal.Decimal // NewQty del asiento anterior
	FoundQty    decimal.Decimal // PreviousQty del asiento con rotura
	At          time.Time
}

// BalanceMismatch es una discrepancia entre el stock cacheado en el catálogo
// y el último saldo observado por el ledger para el mismo producto.
type BalanceMismatch struct {
	ProductID    string
	CatalogStock decimal.Decimal
	LedgerStock  decimal.Decimal // NewQty del movimiento más reciente
}

// MovementRow asiento del ledger más los datos de catálogo resueltos para
// presentación. CatalogName/CatalogSKU vienen de un LEFT JOIN y quedan vacíos
// cuando el producto ya no existe: los huérfanos se listan igual.
type MovementRow struct {
	entity.Movement
	CatalogName string
	CatalogSKU  string
}

// MovementRepository define el puerto de persistencia del libro de movimientos.
// Las lecturas nunca dependen de que ProductID resuelva en el catálogo; esa
// independencia es la señal que necesita el motor de sync-validation.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	List(filter MovementFilter, limit, offset int) ([]*MovementRow, error)
	// Latest devuelve el movimiento más reciente de un producto (nil si no hay).
	Latest(productID string) (*entity.Movement, error)
	// DistinctProductIDs devuelve todo product_id referenciado alguna vez por
	// el ledger. Respaldado por índice: se recalcula en cada pasada de validación.
	DistinctProductIDs() ([]string, error)
	// DeleteByProduct elimina todos los movimientos de un producto y devuelve
	// cuántos borró. Solo lo invoca la remediación `clean` sobre huérfanos.
	DeleteByProduct(productID string) (int64, error)
	// ContinuityBreaks detecta roturas de continuidad de saldo en todo el
	// ledger (una sola consulta con función de ventana, no un loop por producto).
	ContinuityBreaks() ([]ContinuityBreak, error)
	// LockProduct toma un advisory lock transaccional sobre el id de producto.
	// Disciplina de escritor único por id durante la remediación; no bloquea
	// las lecturas de validación.
	LockProduct(productID string) error
}
