package inventory

import (
	"context"

	"github.com/invorya/ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Cada unidad lógica del motor de inventario
// ("apéndice de movimiento + update de stock", "remediación de un huérfano")
// es exactamente una invocación de Run.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
