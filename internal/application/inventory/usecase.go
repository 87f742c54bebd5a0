package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de inventario de forma
// transaccional (ENTRADA, SALIDA, AJUSTE) con bloqueo de fila del producto
// (SELECT FOR UPDATE) y Commit/Rollback. Cada asiento captura el saldo
// anterior y el nuevo al momento de la escritura; el stock del catálogo se
// actualiza en la misma transacción para mantener el contrato cache+ledger.
type RegisterMovementUseCase struct {
	txRunner TxRunner
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner}
}

// MovementInput entrada para registrar un movimiento.
type MovementInput struct {
	UserID    string
	ProductID string
	Type      string // ENTRADA, SALIDA, AJUSTE
	Quantity  decimal.Decimal
	Reason    string
}

// RegisterMovement valida la entrada, inicia una transacción, bloquea la fila
// del producto y persiste asiento + stock como una unidad atómica.
// El stock observado nunca queda negativo: SALIDA o AJUSTE- por encima del
// saldo devuelven ErrInsufficientStock y la transacción se revierte.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) error {
	if input.ProductID == "" || !entity.ValidMovementType(input.Type) {
		return domain.ErrInvalidInput
	}
	switch input.Type {
	case entity.MovementTypeENTRADA, entity.MovementTypeSALIDA:
		if !input.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeAJUSTE:
		// AJUSTE lleva signo pero nunca magnitud cero.
		if input.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del producto para serializar escritores del mismo saldo.
		product, err := productRepo.GetForUpdate(input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		previous := product.Stock
		var delta decimal.Decimal
		switch input.Type {
		case entity.MovementTypeENTRADA:
			delta = input.Quantity
		case entity.MovementTypeSALIDA:
			delta = input.Quantity.Neg()
		case entity.MovementTypeAJUSTE:
			delta = input.Quantity
		}
		newQty := previous.Add(delta)
		if newQty.LessThan(decimal.Zero) {
			return domain.ErrInsufficientStock
		}

		if err := productRepo.UpdateStock(product.ID, newQty); err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Type:        input.Type,
			Quantity:    delta,
			PreviousQty: previous,
			NewQty:      newQty,
			Reason:      input.Reason,
			CreatedAt:   now,
			CreatedBy:   input.UserID,
		}
		return movRepo.Create(mov)
	})
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) error {
	return uc.RegisterMovement(ctx, MovementInput{
		UserID:    userID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
}
