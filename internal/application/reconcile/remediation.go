package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/application/inventory"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
	"github.com/invorya/ledger-api/pkg/logger"
)

// Acciones de remediación. Mutuamente excluyentes: el operador elige un solo
// desenlace para todo el conjunto de huérfanos.
const (
	ActionMigrate = "migrate" // aditiva: recrea entradas de catálogo, preserva historial
	ActionClean   = "clean"   // destructiva e irreversible: borra los asientos huérfanos
)

// RemediationOutcome resultado por producto de una remediación.
type RemediationOutcome struct {
	ProductID string
	OK        bool
	Detail    string
	Err       error
}

// RemediationResult desenlace de una invocación de remediación. Success exige
// que los ids objetivo ya no figuren como huérfanos en la revalidación, no
// solo que las escrituras no fallaran.
type RemediationResult struct {
	Success    bool
	Action     string
	Message    string
	Outcomes   []RemediationOutcome
	Validation *ValidationReport
}

// RemediationUseCase ejecuta exactamente una acción confirmada por el operador
// contra el conjunto de huérfanos vigente. Nunca se dispara sola: siempre es
// una invocación explícita y queda registrada en el log. Cada id se remedia en
// su propia transacción con advisory lock sobre el id (escritor único por
// producto, sin lock global del motor), así un fallo parcial deja unidades
// completas aplicadas y reporta por id qué quedó hecho y qué no.
type RemediationUseCase struct {
	txRunner  inventory.TxRunner
	validator *SyncValidationUseCase
	log       *logger.Logger
}

// NewRemediationUseCase construye el controlador de remediación.
func NewRemediationUseCase(txRunner inventory.TxRunner, validator *SyncValidationUseCase, log *logger.Logger) *RemediationUseCase {
	return &RemediationUseCase{txRunner: txRunner, validator: validator, log: log}
}

// Execute valida la acción, calcula el conjunto de huérfanos, aplica la
// remediación id por id y revalida. Reglas:
//
//   - acción desconocida: ErrInvalidInput antes de tocar el almacén;
//   - migrate sin huérfanos: no-op exitoso (re-ejecutar migrate es idempotente);
//   - clean sin huérfanos: ErrInvalidInput (pedir un borrado irreversible sin
//     nada que borrar es un error del operador);
//   - cualquier fallo del almacén en la validación inicial o final se propaga
//     como ErrStoreUnavailable, nunca como "sin deriva".
func (uc *RemediationUseCase) Execute(ctx context.Context, action, actorID string) (*RemediationResult, error) {
	if action != ActionMigrate && action != ActionClean {
		return nil, fmt.Errorf("%w: acción de remediación desconocida %q", domain.ErrInvalidInput, action)
	}

	report, err := uc.validator.Validate(ctx)
	if err != nil {
		return nil, err
	}
	targets := report.OrphanedInventory
	if len(targets) == 0 {
		if action == ActionClean {
			return nil, fmt.Errorf("%w: no hay inventario huérfano que limpiar", domain.ErrInvalidInput)
		}
		// migrate idempotente: sin huérfanos no hay nada que crear.
		return &RemediationResult{
			Success:    true,
			Action:     action,
			Message:    "no hay inventario huérfano; nada que migrar",
			Outcomes:   []RemediationOutcome{},
			Validation: report,
		}, nil
	}

	uc.log.Info().
		Str("action", action).
		Str("actor", actorID).
		Int("orphans", len(targets)).
		Msg("iniciando remediación de inventario huérfano")

	outcomes := make([]RemediationOutcome, 0, len(targets))
	for _, id := range targets {
		var outcome RemediationOutcome
		switch action {
		case ActionMigrate:
			outcome = uc.migrateOne(ctx, id)
		case ActionClean:
			outcome = uc.cleanOne(ctx, id)
		}
		outcomes = append(outcomes, outcome)
		if !outcome.OK {
			uc.log.Warn().
				Str("action", action).
				Str("product_id", id).
				Err(outcome.Err).
				Msg("remediación fallida para el producto")
		}
	}

	// Postcondición: revalidar y confirmar que los objetivos ya no son huérfanos.
	fresh, err := uc.validator.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("remediación aplicada pero la revalidación falló: %w", err)
	}
	stillOrphan := make(map[string]bool, len(fresh.OrphanedInventory))
	for _, id := range fresh.OrphanedInventory {
		stillOrphan[id] = true
	}
	success := true
	failed := 0
	for i := range outcomes {
		if stillOrphan[outcomes[i].ProductID] && outcomes[i].OK {
			outcomes[i].OK = false
			outcomes[i].Err = errors.New("el producto sigue huérfano tras la remediación")
		}
		if !outcomes[i].OK {
			success = false
			failed++
		}
	}

	msg := fmt.Sprintf("%d producto(s) remediados con acción %s", len(targets)-failed, action)
	if failed > 0 {
		msg = fmt.Sprintf("remediación parcial: %d de %d producto(s) fallaron", failed, len(targets))
	}
	uc.log.Info().
		Str("action", action).
		Str("actor", actorID).
		Bool("success", success).
		Int("failed", failed).
		Msg("remediación finalizada")

	return &RemediationResult{
		Success:    success,
		Action:     action,
		Message:    msg,
		Outcomes:   outcomes,
		Validation: fresh,
	}, nil
}

// migrateOne recrea la entrada de catálogo de un huérfano a partir de los
// mejores metadatos disponibles en el ledger. Aditiva: jamás borra ni muta
// movimientos. Si el producto ya existe (carrera con otra migración) es un
// no-op exitoso.
func (uc *RemediationUseCase) migrateOne(ctx context.Context, productID string) RemediationOutcome {
	out := RemediationOutcome{ProductID: productID}
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := movRepo.LockProduct(productID); err != nil {
			return err
		}
		if existing, err := productRepo.GetByID(productID); err != nil {
			return err
		} else if existing != nil {
			out.Detail = "el producto ya existe en el catálogo"
			return nil
		}

		latest, err := movRepo.Latest(productID)
		if err != nil {
			return err
		}
		stock := decimal.Zero
		name := ""
		if latest != nil {
			stock = latest.NewQty
			name = latest.ProductName
		}
		if name == "" {
			// Placeholder explícito, nunca un nombre plausible inventado.
			name = "Producto recuperado " + productID
		}

		now := time.Now()
		p := &entity.Product{
			ID:          productID,
			Name:        name,
			Price:       decimal.Zero,
			Stock:       stock,
			MinStock:    decimal.Zero,
			Active:      true,
			NeedsReview: true, // requiere revisión del operador
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := productRepo.Create(p); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				out.Detail = "el producto ya existe en el catálogo"
				return nil
			}
			return err
		}
		out.Detail = fmt.Sprintf("recreado con stock %s, pendiente de revisión", stock.String())
		return nil
	})
	if err != nil {
		out.Err = err
		return out
	}
	out.OK = true
	return out
}

// cleanOne elimina todos los asientos de un huérfano. Destructiva e
// irreversible; no toca filas del catálogo.
func (uc *RemediationUseCase) cleanOne(ctx context.Context, productID string) RemediationOutcome {
	out := RemediationOutcome{ProductID: productID}
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.ProductRepository,
	) error {
		if err := movRepo.LockProduct(productID); err != nil {
			return err
		}
		n, err := movRepo.DeleteByProduct(productID)
		if err != nil {
			return err
		}
		out.Detail = fmt.Sprintf("%d movimiento(s) eliminados", n)
		return nil
	})
	if err != nil {
		out.Err = err
		return out
	}
	out.OK = true
	return out
}
