package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// ValidationReport reporte estructurado de deriva entre catálogo y ledger.
// Se calcula fresco en cada invocación y nunca se persiste como estado
// autoritativo: es un diagnóstico puntual.
type ValidationReport struct {
	IsValid           bool
	OrphanedInventory []string // ids referenciados por el ledger y ausentes del catálogo
	MissingInventory  []string // ids con stock > 0 en catálogo y cero asientos
	Errors            []string
	Warnings          []string
}

// Config opciones del motor de validación.
type Config struct {
	// IncludeInactive cuenta los productos soft-deleted como parte del
	// catálogo al calcular huérfanos. Apagado, un producto desactivado con
	// historial pasa a reportarse como huérfano.
	IncludeInactive bool
}

// SyncValidationUseCase es el verificador del contrato cache+ledger: compara
// los conjuntos de ids de catálogo y de ledger y reporta deriva estructural
// sin mutar ninguno de los dos. La deriva es su salida esperada, nunca un
// error; los fallos de lectura del almacén sí se propagan, envueltos en
// ErrStoreUnavailable para que el caller distinga "no pude revisar" de
// "revisé y hay problemas".
type SyncValidationUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	cfg         Config
}

// NewSyncValidationUseCase construye el motor de validación.
func NewSyncValidationUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	cfg Config,
) *SyncValidationUseCase {
	return &SyncValidationUseCase{productRepo: productRepo, movRepo: movRepo, cfg: cfg}
}

// Validate ejecuta una pasada completa de detección de deriva:
//
//  1. huérfanos  = ids del ledger − ids del catálogo (errores: esos asientos
//     no se pueden atribuir a ningún producto y no son confiables);
//  2. faltantes  = productos con stock > 0 y cero asientos (warning: saldo
//     sin pista de auditoría, sospechoso pero no necesariamente erróneo);
//  3. roturas de continuidad de saldo y discrepancias stock↔último saldo
//     (warnings: datos históricos pueden preceder al invariante).
//
// IsValid exige cero huérfanos y cero errores; los warnings no invalidan.
// Lectura read-committed, sin locks: el reporte es consultivo y se revalida
// después de cualquier remediación.
func (uc *SyncValidationUseCase) Validate(ctx context.Context) (*ValidationReport, error) {
	catalogIDs, err := uc.productRepo.ListIDs(uc.cfg.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("%w: ids del catálogo: %v", domain.ErrStoreUnavailable, err)
	}
	ledgerIDs, err := uc.movRepo.DistinctProductIDs()
	if err != nil {
		return nil, fmt.Errorf("%w: ids del ledger: %v", domain.ErrStoreUnavailable, err)
	}

	catalog := make(map[string]bool, len(catalogIDs))
	for _, id := range catalogIDs {
		catalog[id] = true
	}
	orphaned := make([]string, 0)
	for _, id := range ledgerIDs {
		if !catalog[id] {
			orphaned = append(orphaned, id)
		}
	}
	sort.Strings(orphaned)

	report := &ValidationReport{
		OrphanedInventory: orphaned,
		MissingInventory:  []string{},
		Errors:            []string{},
		Warnings:          []string{},
	}
	for _, id := range orphaned {
		report.Errors = append(report.Errors,
			fmt.Sprintf("el ledger referencia el producto %s que no existe en el catálogo", id))
	}

	missing, err := uc.productRepo.ListStockedWithoutMovements()
	if err != nil {
		return nil, fmt.Errorf("%w: productos sin historial: %v", domain.ErrStoreUnavailable, err)
	}
	sort.Strings(missing)
	report.MissingInventory = missing
	for _, id := range missing {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("el producto %s tiene stock sin ningún movimiento que lo respalde", id))
	}

	breaks, err := uc.movRepo.ContinuityBreaks()
	if err != nil {
		return nil, fmt.Errorf("%w: continuidad de saldos: %v", domain.ErrStoreUnavailable, err)
	}
	for _, b := range breaks {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("rotura de continuidad en producto %s (movimiento %s): se esperaba saldo %s y el asiento registró %s",
				b.ProductID, b.MovementID, b.ExpectedQty.String(), b.FoundQty.String()))
	}

	mismatches, err := uc.productRepo.BalanceMismatches()
	if err != nil {
		return nil, fmt.Errorf("%w: discrepancias de saldo: %v", domain.ErrStoreUnavailable, err)
	}
	for _, m := range mismatches {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("el catálogo registra stock %s para el producto %s pero el último saldo del ledger es %s",
				m.CatalogStock.String(), m.ProductID, m.LedgerStock.String()))
	}

	report.IsValid = len(report.OrphanedInventory) == 0 && len(report.Errors) == 0
	return report, nil
}
