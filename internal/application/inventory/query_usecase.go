package inventory

import (
	"context"
	"fmt"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/domain"
	domaininv "github.com/invorya/ledger-api/internal/domain/inventory"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// QueryUseCase lecturas del inventario: catálogo con estado proyectado y
// agregados, e historial de movimientos con datos de presentación.
// Solo lectura; no toca ni el catálogo ni el ledger.
type QueryUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	userRepo    repository.UserRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	userRepo repository.UserRepository,
) *QueryUseCase {
	return &QueryUseCase{productRepo: productRepo, movRepo: movRepo, userRepo: userRepo}
}

// ListProducts devuelve el catálogo paginado con el estado clasificado por el
// proyector más los agregados (totales por estado y valor del inventario).
// El estado sale del stock cacheado en el catálogo, no de re-sumar el ledger:
// el ledger es la pista de auditoría, la columna stock es la proyección.
func (uc *QueryUseCase) ListProducts(ctx context.Context, includeInactive bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.List(includeInactive, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: listar productos: %v", domain.ErrStoreUnavailable, err)
	}
	stats, err := uc.productRepo.Stats()
	if err != nil {
		return nil, fmt.Errorf("%w: estadísticas de inventario: %v", domain.ErrStoreUnavailable, err)
	}

	out := &dto.ProductListResponse{
		Products: make([]dto.ProductDTO, 0, len(products)),
		Stats: dto.InventoryStatsDTO{
			TotalProducts: stats.TotalProducts,
			OutOfStock:    stats.OutOfStock,
			LowStock:      stats.LowStock,
			Normal:        stats.Normal,
			TotalValue:    stats.TotalValue,
		},
		Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range products {
		out.Products = append(out.Products, dto.ProductDTO{
			ID:          p.ID,
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			MinStock:    p.MinStock,
			UnitMeasure: p.UnitMeasure,
			Status:      domaininv.Status(p.Stock, p.MinStock),
			Active:      p.Active,
			NeedsReview: p.NeedsReview,
		})
	}
	return out, nil
}

// ListMovements devuelve el historial paginado (fecha descendente). El nombre
// del producto prefiere el catálogo vivo y cae al snapshot del asiento si el
// producto ya no existe; el nombre del actor se resuelve contra usuarios solo
// para mostrar.
func (uc *QueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	rows, err := uc.movRepo.List(filter, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: listar movimientos: %v", domain.ErrStoreUnavailable, err)
	}

	userIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.CreatedBy != "" && !seen[r.CreatedBy] {
			seen[r.CreatedBy] = true
			userIDs = append(userIDs, r.CreatedBy)
		}
	}
	names := map[string]string{}
	if len(userIDs) > 0 {
		if names, err = uc.userRepo.DisplayNames(userIDs); err != nil {
			// El historial sigue siendo útil sin nombres de actor.
			names = map[string]string{}
		}
	}

	out := &dto.MovementListResponse{
		Movements: make([]dto.MovementDTO, 0, len(rows)),
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, r := range rows {
		name := r.CatalogName
		if name == "" {
			name = r.ProductName
		}
		out.Movements = append(out.Movements, dto.MovementDTO{
			ID:          r.ID,
			ProductID:   r.ProductID,
			ProductName: name,
			SKU:         r.CatalogSKU,
			Type:        r.Type,
			Quantity:    r.Quantity,
			PreviousQty: r.PreviousQty,
			NewQty:      r.NewQty,
			Reason:      r.Reason,
			CreatedAt:   r.CreatedAt,
			CreatedBy:   r.CreatedBy,
			UserName:    names[r.CreatedBy],
		})
	}
	return out, nil
}
