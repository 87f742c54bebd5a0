package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	domaininv "github.com/invorya/ledger-api/internal/domain/inventory"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para el catálogo. El stock no se edita por
// aquí: solo cambia vía movimientos o remediación.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto con stock 0.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductDTO, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.LessThan(decimal.Zero) || in.MinStock.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.SKU != "" {
		existing, _ := uc.repo.GetBySKU(in.SKU)
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       decimal.Zero,
		MinStock:    in.MinStock,
		UnitMeasure: in.UnitMeasure,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

// GetByID obtiene un producto por ID (nil si no existe).
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductDTO, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductDTO(product), nil
}

// Update actualiza un producto. Editar un producto marcado needs_review lo
// desmarca: al tocarlo, el operador ya lo revisó.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductDTO, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name == "" || in.Price.LessThan(decimal.Zero) || in.MinStock.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.MinStock = in.MinStock
	product.UnitMeasure = in.UnitMeasure
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.NeedsReview = false
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

// Deactivate marca un producto como inactivo (soft-delete). Las filas nunca se
// borran físicamente mientras haya movimientos que las referencien.
func (uc *ProductUseCase) Deactivate(id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	product.Active = false
	product.UpdatedAt = time.Now()
	return uc.repo.Update(product)
}

func toProductDTO(p *entity.Product) *dto.ProductDTO {
	return &dto.ProductDTO{
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
	}
}
