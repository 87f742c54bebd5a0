package reconcile_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

// fakeStore simula catálogo + ledger en memoria para los tests de los motores
// de validación y remediación. Los campos fail* inyectan fallos de almacén.
type fakeStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.Movement

	failListIDs      error
	failDistinct     error
	failMissing      error
	failBreaks       error
	failMismatches   error
	failDeleteFor    map[string]error
	failCreateFor    map[string]error
	lockedProductIDs []string           // registro de advisory locks tomados
	onLock           func(s *fakeStore, productID string) // hook para simular carreras
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:      map[string]*entity.Product{},
		failDeleteFor: map[string]error{},
		failCreateFor: map[string]error{},
	}
}

func (s *fakeStore) addProduct(id, name string, stock, minStock string, active bool) {
	s.products[id] = &entity.Product{
		ID:       id,
		Name:     name,
		Stock:    decimal.RequireFromString(stock),
		MinStock: decimal.RequireFromString(minStock),
		Active:   active,
	}
}

func (s *fakeStore) addMovement(productID, productName, movType, qty, prev, next string, at time.Time) {
	q := decimal.RequireFromString(qty)
	s.movements = append(s.movements, &entity.Movement{
		ID:          productID + "-" + at.Format("150405.000"),
		ProductID:   productID,
		ProductName: productName,
		Type:        movType,
		Quantity:    q,
		PreviousQty: decimal.RequireFromString(prev),
		NewQty:      decimal.RequireFromString(next),
		CreatedAt:   at,
	})
}

// ── ProductRepository ────────────────────────────────────────────────────────

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failCreateFor[p.ID]; err != nil {
		return err
	}
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateStock(id string, stock decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (r *fakeProductRepo) List(includeInactive bool, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if !includeInactive && !p.Active {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) ListIDs(includeInactive bool) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failListIDs != nil {
		return nil, r.s.failListIDs
	}
	var ids []string
	for id, p := range r.s.products {
		if !includeInactive && !p.Active {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeProductRepo) ListStockedWithoutMovements() ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failMissing != nil {
		return nil, r.s.failMissing
	}
	hasMovements := map[string]bool{}
	for _, m := range r.s.movements {
		hasMovements[m.ProductID] = true
	}
	var ids []string
	for id, p := range r.s.products {
		if p.Active && p.Stock.GreaterThan(decimal.Zero) && !hasMovements[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeProductRepo) BalanceMismatches() ([]repository.BalanceMismatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failMismatches != nil {
		return nil, r.s.failMismatches
	}
	latest := map[string]*entity.Movement{}
	for _, m := range r.s.movements {
		prev, ok := latest[m.ProductID]
		if !ok || m.CreatedAt.After(prev.CreatedAt) {
			latest[m.ProductID] = m
		}
	}
	var out []repository.BalanceMismatch
	for id, p := range r.s.products {
		m, ok := latest[id]
		if !ok || !p.Active {
			continue
		}
		if !p.Stock.Equal(m.NewQty) {
			out = append(out, repository.BalanceMismatch{
				ProductID:    id,
				CatalogStock: p.Stock,
				LedgerStock:  m.NewQty,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *fakeProductRepo) Stats() (*repository.InventoryStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s := &repository.InventoryStats{TotalValue: decimal.Zero}
	for _, p := range r.s.products {
		if !p.Active {
			continue
		}
		s.TotalProducts++
		switch {
		case p.Stock.IsZero():
			s.OutOfStock++
		case p.Stock.LessThanOrEqual(p.MinStock):
			s.LowStock++
		default:
			s.Normal++
		}
		s.TotalValue = s.TotalValue.Add(p.Stock.Mul(p.Price))
	}
	return s, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

// ── MovementRepository ───────────────────────────────────────────────────────

type fakeMovementRepo struct{ s *fakeStore }

func (r *fakeMovementRepo) Create(m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) List(filter repository.MovementFilter, limit, offset int) ([]*repository.MovementRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.MovementRow
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		row := repository.MovementRow{Movement: *m}
		if p, ok := r.s.products[m.ProductID]; ok {
			row.CatalogName = p.Name
			row.CatalogSKU = p.SKU
		}
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMovementRepo) Latest(productID string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.Movement
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeMovementRepo) DistinctProductIDs() ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failDistinct != nil {
		return nil, r.s.failDistinct
	}
	seen := map[string]bool{}
	var ids []string
	for _, m := range r.s.movements {
		if !seen[m.ProductID] {
			seen[m.ProductID] = true
			ids = append(ids, m.ProductID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeMovementRepo) DeleteByProduct(productID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failDeleteFor[productID]; err != nil {
		return 0, err
	}
	var kept []*entity.Movement
	var deleted int64
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.s.movements = kept
	return deleted, nil
}

func (r *fakeMovementRepo) ContinuityBreaks() ([]repository.ContinuityBreak, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failBreaks != nil {
		return nil, r.s.failBreaks
	}
	byProduct := map[string][]*entity.Movement{}
	for _, m := range r.s.movements {
		byProduct[m.ProductID] = append(byProduct[m.ProductID], m)
	}
	var out []repository.ContinuityBreak
	for id, list := range byProduct {
		sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
		for i := 1; i < len(list); i++ {
			if !list[i-1].NewQty.Equal(list[i].PreviousQty) {
				out = append(out, repository.ContinuityBreak{
					ProductID:   id,
					MovementID:  list[i].ID,
					ExpectedQty: list[i-1].NewQty,
					FoundQty:    list[i].PreviousQty,
					At:          list[i].CreatedAt,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *fakeMovementRepo) LockProduct(productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lockedProductIDs = append(r.s.lockedProductIDs, productID)
	if r.s.onLock != nil {
		r.s.onLock(r.s, productID)
	}
	return nil
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

// fakeTxRunner pasa repos sobre el mismo fakeStore; la atomicidad real la
// cubren los tests de integración del adaptador PostgreSQL.
type fakeTxRunner struct{ s *fakeStore }

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(&fakeMovementRepo{s: r.s}, &fakeProductRepo{s: r.s})
}
