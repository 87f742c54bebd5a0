package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/invorya/ledger-api/internal/domain"
	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// Los numéricos se leen con COALESCE: filas legadas pueden traer NULL y el
// proyector las trata como cero en lugar de fallar.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para el catálogo. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, COALESCE(sku, ''), name, COALESCE(description, ''),
		COALESCE(price, 0), COALESCE(stock, 0), COALESCE(min_stock, 0),
		COALESCE(unit_measure, ''), active, needs_review, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description,
		&p.Price, &p.Stock, &p.MinStock,
		&p.UnitMeasure, &p.Active, &p.NeedsReview, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, price, stock, min_stock, unit_measure, active, needs_review, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.SKU, product.Name, product.Description,
		product.Price, product.Stock, product.MinStock, product.UnitMeasure,
		product.Active, product.NeedsReview, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(context.Background(),
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(context.Background(),
		`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
// Serializa a los escritores de un mismo saldo dentro de la transacción.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(context.Background(),
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// Update actualiza un producto existente. No permite modificar Stock: el stock
// solo cambia vía movimientos o remediación.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, min_stock = $5,
			unit_measure = $6, active = $7, needs_review = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.Description, product.Price, product.MinStock,
		product.UnitMeasure, product.Active, product.NeedsReview, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateStock actualiza solo la columna stock (la usa el motor de movimientos
// dentro de su transacción).
func (r *ProductRepo) UpdateStock(productID string, stock decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`,
		productID, stock,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

// List lista productos con paginación. includeInactive incluye soft-deleted.
func (r *ProductRepo) List(includeInactive bool, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY name ASC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListIDs devuelve los ids del catálogo (excluyendo soft-deleted salvo includeInactive).
func (r *ProductRepo) ListIDs(includeInactive bool) ([]string, error) {
	query := `SELECT id FROM products`
	if !includeInactive {
		query += ` WHERE active`
	}
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListStockedWithoutMovements devuelve ids con stock > 0 y cero asientos en el
// ledger. Anti-join en SQL, no un loop por producto.
func (r *ProductRepo) ListStockedWithoutMovements() ([]string, error) {
	query := `
		SELECT p.id
		FROM products p
		WHERE p.active
		  AND COALESCE(p.stock, 0) > 0
		  AND NOT EXISTS (
			SELECT 1 FROM inventory_movements m WHERE m.product_id = p.id
		  )`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list stocked without movements: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BalanceMismatches compara el stock cacheado del catálogo contra el último
// NewQty observado por el ledger, producto por producto, en una sola consulta.
func (r *ProductRepo) BalanceMismatches() ([]repository.BalanceMismatch, error) {
	query := `
		SELECT p.id, COALESCE(p.stock, 0), m.new_qty
		FROM products p
		JOIN LATERAL (
			SELECT im.new_qty
			FROM inventory_movements im
			WHERE im.product_id = p.id
			ORDER BY im.created_at DESC, im.id DESC
			LIMIT 1
		) m ON true
		WHERE p.active
		  AND COALESCE(p.stock, 0) <> m.new_qty`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("balance mismatches: %w", err)
	}
	defer rows.Close()
	var list []repository.BalanceMismatch
	for rows.Next() {
		var m repository.BalanceMismatch
		if err := rows.Scan(&m.ProductID, &m.CatalogStock, &m.LedgerStock); err != nil {
			return nil, fmt.Errorf("scan balance mismatch: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Stats agregados del catálogo activo en una sola pasada.
func (r *ProductRepo) Stats() (*repository.InventoryStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE COALESCE(stock, 0) = 0),
			COUNT(*) FILTER (WHERE COALESCE(stock, 0) > 0 AND COALESCE(stock, 0) <= COALESCE(min_stock, 0)),
			COUNT(*) FILTER (WHERE COALESCE(stock, 0) > COALESCE(min_stock, 0)),
			COALESCE(SUM(COALESCE(stock, 0) * COALESCE(price, 0)), 0)
		FROM products
		WHERE active`
	var s repository.InventoryStats
	err := r.q.QueryRow(context.Background(), query).Scan(
		&s.TotalProducts, &s.OutOfStock, &s.LowStock, &s.Normal, &s.TotalValue,
	)
	if err != nil {
		return nil, fmt.Errorf("inventory stats: %w", err)
	}
	return &s, nil
}
