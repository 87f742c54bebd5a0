package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invorya/ledger-api/internal/domain/entity"
	"github.com/invorya/ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). El ledger es append-only: no hay Update, y Delete
// existe solo para la remediación de huérfanos.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, product_id, COALESCE(product_name, ''), type,
		quantity, COALESCE(previous_qty, 0), COALESCE(new_qty, 0),
		COALESCE(reason, ''), created_at, COALESCE(created_by, '')`

// Create persiste un asiento del ledger.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, product_name, type, quantity, previous_qty, new_qty, reason, created_at, created_by)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''))`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.ProductName, movement.Type,
		movement.Quantity, movement.PreviousQty, movement.NewQty,
		movement.Reason, movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	var m entity.Movement
	err := r.q.QueryRow(context.Background(),
		`SELECT `+movementColumns+` FROM inventory_movements WHERE id = $1`, id).Scan(
		&m.ID, &m.ProductID, &m.ProductName, &m.Type,
		&m.Quantity, &m.PreviousQty, &m.NewQty,
		&m.Reason, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// List lista asientos por fecha descendente con filtros opcionales.
// LEFT JOIN contra el catálogo: un product_id sin resolver lista igual, con
// nombre/SKU de catálogo vacíos. Esa es la señal que consume sync-validation.
func (r *MovementRepo) List(filter repository.MovementFilter, limit, offset int) ([]*repository.MovementRow, error) {
	query := `
		SELECT m.id, m.product_id, COALESCE(m.product_name, ''), m.type,
			m.quantity, COALESCE(m.previous_qty, 0), COALESCE(m.new_qty, 0),
			COALESCE(m.reason, ''), m.created_at, COALESCE(m.created_by, ''),
			COALESCE(p.name, ''), COALESCE(p.sku, '')
		FROM inventory_movements m
		LEFT JOIN products p ON p.id = m.product_id
		WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND m.product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND m.type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND m.created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND m.created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY m.created_at DESC, m.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*repository.MovementRow
	for rows.Next() {
		var row repository.MovementRow
		if err := rows.Scan(
			&row.ID, &row.ProductID, &row.ProductName, &row.Type,
			&row.Quantity, &row.PreviousQty, &row.NewQty,
			&row.Reason, &row.CreatedAt, &row.CreatedBy,
			&row.CatalogName, &row.CatalogSKU,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

// Latest devuelve el asiento más reciente de un producto (nil si no hay).
func (r *MovementRepo) Latest(productID string) (*entity.Movement, error) {
	var m entity.Movement
	err := r.q.QueryRow(context.Background(),
		`SELECT `+movementColumns+`
		FROM inventory_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, productID).Scan(
		&m.ID, &m.ProductID, &m.ProductName, &m.Type,
		&m.Quantity, &m.PreviousQty, &m.NewQty,
		&m.Reason, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest movement: %w", err)
	}
	return &m, nil
}

// DistinctProductIDs devuelve todo product_id referenciado por el ledger.
// Respaldado por el índice sobre product_id: se recalcula en cada validación.
func (r *MovementRepo) DistinctProductIDs() ([]string, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT DISTINCT product_id FROM inventory_movements`)
	if err != nil {
		return nil, fmt.Errorf("distinct product ids: %w", err)
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

// DeleteByProduct elimina todos los asientos de un producto. Solo lo invoca la
// remediación clean sobre huérfanos: nunca toca filas del catálogo.
func (r *MovementRepo) DeleteByProduct(productID string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM inventory_movements WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// ContinuityBreaks detecta asientos cuyo previous_qty no coincide con el
// new_qty del asiento anterior del mismo producto. Una sola consulta con LAG,
// no un loop por producto.
func (r *MovementRepo) ContinuityBreaks() ([]repository.ContinuityBreak, error) {
	query := `
		SELECT product_id, id, expected, found, created_at
		FROM (
			SELECT m.product_id, m.id, m.created_at,
				LAG(m.new_qty) OVER (PARTITION BY m.product_id ORDER BY m.created_at, m.id) AS expected,
				COALESCE(m.previous_qty, 0) AS found
			FROM inventory_movements m
		) s
		WHERE expected IS NOT NULL AND expected <> found
		ORDER BY product_id, created_at`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("continuity breaks: %w", err)
	}
	defer rows.Close()
	var list []repository.ContinuityBreak
	for rows.Next() {
		var b repository.ContinuityBreak
		if err := rows.Scan(&b.ProductID, &b.MovementID, &b.ExpectedQty, &b.FoundQty, &b.At); err != nil {
			return nil, fmt.Errorf("scan continuity break: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// LockProduct toma un advisory lock transaccional sobre el id de producto
// (escritor único por id durante la remediación). Se libera solo al terminar
// la transacción.
func (r *MovementRepo) LockProduct(productID string) error {
	_, err := r.q.Exec(context.Background(),
		`SELECT pg_advisory_xact_lock(hashtext($1))`, productID)
	if err != nil {
		return fmt.Errorf("lock product %s: %w", productID, err)
	}
	return nil
}
