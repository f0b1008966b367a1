package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el repositorio de movimientos.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta el movimiento. unit_price es NULL en entradas.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	const query = `
		INSERT INTO movements (product_id, kind, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var price decimal.NullDecimal
	if m.UnitPrice != nil {
		price = decimal.NewNullDecimal(*m.UnitPrice)
	}
	err := r.q.QueryRow(ctx, query, m.ProductID, string(m.Kind), m.Quantity, price, m.CreatedAt).Scan(&m.ID)
	if isForeignKeyViolation(err) {
		return domain.ErrProductNotFound
	}
	return wrap("insert movement", err)
}

func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getOne(ctx, `
		SELECT id, product_id, kind, quantity, unit_price, created_at
		FROM movements WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila: una segunda reversión concurrente espera y luego no la encuentra.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getOne(ctx, `
		SELECT id, product_id, kind, quantity, unit_price, created_at
		FROM movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *MovementRepo) getOne(ctx context.Context, query string, id int64) (*entity.Movement, error) {
	var (
		m     entity.Movement
		kind  string
		price decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.ProductID, &kind, &m.Quantity, &price, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get movement", err)
	}
	m.Kind = entity.MovementKind(kind)
	m.UnitPrice = unitPrice(price)
	return &m, nil
}

func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return wrap("delete movement", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

const movementViewSelect = `
	SELECT m.id, m.product_id, m.kind, m.quantity, m.unit_price, m.created_at, p.name
	FROM movements m
	JOIN products p ON p.id = m.product_id`

// ListRecent últimos movimientos con el nombre del producto, más recientes primero.
func (r *MovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.MovementView, error) {
	return r.listViews(ctx, movementViewSelect+`
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1`, limit)
}

func (r *MovementRepo) ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.MovementView, error) {
	return r.listViews(ctx, movementViewSelect+`
		WHERE m.product_id = $2
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1`, limit, productID)
}

func (r *MovementRepo) listViews(ctx context.Context, query string, args ...any) ([]*entity.MovementView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list movements", err)
	}
	defer rows.Close()
	list := make([]*entity.MovementView, 0)
	for rows.Next() {
		var (
			v     entity.MovementView
			kind  string
			price decimal.NullDecimal
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &kind, &v.Quantity, &price, &v.CreatedAt, &v.ProductName); err != nil {
			return nil, wrap("scan movement", err)
		}
		v.Kind = entity.MovementKind(kind)
		v.UnitPrice = unitPrice(price)
		list = append(list, &v)
	}
	return list, wrap("list movements", rows.Err())
}

func (r *MovementRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, wrap("count movements", err)
	}
	return n, nil
}

func unitPrice(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}
