package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// category es NULL sin categoría (FK a categories.name); el dominio la ve como "".
const productColumns = `id, code, name, COALESCE(category, ''), quantity, price, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y completa su ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	const query = `
		INSERT INTO products (code, name, category, quantity, price, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Code, product.Name, product.Category, product.Quantity, product.Price,
		product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownCategory
	}
	return wrap("insert product", err)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id, "get product")
}

// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id, "get product for update")
}

func (r *ProductRepo) getOne(ctx context.Context, query string, id int64, op string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return p, nil
}

// Update reemplaza los campos editables (incluida la cantidad, como corrección directa).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) (bool, error) {
	const query = `
		UPDATE products
		SET code = $2, name = $3, category = NULLIF($4, ''), quantity = $5, price = $6, updated_at = $7
		WHERE id = $1
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		product.ID, product.Code, product.Name, product.Category, product.Quantity, product.Price,
		product.UpdatedAt,
	).Scan(&product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if isForeignKeyViolation(err) {
			return false, domain.ErrUnknownCategory
		}
		return false, wrap("update product", err)
	}
	return true, nil
}

// UpdateQuantity fija la cantidad (solo la usa el libro de stock, dentro de su transacción).
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id int64, quantity int, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = $3 WHERE id = $1`,
		id, quantity, updatedAt,
	)
	if err != nil {
		return wrap("update product quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List lista los productos, más recientes primero.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id DESC`, "list products")
}

// ListByName lista los productos ordenados por nombre.
func (r *ProductRepo) ListByName(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`, "list products by name")
}

func (r *ProductRepo) list(ctx context.Context, query, op string) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrap("scan product", err)
		}
		list = append(list, p)
	}
	return list, wrap(op, rows.Err())
}

// CountByCategory cuenta los productos que referencian la categoría.
func (r *ProductRepo) CountByCategory(ctx context.Context, category string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category = $1`, category).Scan(&n)
	if err != nil {
		return 0, wrap("count products by category", err)
	}
	return n, nil
}

// Delete elimina un producto. La FK de movements es RESTRICT.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrProductHasMovements
		}
		return false, wrap("delete product", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.Quantity, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
