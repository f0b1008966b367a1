package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de valorización de inventario.
type ReportRepo struct {
	q Querier
}

// NewReportRepository crea el repositorio de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// ValueByCategory total de unidades y valor (cantidad × precio) por categoría.
func (r *ReportRepo) ValueByCategory(ctx context.Context) ([]entity.CategoryValue, error) {
	const query = `
		SELECT COALESCE(category, '') AS category,
		       COUNT(*),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(quantity * price), 0)
		FROM products
		GROUP BY 1
		ORDER BY 1`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrap("value by category", err)
	}
	defer rows.Close()
	out := make([]entity.CategoryValue, 0)
	for rows.Next() {
		var row entity.CategoryValue
		if err := rows.Scan(&row.Category, &row.ProductCount, &row.TotalQuantity, &row.TotalValue); err != nil {
			return nil, wrap("scan category value", err)
		}
		out = append(out, row)
	}
	return out, wrap("value by category", rows.Err())
}

// Summary totales globales; low stock es 0 < quantity <= umbral.
func (r *ReportRepo) Summary(ctx context.Context, lowStockThreshold int) (*entity.StockSummary, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE quantity > 0 AND quantity <= $1),
		       COUNT(*) FILTER (WHERE quantity = 0),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(quantity * price), 0)
		FROM products`
	var s entity.StockSummary
	err := r.q.QueryRow(ctx, query, lowStockThreshold).Scan(
		&s.TotalProducts, &s.LowStock, &s.OutOfStock, &s.TotalQuantity, &s.TotalValue,
	)
	if err != nil {
		return nil, wrap("stock summary", err)
	}
	return &s, nil
}
