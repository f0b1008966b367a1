package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ReportRepository consultas de solo lectura sobre la tabla de productos confirmada.
type ReportRepository interface {
	// ValueByCategory agrupa por categoría, ordenado por nombre de categoría.
	ValueByCategory(ctx context.Context) ([]entity.CategoryValue, error)
	Summary(ctx context.Context, lowStockThreshold int) (*entity.StockSummary, error)
}
