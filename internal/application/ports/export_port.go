package ports

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductSheetWriter escribe el listado de productos en formato de planilla.
// El adaptador decide separador, codificación y formato de números y fechas.
type ProductSheetWriter interface {
	WriteProducts(w io.Writer, products []*entity.Product) error
	ContentType() string
}

// CategoryReportRenderer genera el documento del reporte de stock por categoría.
type CategoryReportRenderer interface {
	RenderCategoryReport(
		ctx context.Context,
		rows []entity.CategoryValue,
		summary *entity.StockSummary,
		generatedAt time.Time,
	) ([]byte, error)
}
