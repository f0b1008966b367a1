package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportUseCase reportes de solo lectura sobre el stock confirmado.
type ReportUseCase struct {
	repo              repository.ReportRepository
	renderer          ports.CategoryReportRenderer
	lowStockThreshold int
	now               func() time.Time
}

// NewReportUseCase construye el caso de uso. renderer puede ser nil si no se sirve el PDF.
func NewReportUseCase(repo repository.ReportRepository, renderer ports.CategoryReportRenderer, lowStockThreshold int) *ReportUseCase {
	return &ReportUseCase{repo: repo, renderer: renderer, lowStockThreshold: lowStockThreshold, now: time.Now}
}

// CategoryValues total de unidades y valor por categoría, ordenado por categoría.
func (uc *ReportUseCase) CategoryValues(ctx context.Context) ([]dto.CategoryValueResponse, error) {
	rows, err := uc.repo.ValueByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryValueResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCategoryValueResponse(r))
	}
	return out, nil
}

// CategoryDetail fila del reporte para una categoría. "" es el grupo sin categoría.
func (uc *ReportUseCase) CategoryDetail(ctx context.Context, name string) (*dto.CategoryValueResponse, error) {
	name = strings.TrimSpace(name)
	rows, err := uc.repo.ValueByCategory(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.Category == name {
			out := toCategoryValueResponse(r)
			return &out, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// Summary indicadores generales del inventario.
func (uc *ReportUseCase) Summary(ctx context.Context) (*dto.StockSummaryResponse, error) {
	s, err := uc.repo.Summary(ctx, uc.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &dto.StockSummaryResponse{
		TotalProducts:     s.TotalProducts,
		LowStock:          s.LowStock,
		OutOfStock:        s.OutOfStock,
		TotalQuantity:     s.TotalQuantity,
		TotalValue:        s.TotalValue,
		LowStockThreshold: uc.lowStockThreshold,
	}, nil
}

// CategoryPDF reporte por categoría con totales, en PDF.
func (uc *ReportUseCase) CategoryPDF(ctx context.Context) ([]byte, error) {
	if uc.renderer == nil {
		return nil, domain.ErrServiceUnavailable
	}
	rows, err := uc.repo.ValueByCategory(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := uc.repo.Summary(ctx, uc.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderCategoryReport(ctx, rows, summary, uc.now())
}

func toCategoryValueResponse(r entity.CategoryValue) dto.CategoryValueResponse {
	return dto.CategoryValueResponse{
		Category:      r.Category,
		ProductCount:  r.ProductCount,
		TotalQuantity: r.TotalQuantity,
		TotalValue:    r.TotalValue,
	}
}
