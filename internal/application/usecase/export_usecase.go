package usecase

import (
	"bytes"
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ExportUseCase descarga de productos en planilla.
type ExportUseCase struct {
	productRepo repository.ProductRepository
	sheet       ports.ProductSheetWriter
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(productRepo repository.ProductRepository, sheet ports.ProductSheetWriter) *ExportUseCase {
	return &ExportUseCase{productRepo: productRepo, sheet: sheet}
}

// ProductsCSV todos los productos ordenados por nombre. Sin productos devuelve solo el encabezado.
func (uc *ExportUseCase) ProductsCSV(ctx context.Context) ([]byte, string, error) {
	products, err := uc.productRepo.ListByName(ctx)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := uc.sheet.WriteProducts(&buf, products); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), uc.sheet.ContentType(), nil
}
