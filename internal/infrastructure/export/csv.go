// Package export implementa los formatos de descarga: planilla CSV de productos
// y PDF del reporte por categoría.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ ports.ProductSheetWriter = (*CSVWriter)(nil)

// Encabezado de la planilla. Se conserva tal cual para no romper las hojas de cálculo existentes.
var productHeader = []string{
	"Id", "Codigo", "Nome", "Categoria", "Quantidade", "Preco", "DataCriacao", "DataAtualizacao",
}

const sheetTimeLayout = "02/01/2006 15:04:05"

// CSVWriter planilla separada por ';' con BOM UTF-8 y coma decimal (abre bien en Excel regional).
type CSVWriter struct{}

// NewCSVWriter construye el escritor.
func NewCSVWriter() *CSVWriter { return &CSVWriter{} }

// ContentType para la respuesta HTTP.
func (CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// WriteProducts escribe encabezado y una fila por producto, en el orden recibido.
func (CSVWriter) WriteProducts(w io.Writer, products []*entity.Product) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)
	cw.Comma = ';'

	if err := cw.Write(productHeader); err != nil {
		return fmt.Errorf("csv: encabezado: %w", err)
	}
	for _, p := range products {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Code,
			p.Name,
			p.Category,
			strconv.Itoa(p.Quantity),
			decimalComma(p.Price.StringFixed(2)),
			p.CreatedAt.Format(sheetTimeLayout),
			p.UpdatedAt.Format(sheetTimeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: producto %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return bw.Close()
}

func decimalComma(s string) string {
	return strings.Replace(s, ".", ",", 1)
}
