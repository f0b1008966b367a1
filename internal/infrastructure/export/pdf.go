package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ ports.CategoryReportRenderer = (*PDFRenderer)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// PDFRenderer genera el reporte de stock por categoría en A4 con Maroto v2.
//
//	┌──────────────────────────────────────────────┐
//	│ Título + fecha de generación                  │
//	│ Categoría | Productos | Unidades | Valor      │
//	│ ...                                           │
//	│ Totales + indicadores de stock                │
//	└──────────────────────────────────────────────┘
type PDFRenderer struct {
	title string
}

// NewPDFRenderer construye el generador. title va en el encabezado y en los metadatos.
func NewPDFRenderer(title string) *PDFRenderer {
	if title == "" {
		title = "Reporte de stock por categoría"
	}
	return &PDFRenderer{title: title}
}

// RenderCategoryReport genera el PDF y devuelve sus bytes.
func (r *PDFRenderer) RenderCategoryReport(
	_ context.Context,
	rows []entity.CategoryValue,
	summary *entity.StockSummary,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(r.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headerRow(generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, cv := range rows {
		m.AddRows(categoryRow(cv))
	}
	if len(rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin productos registrados.", props.Text{Size: 9, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	if summary != nil {
		m.AddRows(totalsRow(summary))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *PDFRenderer) headerRow(generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(r.title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Categoría", 5, align.Left),
		h("Productos", 2, align.Center),
		h("Unidades", 2, align.Right),
		h("Valor", 3, align.Right),
	)
}

func categoryRow(cv entity.CategoryValue) core.Row {
	name := cv.Category
	if name == "" {
		name = "(sin categoría)"
	}
	return row.New(7).Add(
		col.New(5).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(fmt.Sprintf("%d", cv.ProductCount), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(fmt.Sprintf("%d", cv.TotalQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(3).Add(text.New("$"+formatMoney(cv.TotalValue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func totalsRow(s *entity.StockSummary) core.Row {
	label := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Productos:", 1),
			label("Sin stock:", 7),
			label("Stock bajo:", 13),
			label("VALOR TOTAL:", 19),
		),
		col.New(3).Add(
			value(fmt.Sprintf("%d", s.TotalProducts), 1),
			value(fmt.Sprintf("%d", s.OutOfStock), 7),
			value(fmt.Sprintf("%d", s.LowStock), 13),
			value("$"+formatMoney(s.TotalValue), 19),
		),
	)
}

// formatMoney separa miles con punto y decimales con coma: 1234567.5 → "1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
