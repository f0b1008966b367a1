package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// Quantity es el stock autoritativo; solo lo modifican los movimientos (o una edición directa).
type Product struct {
	ID        int64
	Code      string // código interno, no único
	Name      string
	Category  string // nombre de la categoría (referencia desnormalizada)
	Quantity  int
	Price     decimal.Decimal // precio unitario de venta
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Value devuelve Quantity × Price.
func (p *Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
