package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de stock.
type MovementKind string

// Tipos de movimiento.
const (
	MovementInflow  MovementKind = "inflow"  // entrada
	MovementOutflow MovementKind = "outflow" // salida
)

// Valid indica si el tipo es uno de los reconocidos.
func (k MovementKind) Valid() bool {
	return k == MovementInflow || k == MovementOutflow
}

// Movement registra una entrada o salida aplicada sobre un producto.
// Es inmutable: solo se crea (Apply) o se elimina revirtiendo su efecto (Reverse).
type Movement struct {
	ID        int64
	ProductID int64
	Kind      MovementKind
	Quantity  int
	UnitPrice *decimal.Decimal // precio del producto al momento de la salida; nil en entradas
	CreatedAt time.Time
}

// Total devuelve UnitPrice × Quantity para salidas y cero para entradas.
func (m *Movement) Total() decimal.Decimal {
	if m.UnitPrice == nil {
		return decimal.Zero
	}
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
}

// MovementView movimiento con el nombre del producto, para listados.
type MovementView struct {
	Movement
	ProductName string
}
