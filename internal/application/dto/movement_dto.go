package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movements.
type RegisterMovementRequest struct {
	Kind      string `json:"kind"` // inflow | outflow
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// MovementResult confirmación de un movimiento aplicado.
type MovementResult struct {
	MovementID  int64  `json:"movement_id"`
	Message     string `json:"message"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	NewQuantity int    `json:"new_quantity"`
}

// ReversalResult confirmación de un movimiento eliminado y su ajuste inverso.
type ReversalResult struct {
	Message     string `json:"message"`
	Operation   string `json:"operation"` // addition | subtraction
	MovementID  int64  `json:"movement_id"`
	ProductID   int64  `json:"product_id"`
	NewQuantity int    `json:"new_quantity"`
}

// MovementResponse movimiento para listados.
type MovementResponse struct {
	ID          int64            `json:"id"`
	ProductID   int64            `json:"product_id"`
	ProductName string           `json:"product_name"`
	Kind        string           `json:"kind"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"` // null en entradas
	Total       decimal.Decimal  `json:"total"`      // unit_price × quantity; 0 en entradas
	CreatedAt   time.Time        `json:"created_at"`
}
