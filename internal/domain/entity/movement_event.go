package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento publicados por el libro de stock.
const (
	EventMovementApplied  = "movement.applied"
	EventMovementReversed = "movement.reversed"
)

// MovementEvent hecho confirmado sobre un movimiento (ya comprometido en la BD).
type MovementEvent struct {
	EventID     string           `json:"event_id"`
	Type        string           `json:"type"`
	MovementID  int64            `json:"movement_id"`
	ProductID   int64            `json:"product_id"`
	Kind        MovementKind     `json:"kind"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	NewQuantity int              `json:"new_quantity"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
