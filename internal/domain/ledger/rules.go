// Package ledger contiene las reglas puras del libro de stock: cuánto suma o
// resta un movimiento, cuándo puede aplicarse y cuándo puede revertirse.
// No conoce la persistencia; el caso de uso las ejecuta dentro de la transacción.
package ledger

import (
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MaxQuantity tope de cantidad por movimiento y de stock por producto (columna INTEGER).
const MaxQuantity = math.MaxInt32

// Direction sentido del ajuste que produce una reversión.
type Direction string

const (
	Addition    Direction = "addition"
	Subtraction Direction = "subtraction"
)

// ValidateRequest verifica tipo y cantidad antes de abrir la transacción.
func ValidateRequest(kind entity.MovementKind, quantity int) error {
	if !kind.Valid() {
		return domain.ErrInvalidKind
	}
	if quantity <= 0 || quantity > MaxQuantity {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// ApplyDelta efecto de un movimiento sobre la cantidad del producto.
func ApplyDelta(kind entity.MovementKind, quantity int) int {
	if kind == entity.MovementOutflow {
		return -quantity
	}
	return quantity
}

// ReversalDelta efecto inverso: deshace exactamente ApplyDelta.
func ReversalDelta(kind entity.MovementKind, quantity int) int {
	return -ApplyDelta(kind, quantity)
}

// ReversalDirection devuelve si revertir el movimiento suma o resta stock.
func ReversalDirection(kind entity.MovementKind) Direction {
	if kind == entity.MovementInflow {
		return Subtraction
	}
	return Addition
}

// CheckApply valida la precondición de Apply contra la cantidad leída bajo bloqueo.
// Una salida no puede superar el stock actual y una entrada no puede llevarlo por encima de MaxQuantity.
func CheckApply(product *entity.Product, kind entity.MovementKind, quantity int) error {
	if kind == entity.MovementOutflow && quantity > product.Quantity {
		return &domain.StockError{ProductID: product.ID, Available: product.Quantity, Requested: quantity}
	}
	if kind == entity.MovementInflow && exceedsMax(product.Quantity, quantity) {
		return domain.ErrQuantityOverflow
	}
	return nil
}

// exceedsMax indica si current+add pasa de MaxQuantity, sin desbordar int.
func exceedsMax(current, add int) bool {
	return add > MaxQuantity-current
}

// CheckReversal valida la precondición de Reverse. Revertir una entrada resta
// stock y se rechaza si lo dejaría negativo; revertir una salida suma y solo se
// rechaza si superaría MaxQuantity (posible tras una corrección directa del producto).
func CheckReversal(product *entity.Product, mov *entity.Movement) error {
	if mov.Kind == entity.MovementInflow && product.Quantity < mov.Quantity {
		return &domain.StockError{
			ProductID: product.ID,
			Available: product.Quantity,
			Requested: mov.Quantity,
			Reversal:  true,
		}
	}
	if mov.Kind == entity.MovementOutflow && exceedsMax(product.Quantity, mov.Quantity) {
		return domain.ErrQuantityOverflow
	}
	return nil
}
