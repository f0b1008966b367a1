package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio base. Los errores específicos los envuelven para que
// errors.Is funcione tanto contra el específico como contra la categoría.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrServiceUnavailable = errors.New("servicio no disponible: base de datos inaccesible")
)

var (
	ErrProductNotFound     = fmt.Errorf("producto no encontrado: %w", ErrNotFound)
	ErrMovementNotFound    = fmt.Errorf("movimiento no encontrado: %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("categoría no encontrada: %w", ErrNotFound)
	ErrDuplicateCategory   = fmt.Errorf("la categoría ya existe: %w", ErrConflict)
	ErrCategoryInUse       = fmt.Errorf("la categoría tiene productos asociados: %w", ErrConflict)
	ErrProductHasMovements = fmt.Errorf("el producto tiene movimientos registrados: %w", ErrConflict)
	ErrUnknownCategory     = fmt.Errorf("la categoría indicada no está registrada: %w", ErrInvalidInput)
	ErrInvalidKind         = fmt.Errorf("tipo de movimiento inválido: %w", ErrInvalidInput)
	ErrInvalidQuantity     = fmt.Errorf("la cantidad debe ser un entero entre 1 y 2147483647: %w", ErrInvalidInput)
	ErrQuantityOverflow    = fmt.Errorf("el stock resultante supera el máximo de 2147483647 unidades: %w", ErrInvalidInput)
)

// StockError detalla un rechazo por stock insuficiente, ya sea al registrar
// una salida o al revertir una entrada.
type StockError struct {
	ProductID int64
	Available int
	Requested int
	Reversal  bool
}

func (e *StockError) Error() string {
	if e.Reversal {
		return fmt.Sprintf("stock insuficiente para revertir la entrada: el producto %d quedaría negativo (disponible %d, a revertir %d)",
			e.ProductID, e.Available, e.Requested)
	}
	return fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
