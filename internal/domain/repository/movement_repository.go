package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos de stock.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// GetForUpdate lee y bloquea la fila del movimiento dentro de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)
	Delete(ctx context.Context, id int64) error
	// ListRecent devuelve los últimos movimientos (más recientes primero) con el nombre del producto.
	ListRecent(ctx context.Context, limit int) ([]*entity.MovementView, error)
	ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.MovementView, error)
	CountByProduct(ctx context.Context, productID int64) (int, error)
}
