package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando su fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// Update reemplaza todos los campos editables, incluida la cantidad. Devuelve false si no existe.
	Update(ctx context.Context, product *entity.Product) (bool, error)
	// UpdateQuantity fija la cantidad (usado solo por el libro de stock).
	UpdateQuantity(ctx context.Context, id int64, quantity int, updatedAt time.Time) error
	List(ctx context.Context) ([]*entity.Product, error)
	// ListByName lista todos los productos ordenados por nombre (exportación).
	ListByName(ctx context.Context) ([]*entity.Product, error)
	CountByCategory(ctx context.Context, category string) (int, error)
	// Delete elimina el producto. Devuelve false si no existe.
	Delete(ctx context.Context, id int64) (bool, error)
}
