package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error la transacción se revierte completa; el rollback está garantizado en toda salida.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// EventPublisher publica los movimientos ya confirmados.
type EventPublisher interface {
	PublishMovement(ctx context.Context, event entity.MovementEvent) error
}

// Recorder registra el resultado y la duración de cada operación del libro.
type Recorder interface {
	ObserveOperation(operation, kind, outcome string, elapsed time.Duration)
}

type nopPublisher struct{}

func (nopPublisher) PublishMovement(context.Context, entity.MovementEvent) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, string, time.Duration) {}
