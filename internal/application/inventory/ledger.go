package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
	publishTimeout     = 5 * time.Second
)

// Operaciones observadas por el Recorder.
const (
	OperationApply   = "apply"
	OperationReverse = "reverse"
)

// LedgerUseCase es el motor del libro de stock: aplica y revierte movimientos
// manteniendo products.quantity igual al neto de los movimientos activos.
// Cada operación corre en una sola transacción con bloqueo de fila (SELECT FOR UPDATE).
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	publisher   EventPublisher
	recorder    Recorder
	log         *logger.Logger
	now         func() time.Time
}

// NewLedgerUseCase construye el caso de uso. publisher y recorder pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	publisher EventPublisher,
	recorder Recorder,
	log *logger.Logger,
) *LedgerUseCase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		publisher:   publisher,
		recorder:    recorder,
		log:         log,
		now:         time.Now,
	}
}

// Apply registra una entrada o salida. Dentro de la transacción: bloquea el producto,
// valida el stock para salidas, ajusta la cantidad e inserta el movimiento con el
// precio vigente como snapshot (solo en salidas).
func (uc *LedgerUseCase) Apply(ctx context.Context, in dto.RegisterMovementRequest) (*dto.MovementResult, error) {
	start := time.Now()
	kind := entity.MovementKind(strings.ToLower(strings.TrimSpace(in.Kind)))

	if err := ledger.ValidateRequest(kind, in.Quantity); err != nil {
		uc.observe(OperationApply, kind, err, start)
		return nil, err
	}
	if in.ProductID <= 0 {
		err := fmt.Errorf("product_id es requerido: %w", domain.ErrInvalidInput)
		uc.observe(OperationApply, kind, err, start)
		return nil, err
	}

	var (
		result dto.MovementResult
		mov    entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		if err := ledger.CheckApply(product, kind, in.Quantity); err != nil {
			return err
		}

		now := uc.now()
		newQty := product.Quantity + ledger.ApplyDelta(kind, in.Quantity)
		if err := productRepo.UpdateQuantity(ctx, product.ID, newQty, now); err != nil {
			return err
		}

		mov = entity.Movement{
			ProductID: product.ID,
			Kind:      kind,
			Quantity:  in.Quantity,
			CreatedAt: now,
		}
		if kind == entity.MovementOutflow {
			price := product.Price
			mov.UnitPrice = &price
		}
		if err := movRepo.Create(ctx, &mov); err != nil {
			return err
		}

		result = dto.MovementResult{
			MovementID:  mov.ID,
			Message:     applyMessage(kind),
			ProductID:   product.ID,
			ProductName: product.Name,
			NewQuantity: newQty,
		}
		return nil
	})
	uc.observe(OperationApply, kind, err, start)
	if err != nil {
		uc.logFailure(OperationApply, err).
			Int64("product_id", in.ProductID).
			Str("kind", string(kind)).
			Int("quantity", in.Quantity).
			Msg("movimiento rechazado")
		return nil, err
	}

	uc.log.Info().
		Int64("movement_id", mov.ID).
		Int64("product_id", result.ProductID).
		Str("kind", string(kind)).
		Int("quantity", mov.Quantity).
		Int("new_quantity", result.NewQuantity).
		Msg("movimiento aplicado")

	uc.publish(ctx, entity.MovementEvent{
		Type:        entity.EventMovementApplied,
		MovementID:  mov.ID,
		ProductID:   mov.ProductID,
		Kind:        mov.Kind,
		Quantity:    mov.Quantity,
		UnitPrice:   mov.UnitPrice,
		NewQuantity: result.NewQuantity,
		OccurredAt:  mov.CreatedAt,
	})
	return &result, nil
}

// Reverse elimina un movimiento deshaciendo exactamente su efecto: una entrada
// resta su cantidad (rechazado si el stock quedaría negativo) y una salida la suma.
// Si algo falla, ni el movimiento ni la cantidad cambian.
func (uc *LedgerUseCase) Reverse(ctx context.Context, movementID int64) (*dto.ReversalResult, error) {
	start := time.Now()
	var (
		result dto.ReversalResult
		mov    *entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		var err error
		mov, err = movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrMovementNotFound
		}
		product, err := productRepo.GetForUpdate(ctx, mov.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		if err := ledger.CheckReversal(product, mov); err != nil {
			return err
		}

		newQty := product.Quantity + ledger.ReversalDelta(mov.Kind, mov.Quantity)
		if err := productRepo.UpdateQuantity(ctx, product.ID, newQty, uc.now()); err != nil {
			return err
		}
		if err := movRepo.Delete(ctx, mov.ID); err != nil {
			return err
		}

		direction := ledger.ReversalDirection(mov.Kind)
		result = dto.ReversalResult{
			Message:     reversalMessage(direction),
			Operation:   string(direction),
			MovementID:  mov.ID,
			ProductID:   product.ID,
			NewQuantity: newQty,
		}
		return nil
	})

	var kind entity.MovementKind
	if mov != nil {
		kind = mov.Kind
	}
	uc.observe(OperationReverse, kind, err, start)
	if err != nil {
		uc.logFailure(OperationReverse, err).
			Int64("movement_id", movementID).
			Msg("reversión rechazada")
		return nil, err
	}

	uc.log.Info().
		Int64("movement_id", movementID).
		Int64("product_id", result.ProductID).
		Str("operation", result.Operation).
		Int("new_quantity", result.NewQuantity).
		Msg("movimiento revertido")

	uc.publish(ctx, entity.MovementEvent{
		Type:        entity.EventMovementReversed,
		MovementID:  mov.ID,
		ProductID:   mov.ProductID,
		Kind:        mov.Kind,
		Quantity:    mov.Quantity,
		UnitPrice:   mov.UnitPrice,
		NewQuantity: result.NewQuantity,
		OccurredAt:  uc.now(),
	})
	return &result, nil
}

// ListRecent devuelve los últimos movimientos, más recientes primero.
func (uc *LedgerUseCase) ListRecent(ctx context.Context, limit int) ([]dto.MovementResponse, error) {
	list, err := uc.movRepo.ListRecent(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// ListByProduct historial de movimientos activos de un producto.
func (uc *LedgerUseCase) ListByProduct(ctx context.Context, productID int64, limit int) ([]dto.MovementResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

func (uc *LedgerUseCase) observe(operation string, kind entity.MovementKind, err error, start time.Time) {
	uc.recorder.ObserveOperation(operation, string(kind), Outcome(err), time.Since(start))
}

// logFailure elige el nivel: las reglas de negocio son warn, lo inesperado es error.
func (uc *LedgerUseCase) logFailure(operation string, err error) *zerolog.Event {
	ev := uc.log.Warn()
	if Outcome(err) == OutcomeError || Outcome(err) == OutcomeUnavailable {
		ev = uc.log.Error()
	}
	return ev.Err(err).Str("operation", operation)
}

// publish no afecta el resultado: el movimiento ya está confirmado.
func (uc *LedgerUseCase) publish(ctx context.Context, event entity.MovementEvent) {
	event.EventID = uuid.New().String()
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := uc.publisher.PublishMovement(pubCtx, event); err != nil {
		uc.log.Error().Err(err).
			Str("event_type", event.Type).
			Int64("movement_id", event.MovementID).
			Msg("no se pudo publicar el evento de movimiento")
	}
}

// Resultados de operación para métricas.
const (
	OutcomeSuccess           = "success"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeNotFound          = "not_found"
	OutcomeInvalidInput      = "invalid_input"
	OutcomeUnavailable       = "unavailable"
	OutcomeError             = "error"
)

// Outcome clasifica un error del libro en una etiqueta estable.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, domain.ErrServiceUnavailable):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}

func applyMessage(kind entity.MovementKind) string {
	if kind == entity.MovementInflow {
		return "entrada registrada"
	}
	return "salida registrada"
}

func reversalMessage(d ledger.Direction) string {
	op := "adición"
	if d == ledger.Subtraction {
		op = "sustracción"
	}
	return fmt.Sprintf("movimiento eliminado y stock revertido (operación: %s)", op)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

func toMovementResponses(list []*entity.MovementView) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			Kind:        string(m.Kind),
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			Total:       m.Total(),
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}
