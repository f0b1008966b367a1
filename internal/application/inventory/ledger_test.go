package inventory_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type capturePublisher struct {
	mu     sync.Mutex
	events []entity.MovementEvent
	err    error
}

func (p *capturePublisher) PublishMovement(_ context.Context, ev entity.MovementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type captureRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *captureRecorder) ObserveOperation(operation, _ string, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, operation+":"+outcome)
}

type fixture struct {
	store     *memory.Store
	uc        *inventory.LedgerUseCase
	publisher *capturePublisher
	recorder  *captureRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &capturePublisher{}
	rec := &captureRecorder{}
	uc := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), pub, rec, nil)
	return &fixture{store: store, uc: uc, publisher: pub, recorder: rec}
}

func (f *fixture) seedProduct(t *testing.T, name string, qty int, price string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Code:      "P-" + name,
		Name:      name,
		Quantity:  qty,
		Price:     decimal.RequireFromString(price),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) quantity(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func (f *fixture) movement(t *testing.T, id int64) *entity.Movement {
	t.Helper()
	m, err := f.store.Movements().GetByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

func outflow(productID int64, q int) dto.RegisterMovementRequest {
	return dto.RegisterMovementRequest{Kind: "outflow", ProductID: productID, Quantity: q}
}

func inflow(productID int64, q int) dto.RegisterMovementRequest {
	return dto.RegisterMovementRequest{Kind: "inflow", ProductID: productID, Quantity: q}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_Scenario_OutflowReverseInflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Teclado", 50, "10.00")

	res, err := f.uc.Apply(ctx, outflow(p.ID, 20))
	require.NoError(t, err)
	assert.Equal(t, 30, res.NewQuantity)
	assert.Equal(t, "Teclado", res.ProductName)
	assert.Equal(t, "salida registrada", res.Message)

	mov := f.movement(t, res.MovementID)
	require.NotNil(t, mov)
	require.NotNil(t, mov.UnitPrice, "la salida guarda el precio vigente")
	assert.True(t, mov.UnitPrice.Equal(decimal.RequireFromString("10.00")))

	rev, err := f.uc.Reverse(ctx, res.MovementID)
	require.NoError(t, err)
	assert.Equal(t, 50, rev.NewQuantity)
	assert.Equal(t, "addition", rev.Operation)
	assert.Contains(t, rev.Message, "adición")
	assert.Nil(t, f.movement(t, res.MovementID))
	assert.Equal(t, 50, f.quantity(t, p.ID))

	in, err := f.uc.Apply(ctx, inflow(p.ID, 5))
	require.NoError(t, err)
	assert.Equal(t, 55, in.NewQuantity)
	assert.Equal(t, "entrada registrada", in.Message)
	assert.Nil(t, f.movement(t, in.MovementID).UnitPrice, "las entradas no guardan precio")
}

func TestLedger_OutflowPriceSnapshotIgnoresLaterEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Mouse", 10, "25.50")

	res, err := f.uc.Apply(ctx, outflow(p.ID, 2))
	require.NoError(t, err)

	edited, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	edited.Price = decimal.RequireFromString("99.99")
	_, err = f.store.Products().Update(ctx, edited)
	require.NoError(t, err)

	mov := f.movement(t, res.MovementID)
	assert.True(t, mov.UnitPrice.Equal(decimal.RequireFromString("25.50")))
	assert.True(t, mov.Total().Equal(decimal.RequireFromString("51")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Límites
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_OutflowOfEntireStockDrivesToZero(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Cable", 7, "3.00")

	res, err := f.uc.Apply(context.Background(), outflow(p.ID, 7))
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewQuantity)
	assert.Equal(t, 0, f.quantity(t, p.ID))
}

func TestLedger_OutflowAboveStockIsRejectedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Cable", 7, "3.00")

	_, err := f.uc.Apply(ctx, outflow(p.ID, 8))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 7, f.quantity(t, p.ID))

	recent, err := f.uc.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recent, "un rechazo no debe dejar movimiento")
}

func TestLedger_HugeInflowIsRejectedWithoutWrapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Clip", 1, "0.05")

	_, err := f.uc.Apply(ctx, inflow(p.ID, math.MaxInt))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, 1, f.quantity(t, p.ID))

	// cantidad válida por sí sola, pero el stock resultante pasaría el tope
	_, err = f.uc.Apply(ctx, inflow(p.ID, ledger.MaxQuantity))
	assert.ErrorIs(t, err, domain.ErrQuantityOverflow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, f.quantity(t, p.ID))

	res, err := f.uc.Apply(ctx, inflow(p.ID, ledger.MaxQuantity-1))
	require.NoError(t, err)
	assert.Equal(t, ledger.MaxQuantity, res.NewQuantity)

	recent, err := f.uc.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
	assert.Contains(t, f.recorder.outcomes, "apply:"+inventory.OutcomeInvalidInput)
}

func TestLedger_ReverseInflowBelowStockIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Monitor", 0, "100.00")

	in, err := f.uc.Apply(ctx, inflow(p.ID, 10))
	require.NoError(t, err)
	_, err = f.uc.Apply(ctx, outflow(p.ID, 4))
	require.NoError(t, err)
	require.Equal(t, 6, f.quantity(t, p.ID))

	_, err = f.uc.Reverse(ctx, in.MovementID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Reversal)

	assert.NotNil(t, f.movement(t, in.MovementID), "el movimiento debe seguir activo")
	assert.Equal(t, 6, f.quantity(t, p.ID))
}

func TestLedger_ReverseInflowWithExactStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Silla", 0, "80.00")

	in, err := f.uc.Apply(ctx, inflow(p.ID, 3))
	require.NoError(t, err)

	rev, err := f.uc.Reverse(ctx, in.MovementID)
	require.NoError(t, err)
	assert.Equal(t, 0, rev.NewQuantity)
	assert.Equal(t, "subtraction", rev.Operation)
	assert.Contains(t, rev.Message, "sustracción")
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_ApplyValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Lápiz", 5, "1.00")

	cases := []struct {
		name string
		in   dto.RegisterMovementRequest
		want error
	}{
		{"cantidad cero", outflow(p.ID, 0), domain.ErrInvalidInput},
		{"cantidad negativa", inflow(p.ID, -1), domain.ErrInvalidInput},
		{"tipo desconocido", dto.RegisterMovementRequest{Kind: "transfer", ProductID: p.ID, Quantity: 1}, domain.ErrInvalidKind},
		{"sin producto", inflow(0, 1), domain.ErrInvalidInput},
		{"producto inexistente", inflow(999, 1), domain.ErrProductNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Apply(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 5, f.quantity(t, p.ID))
}

func TestLedger_KindIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Goma", 1, "0.50")

	res, err := f.uc.Apply(context.Background(), dto.RegisterMovementRequest{Kind: " Inflow ", ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewQuantity)
}

func TestLedger_ReverseUnknownMovement(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Reverse(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_ReverseTwiceFailsSecondTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Tijera", 10, "4.00")

	res, err := f.uc.Apply(ctx, outflow(p.ID, 3))
	require.NoError(t, err)
	_, err = f.uc.Reverse(ctx, res.MovementID)
	require.NoError(t, err)
	_, err = f.uc.Reverse(ctx, res.MovementID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
	assert.Equal(t, 10, f.quantity(t, p.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia e invariante
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_ConcurrentOutflowsCannotOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const stock = 15
	p := f.seedProduct(t, "Disco", stock, "60.00")

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, 2)
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = f.uc.Apply(ctx, outflow(p.ID, stock))
		}(i)
	}
	close(start)
	wg.Wait()

	successes, insufficient := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 0, f.quantity(t, p.ID))
}

func TestLedger_ManyConcurrentUnitOutflows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Tornillo", 25, "0.10")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Apply(ctx, outflow(p.ID, 1)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, ok)
	assert.Equal(t, 0, f.quantity(t, p.ID))
}

func TestLedger_QuantityEqualsNetOfActiveMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const q0 = 12
	p := f.seedProduct(t, "Caja", q0, "2.00")

	rng := rand.New(rand.NewSource(7))
	active := map[int64]int{} // id -> efecto firmado

	for step := 0; step < 300; step++ {
		switch op := rng.Intn(3); {
		case op == 0:
			q := rng.Intn(6) + 1
			res, err := f.uc.Apply(ctx, inflow(p.ID, q))
			require.NoError(t, err)
			active[res.MovementID] = q
		case op == 1:
			q := rng.Intn(8) + 1
			res, err := f.uc.Apply(ctx, outflow(p.ID, q))
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			} else {
				active[res.MovementID] = -q
			}
		default:
			for id := range active {
				_, err := f.uc.Reverse(ctx, id)
				if err != nil {
					require.ErrorIs(t, err, domain.ErrInsufficientStock)
				} else {
					delete(active, id)
				}
				break
			}
		}

		net := q0
		for _, eff := range active {
			net += eff
		}
		qty := f.quantity(t, p.ID)
		require.Equal(t, net, qty, "paso %d", step)
		require.GreaterOrEqual(t, qty, 0)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_PublishesEventsAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Lámpara", 4, "12.00")

	res, err := f.uc.Apply(ctx, outflow(p.ID, 1))
	require.NoError(t, err)
	_, err = f.uc.Apply(ctx, outflow(p.ID, 100))
	require.Error(t, err)
	_, err = f.uc.Reverse(ctx, res.MovementID)
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 2, "los rechazos no publican")
	applied, reversed := f.publisher.events[0], f.publisher.events[1]
	assert.Equal(t, entity.EventMovementApplied, applied.Type)
	assert.Equal(t, 3, applied.NewQuantity)
	assert.NotEmpty(t, applied.EventID)
	assert.Equal(t, entity.EventMovementReversed, reversed.Type)
	assert.Equal(t, 4, reversed.NewQuantity)
	assert.Equal(t, res.MovementID, reversed.MovementID)

	assert.Equal(t, []string{
		"apply:success",
		"apply:insufficient_stock",
		"reverse:success",
	}, f.recorder.outcomes)
}

func TestLedger_PublisherFailureDoesNotUndoMovement(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker caído")
	p := f.seedProduct(t, "Regla", 2, "1.50")

	res, err := f.uc.Apply(context.Background(), inflow(p.ID, 3))
	require.NoError(t, err)
	assert.Equal(t, 5, f.quantity(t, p.ID))
	assert.NotNil(t, f.movement(t, res.MovementID))
}

func TestLedger_ListRecentAndByProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedProduct(t, "A", 10, "1.00")
	b := f.seedProduct(t, "B", 10, "2.00")

	for i := 0; i < 3; i++ {
		_, err := f.uc.Apply(ctx, inflow(a.ID, 1))
		require.NoError(t, err)
	}
	last, err := f.uc.Apply(ctx, outflow(b.ID, 2))
	require.NoError(t, err)

	recent, err := f.uc.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, last.MovementID, recent[0].ID)
	assert.Equal(t, "B", recent[0].ProductName)
	assert.True(t, recent[0].Total.Equal(decimal.NewFromInt(4)))

	hist, err := f.uc.ListByProduct(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 3)
	for _, m := range hist {
		assert.Nil(t, m.UnitPrice)
		assert.True(t, m.Total.IsZero())
	}

	_, err = f.uc.ListByProduct(ctx, 999, 0)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, inventory.OutcomeSuccess, inventory.Outcome(nil))
	assert.Equal(t, inventory.OutcomeNotFound, inventory.Outcome(domain.ErrMovementNotFound))
	assert.Equal(t, inventory.OutcomeInsufficientStock, inventory.Outcome(&domain.StockError{}))
	assert.Equal(t, inventory.OutcomeInvalidInput, inventory.Outcome(domain.ErrInvalidKind))
	assert.Equal(t, inventory.OutcomeUnavailable, inventory.Outcome(domain.ErrServiceUnavailable))
	assert.Equal(t, inventory.OutcomeError, inventory.Outcome(errors.New("x")))
}
