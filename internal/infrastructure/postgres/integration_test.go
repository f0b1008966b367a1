//go:build integration

package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Ejecutar con: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/infrastructure/postgres/
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL:    url,
		MaxConns:       16,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE movements, products, categories RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, name, category string, qty int) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		Code: "P-" + name, Name: name, Category: category, Quantity: qty,
		Price: decimal.RequireFromString("9.90"), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewProductRepository(pool).Create(context.Background(), p))
	return p
}

func TestIntegration_ConcurrentOutflowsCannotOverdraw(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	const stock, workers = 5, 8
	p := seedProduct(t, pool, "Disco", "", stock)

	uc := inventory.NewLedgerUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewProductRepository(pool),
		postgres.NewMovementRepository(pool),
		nil, nil, logger.Nop(),
	)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := uc.Apply(ctx, dto.RegisterMovementRequest{Kind: "outflow", ProductID: p.ID, Quantity: stock})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				rejected++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)

	n, err := postgres.NewMovementRepository(pool).CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIntegration_CategoryForeignKey(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	categories := postgres.NewCategoryRepository(pool)
	products := postgres.NewProductRepository(pool)

	c := &entity.Category{Name: "Oficina"}
	require.NoError(t, categories.Create(ctx, c))
	seedProduct(t, pool, "Grapas", "Oficina", 1)

	_, err := categories.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryInUse)

	err = products.Create(ctx, &entity.Product{Code: "X", Name: "X", Category: "Nada", Price: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	loose := seedProduct(t, pool, "Suelto", "", 2)
	got, err := products.GetByID(ctx, loose.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Category)

	rows, err := postgres.NewReportRepository(pool).ValueByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].Category)
	assert.Equal(t, "Oficina", rows[1].Category)
}
