package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/events"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/export"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// store agrupa los puertos de persistencia del driver elegido.
type store struct {
	txRunner   inventory.TxRunner
	products   repository.ProductRepository
	categories repository.CategoryRepository
	movements  repository.MovementRepository
	reports    repository.ReportRepository
	available  httpRouter.AvailabilityChecker
	close      func()
}

type publisher interface {
	inventory.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.DB.Driver).
		Bool("kafka", cfg.Kafka.Enabled()).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	st, err := openStore(ctx, cfg, log, m)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}

	var pub publisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		pub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos de movimiento hacia Kafka")
	}

	var recorder inventory.Recorder
	var httpObserver httpRouter.HTTPObserver
	if m != nil {
		recorder = m
		httpObserver = m
	}

	ledgerUC := inventory.NewLedgerUseCase(st.txRunner, st.products, st.movements, pub, recorder, log.Component("ledger"))
	productUC := usecase.NewProductUseCase(st.products, st.categories, st.movements)
	categoryUC := usecase.NewCategoryUseCase(st.categories, st.products)
	reportUC := usecase.NewReportUseCase(st.reports, export.NewPDFRenderer(""), cfg.Ledger.LowStockThreshold)
	exportUC := usecase.NewExportUseCase(st.products, export.NewCSVWriter())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogMiddleware(log.Component("http"), httpObserver))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Ledger:      ledgerUC,
		ProductUC:   productUC,
		CategoryUC:  categoryUC,
		ReportUC:    reportUC,
		ExportUC:    exportUC,
		Store:       st.available,
		RecentLimit: cfg.Ledger.RecentMovementsLimit,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := pub.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar publicador de eventos")
	}
	st.close()

	log.Info().Msg("aplicación detenida")
}

// openStore arma el almacenamiento según STORE_DRIVER. Con postgres no exige que la
// base responda al arrancar: el Monitor la sondea y el esquema se aplica en la primera conexión.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*store, error) {
	if cfg.DB.Driver == config.StoreDriverMemory {
		s := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		if m != nil {
			m.SetStoreAvailable(true)
		}
		return &store{
			txRunner:   s,
			products:   s.Products(),
			categories: s.Categories(),
			movements:  s.Movements(),
			reports:    s.Reports(),
			available:  s,
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	dbLog := log.Component("db")
	monitor := postgres.NewMonitor(pool, cfg.DB.HealthInterval, dbLog)
	var migrated atomic.Bool
	monitor.OnChange(func(up bool) {
		if m != nil {
			m.SetStoreAvailable(up)
		}
		if !up || !cfg.DB.AutoMigrate || migrated.Load() {
			return
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			dbLog.Error().Err(err).Msg("aplicar esquema")
			return
		}
		migrated.Store(true)
		dbLog.Info().Msg("esquema verificado")
	})
	monitor.Start(ctx)

	return &store{
		txRunner:   postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		movements:  postgres.NewMovementRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		available:  monitor,
		close: func() {
			monitor.Stop()
			pool.Close()
		},
	}, nil
}
