package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Ledger      *inventory.LedgerUseCase
	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	ReportUC    *usecase.ReportUseCase
	ExportUC    *usecase.ExportUseCase
	Store       AvailabilityChecker
	RecentLimit int
	Log         *logger.Logger
}

// Router registra /health y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		storeUp := deps.Store == nil || deps.Store.Available()
		status, code := "ok", fiber.StatusOK
		if !storeUp {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "service": deps.ServiceName, "database": storeUp})
	})

	api := app.Group("/api", AvailabilityMiddleware(deps.Store))

	// Movements
	movementHandler := NewMovementHandler(deps.Ledger, deps.RecentLimit, log)
	movements := api.Group("/movements")
	movements.Post("/", movementHandler.Register)
	movements.Get("/", movementHandler.ListRecent)
	movements.Delete("/:id", movementHandler.Reverse)

	// Products (export antes de /:id)
	productHandler := NewProductHandler(deps.ProductUC, deps.ExportUC, log)
	products := api.Group("/products")
	products.Get("/export", productHandler.Export)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/movements", movementHandler.ListByProduct)

	// Categories
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories := api.Group("/categories")
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Delete("/:id", categoryHandler.Delete)

	// Reports
	reportHandler := NewReportHandler(deps.ReportUC, log)
	reports := api.Group("/reports")
	reports.Get("/categories.pdf", reportHandler.CategoryPDF)
	reports.Get("/categories", reportHandler.CategoryValues)
	reports.Get("/categories/:name", reportHandler.CategoryDetail)
	reports.Get("/summary", reportHandler.Summary)
}
