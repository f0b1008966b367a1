package http

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReportHandler reportes de valorización de stock.
type ReportHandler struct {
	uc  *usecase.ReportUseCase
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// CategoryValues godoc
// @Summary      Stock y valor por categoría
// @Tags         reports
// @Produce      json
// @Success      200  {array}  dto.CategoryValueResponse
// @Router       /api/reports/categories [get]
func (h *ReportHandler) CategoryValues(c *fiber.Ctx) error {
	out, err := h.uc.CategoryValues(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CategoryDetail godoc
// @Summary      Detalle de una categoría
// @Tags         reports
// @Produce      json
// @Param        name  path  string  true  "Nombre de la categoría"
// @Success      200  {object}  dto.CategoryValueResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/categories/{name} [get]
func (h *ReportHandler) CategoryDetail(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return badRequest(c, CodeValidation, "nombre de categoría inválido")
	}
	out, err := h.uc.CategoryDetail(c.UserContext(), name)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CategoryPDF godoc
// @Summary      Reporte por categoría en PDF
// @Tags         reports
// @Produce      application/pdf
// @Success      200
// @Router       /api/reports/categories.pdf [get]
func (h *ReportHandler) CategoryPDF(c *fiber.Ctx) error {
	out, err := h.uc.CategoryPDF(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Attachment(fmt.Sprintf("stock_categorias_%s.pdf", time.Now().Format("20060102")))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(out)
}

// Summary godoc
// @Summary      Indicadores del inventario
// @Tags         reports
// @Produce      json
// @Success      200  {object}  dto.StockSummaryResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
