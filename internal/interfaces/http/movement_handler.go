package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// MovementHandler expone el libro de stock: registrar, revertir y listar movimientos.
type MovementHandler struct {
	uc           *inventory.LedgerUseCase
	defaultLimit int
	log          *logger.Logger
}

// NewMovementHandler construye el handler. defaultLimit aplica cuando no viene ?limit=.
func NewMovementHandler(uc *inventory.LedgerUseCase, defaultLimit int, log *logger.Logger) *MovementHandler {
	return &MovementHandler{uc: uc, defaultLimit: defaultLimit, log: log}
}

// Register godoc
// @Summary      Registrar movimiento de stock
// @Description  inflow suma la cantidad; outflow la resta si hay stock suficiente y guarda el precio vigente.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterMovementRequest  true  "kind, product_id, quantity"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse  "VALIDATION o INSUFFICIENT_STOCK"
// @Failure      404   {object}  dto.ErrorResponse  "PRODUCT_NOT_FOUND"
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, CodeInvalidBody, "cuerpo inválido")
	}
	out, err := h.uc.Apply(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reverse godoc
// @Summary      Eliminar movimiento revirtiendo su efecto en el stock
// @Tags         movements
// @Produce      json
// @Param        id   path      int  true  "ID del movimiento"
// @Success      200  {object}  dto.ReversalResult
// @Failure      400  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Failure      404  {object}  dto.ErrorResponse  "MOVEMENT_NOT_FOUND"
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Reverse(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, CodeValidation, "id de movimiento inválido")
	}
	out, err := h.uc.Reverse(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListRecent godoc
// @Summary      Últimos movimientos
// @Tags         movements
// @Produce      json
// @Param        limit  query  int  false  "máximo de filas (por defecto 20, tope 200)"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/movements [get]
func (h *MovementHandler) ListRecent(c *fiber.Ctx) error {
	out, err := h.uc.ListRecent(c.UserContext(), c.QueryInt("limit", h.defaultLimit))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Movimientos de un producto
// @Tags         movements
// @Produce      json
// @Param        id     path   int  true   "ID del producto"
// @Param        limit  query  int  false  "máximo de filas (por defecto 20, tope 200)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse  "PRODUCT_NOT_FOUND"
// @Router       /api/products/{id}/movements [get]
func (h *MovementHandler) ListByProduct(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, CodeValidation, "id de producto inválido")
	}
	out, err := h.uc.ListByProduct(c.UserContext(), id, c.QueryInt("limit", h.defaultLimit))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
