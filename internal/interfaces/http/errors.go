package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Códigos de error de la API.
const (
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeMovementNotFound    = "MOVEMENT_NOT_FOUND"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicateCategory   = "DUPLICATE_CATEGORY"
	CodeCategoryInUse       = "CATEGORY_IN_USE"
	CodeProductHasMovements = "PRODUCT_HAS_MOVEMENTS"
	CodeConflict            = "CONFLICT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeUnknownCategory     = "UNKNOWN_CATEGORY"
	CodeValidation          = "VALIDATION"
	CodeInvalidBody         = "INVALID_BODY"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal            = "INTERNAL"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: los específicos antes que su error base.
var errorMappings = []errorMapping{
	{domain.ErrServiceUnavailable, fiber.StatusServiceUnavailable, CodeServiceUnavailable},
	{domain.ErrProductNotFound, fiber.StatusNotFound, CodeProductNotFound},
	{domain.ErrMovementNotFound, fiber.StatusNotFound, CodeMovementNotFound},
	{domain.ErrCategoryNotFound, fiber.StatusNotFound, CodeCategoryNotFound},
	{domain.ErrNotFound, fiber.StatusNotFound, CodeNotFound},
	{domain.ErrDuplicateCategory, fiber.StatusConflict, CodeDuplicateCategory},
	{domain.ErrCategoryInUse, fiber.StatusConflict, CodeCategoryInUse},
	{domain.ErrProductHasMovements, fiber.StatusConflict, CodeProductHasMovements},
	{domain.ErrConflict, fiber.StatusConflict, CodeConflict},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, CodeInsufficientStock},
	{domain.ErrUnknownCategory, fiber.StatusBadRequest, CodeUnknownCategory},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, CodeValidation},
}

// writeError traduce un error de dominio a status + dto.ErrorResponse.
// Lo no clasificado es 500 con mensaje genérico; la causa solo va al log.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status == fiber.StatusServiceUnavailable {
				log.Error().Err(err).Str("path", c.Path()).Msg("base de datos no disponible")
				return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: domain.ErrServiceUnavailable.Error()})
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: CodeInternal, Message: "error interno del servidor"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// parseID lee un id numérico positivo del path.
func parseID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
