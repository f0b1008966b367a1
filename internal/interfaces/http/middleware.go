package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// AvailabilityChecker informa si el almacenamiento responde (postgres.Monitor, memory.Store).
type AvailabilityChecker interface {
	Available() bool
}

// HTTPObserver recibe una observación por request (metrics.Metrics).
type HTTPObserver interface {
	ObserveHTTP(method, path, status string, elapsed time.Duration)
}

// AvailabilityMiddleware corta con 503 mientras la base de datos no esté disponible.
func AvailabilityMiddleware(checker AvailabilityChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if checker != nil && !checker.Available() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    CodeServiceUnavailable,
				Message: domain.ErrServiceUnavailable.Error(),
			})
		}
		return c.Next()
	}
}

// RequestLogMiddleware registra método, ruta, status, latencia y request id.
// observer puede ser nil.
func RequestLogMiddleware(log *logger.Logger, observer HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler de Fiber escriba la respuesta antes de leer el status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("request_id", requestID(c)).
			Msg("request")

		if observer != nil {
			observer.ObserveHTTP(c.Method(), c.Route().Path, strconv.Itoa(status), elapsed)
		}
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok {
		return v
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
