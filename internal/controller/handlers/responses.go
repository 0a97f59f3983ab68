package handlers

import (
	"errors"

	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func respondOK(c *fiber.Ctx, data fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// StatusFor HTTP-код для ошибки движка занятий
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrInvalidStateTransition),
		errors.Is(err, service.ErrAlreadyRated),
		errors.Is(err, service.ErrQuotaExceeded),
		errors.Is(err, service.ErrCancellationLocked):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// fail отправляет ответ с ошибкой. Ошибки хранилища логируются,
// а клиенту уходит только общее сообщение.
func (h *Handlers) fail(c *fiber.Ctx, err error, fallback string) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		h.logger.Error(fallback,
			zap.String("request_id", requestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return respondError(c, status, fallback)
	}

	return respondError(c, status, err.Error())
}
