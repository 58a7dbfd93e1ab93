package handlers

import (
	"context"
	"time"

	"coffeetrucks/internal/apperr"
	"coffeetrucks/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// statusOf maps a failure kind to its HTTP status.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthenticated:
		return fiber.StatusUnauthorized
	case apperr.Forbidden:
		return fiber.StatusForbidden
	case apperr.NotFound, apperr.UserNotFound:
		return fiber.StatusNotFound
	case apperr.Validation:
		return fiber.StatusBadRequest
	case apperr.DuplicateReview:
		return fiber.StatusConflict
	}
	return fiber.StatusServiceUnavailable
}

// respondError writes err as {success:false, message}. Unclassified errors
// get a generic message.
func respondError(c *fiber.Ctx, err error) error {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.NewUnavailable(apperr.MsgUnavailable, err)
	}
	return c.Status(statusOf(e.Kind)).JSON(fiber.Map{
		"success": false,
		"message": e.Message,
	})
}

// mutationResult records the outcome of a mutation and writes the response.
func mutationResult(c *fiber.Ctx, op string, err error, status int, body fiber.Map) error {
	metrics.ObserveMutation(op, err)
	if err != nil {
		return respondError(c, err)
	}
	body["success"] = true
	return c.Status(status).JSON(body)
}

func invalidRequest() error {
	return apperr.NewInvalid("", "", apperr.MsgInvalidRequest)
}

// requestContext bounds the work done for one request.
func requestContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), timeout)
}
