package handlers

import (
	"errors"
	"time"

	"coffeetrucks/internal/apperr"
	"coffeetrucks/internal/middleware"
	"coffeetrucks/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	users   repositories.UserRepository
	timeout time.Duration
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users repositories.UserRepository, timeout time.Duration) *UserHandler {
	return &UserHandler{users: users, timeout: timeout}
}

// RegisterRoutes registers the profile route with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/me", h.HandleMe)
}

// HandleMe returns the session user's profile, role included.
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	sess := middleware.FromCtx(c)
	if sess == nil {
		return respondError(c, apperr.NewUnauthenticated())
	}

	user, err := h.users.GetByID(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperr.NewUserNotFound())
		}
		logrus.WithField("user_id", sess.ID).WithError(err).Error("failed to load profile")
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}
