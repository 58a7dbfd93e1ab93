package handlers

import (
	"time"

	"coffeetrucks/internal/middleware"
	"coffeetrucks/internal/services"
	"coffeetrucks/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	reviewService *services.ReviewService
	timeout       time.Duration
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *services.ReviewService, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		timeout:       timeout,
	}
}

// ReviewRequest represents the request body for creating or editing a review.
// Rating is decoded as a number so that fractional values fail validation
// rather than decoding.
type ReviewRequest struct {
	Rating  float64 `json:"rating"`
	Content string  `json:"content"`
}

// RegisterRoutes registers the review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/trucks/:id/reviews", h.HandleCreate)
	reviews := router.Group("/reviews")
	reviews.Put("/:id", h.HandleUpdate)
	reviews.Delete("/:id", h.HandleDelete)
}

// HandleCreate writes the caller's review of a truck.
func (h *ReviewHandler) HandleCreate(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	sess := middleware.FromCtx(c)
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil && sess != nil {
		return mutationResult(c, "create_review", invalidRequest(), 0, nil)
	}

	review, err := h.reviewService.Create(ctx, sess, c.Params("id"), validation.WholeRating(req.Rating), req.Content)
	return mutationResult(c, "create_review", err, fiber.StatusCreated, fiber.Map{"review": review})
}

// HandleUpdate edits the caller's review.
func (h *ReviewHandler) HandleUpdate(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	sess := middleware.FromCtx(c)
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil && sess != nil {
		return mutationResult(c, "update_review", invalidRequest(), 0, nil)
	}

	review, err := h.reviewService.Update(ctx, sess, c.Params("id"), validation.WholeRating(req.Rating), req.Content)
	return mutationResult(c, "update_review", err, fiber.StatusOK, fiber.Map{"review": review})
}

// HandleDelete removes the caller's review.
func (h *ReviewHandler) HandleDelete(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	err := h.reviewService.Delete(ctx, middleware.FromCtx(c), c.Params("id"))
	return mutationResult(c, "delete_review", err, fiber.StatusOK, fiber.Map{})
}
