package handlers

import (
	"context"
	"time"

	"coffeetrucks/internal/cache"
	"coffeetrucks/internal/middleware"
	"coffeetrucks/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// TruckHandler handles HTTP requests for coffee trucks.
type TruckHandler struct {
	truckService *services.TruckService
	views        cache.Views
	timeout      time.Duration
}

// NewTruckHandler creates a new TruckHandler. views may be nil to disable the
// read cache.
func NewTruckHandler(truckService *services.TruckService, views cache.Views, timeout time.Duration) *TruckHandler {
	return &TruckHandler{
		truckService: truckService,
		views:        views,
		timeout:      timeout,
	}
}

// RegisterRoutes registers the truck routes with the Fiber app.
func (h *TruckHandler) RegisterRoutes(router fiber.Router) {
	trucks := router.Group("/trucks")
	trucks.Get("/", h.HandleList)
	trucks.Get("/:id", h.HandleGet)
	trucks.Post("/", h.HandleCreate)
	trucks.Put("/:id", h.HandleUpdate)
}

// HandleList returns every truck with its rating.
func (h *TruckHandler) HandleList(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	return h.serveView(c, ctx, cache.TrucksPath, func() (fiber.Map, error) {
		trucks, err := h.truckService.ListTrucks(ctx)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"trucks": trucks}, nil
	})
}

// HandleGet returns one truck with images, owner and reviews.
func (h *TruckHandler) HandleGet(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	id := c.Params("id")
	return h.serveView(c, ctx, cache.TruckPath(id), func() (fiber.Map, error) {
		truck, err := h.truckService.GetTruck(ctx, id)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"truck": truck}, nil
	})
}

// HandleCreate creates a truck owned by the caller.
func (h *TruckHandler) HandleCreate(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	sess := middleware.FromCtx(c)
	var in services.TruckInput
	if err := c.BodyParser(&in); err != nil && sess != nil {
		return mutationResult(c, "create_truck", invalidRequest(), 0, nil)
	}

	truck, err := h.truckService.Create(ctx, sess, in)
	return mutationResult(c, "create_truck", err, fiber.StatusCreated, fiber.Map{"truck": truck})
}

// HandleUpdate edits a truck's name, city and address.
func (h *TruckHandler) HandleUpdate(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	sess := middleware.FromCtx(c)
	var in services.TruckInput
	if err := c.BodyParser(&in); err != nil && sess != nil {
		return mutationResult(c, "update_truck", invalidRequest(), 0, nil)
	}

	truck, err := h.truckService.Update(ctx, sess, c.Params("id"), in)
	return mutationResult(c, "update_truck", err, fiber.StatusOK, fiber.Map{"truck": truck})
}

// serveView answers from the view cache when it can, otherwise renders the
// view with load and stores it. The render is only stored if no revalidation
// of path happened while it was being built.
func (h *TruckHandler) serveView(c *fiber.Ctx, ctx context.Context, path string, load func() (fiber.Map, error)) error {
	log := logrus.WithField("path", path)

	var (
		gen       uint64
		cacheable bool
	)
	if h.views != nil {
		body, ok, err := h.views.Get(ctx, path)
		if err != nil {
			log.WithError(err).Warn("view cache read failed")
		}
		if ok {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(body)
		}

		gen, err = h.views.Generation(ctx, path)
		if err != nil {
			log.WithError(err).Warn("view generation read failed")
		}
		cacheable = err == nil
	}

	view, err := load()
	if err != nil {
		return respondError(c, err)
	}
	view["success"] = true
	body, err := c.App().Config().JSONEncoder(view)
	if err != nil {
		return respondError(c, err)
	}

	if cacheable {
		stored, err := h.views.SetIfCurrent(ctx, path, gen, body)
		if err != nil {
			log.WithError(err).Warn("view cache write failed")
		} else if !stored {
			log.Debug("view revalidated during render, not cached")
		}
	}
	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}
