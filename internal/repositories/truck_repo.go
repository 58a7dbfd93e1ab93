package repositories

import (
	"context"

	"coffeetrucks/internal/models"
)

// TruckRepository defines the interface for coffee truck data access.
type TruckRepository interface {
	// GetAll returns every truck, newest first, with images primary-first.
	GetAll(ctx context.Context) ([]models.CoffeeTruck, error)
	GetByID(ctx context.Context, id string) (*models.CoffeeTruck, error)
	// GetDetail returns a truck with its images, owner and reviews (newest
	// first, each with its author).
	GetDetail(ctx context.Context, id string) (*models.CoffeeTruck, error)
	Create(ctx context.Context, truck *models.CoffeeTruck) error
	// Update writes name, city and address only.
	Update(ctx context.Context, truck *models.CoffeeTruck) error
}

// ImageRepository defines the interface for truck image data access.
type ImageRepository interface {
	Create(ctx context.Context, image *models.CoffeeTruckImage) error
	ListByTruck(ctx context.Context, truckID string) ([]models.CoffeeTruckImage, error)
}
