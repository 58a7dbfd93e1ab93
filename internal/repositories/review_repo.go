package repositories

import (
	"context"

	"coffeetrucks/internal/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetByTruckAndUser(ctx context.Context, truckID, userID string) (*models.Review, error)
	ListByTruck(ctx context.Context, truckID string) ([]models.Review, error)
	// Create returns ErrDuplicate when the user already reviewed the truck.
	Create(ctx context.Context, review *models.Review) error
	// Update writes rating and content only.
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
}
