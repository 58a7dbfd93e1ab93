package repositories

import (
	"context"
	"fmt"

	"coffeetrucks/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMImageRepository is a GORM implementation of ImageRepository.
type GORMImageRepository struct {
	db *gorm.DB
}

// NewGORMImageRepository creates a new instance of GORMImageRepository.
func NewGORMImageRepository(db *gorm.DB) *GORMImageRepository {
	return &GORMImageRepository{db: db}
}

// Create stores image metadata for a truck.
func (r *GORMImageRepository) Create(ctx context.Context, image *models.CoffeeTruckImage) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// ListByTruck returns a truck's images, primary first.
func (r *GORMImageRepository) ListByTruck(ctx context.Context, truckID string) ([]models.CoffeeTruckImage, error) {
	var images []models.CoffeeTruckImage
	if err := primaryFirst(r.db.WithContext(ctx).Where("truck_id = ?", truckID)).Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list images for truck %s: %w", truckID, err)
	}
	return images, nil
}
