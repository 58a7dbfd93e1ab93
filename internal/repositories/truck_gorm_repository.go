package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coffeetrucks/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTruckRepository is a GORM implementation of TruckRepository.
type GORMTruckRepository struct {
	db *gorm.DB
}

// NewGORMTruckRepository creates a new instance of GORMTruckRepository.
func NewGORMTruckRepository(db *gorm.DB) *GORMTruckRepository {
	return &GORMTruckRepository{
		db: db,
	}
}

func primaryFirst(db *gorm.DB) *gorm.DB {
	return db.Order("is_primary DESC").Order("created_at ASC")
}

// GetAll retrieves all trucks with their images.
func (r *GORMTruckRepository) GetAll(ctx context.Context) ([]models.CoffeeTruck, error) {
	var trucks []models.CoffeeTruck
	err := r.db.WithContext(ctx).
		Preload("Images", primaryFirst).
		Order("created_at DESC").
		Find(&trucks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all trucks: %w", err)
	}
	return trucks, nil
}

// GetByID retrieves a single truck by its ID, without associations.
func (r *GORMTruckRepository) GetByID(ctx context.Context, id string) (*models.CoffeeTruck, error) {
	var truck models.CoffeeTruck
	if err := r.db.WithContext(ctx).First(&truck, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("truck with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get truck by ID %s: %w", id, err)
	}
	return &truck, nil
}

// GetDetail retrieves a truck with images, owner and reviews. Only public user
// columns are loaded for the owner and review authors.
func (r *GORMTruckRepository) GetDetail(ctx context.Context, id string) (*models.CoffeeTruck, error) {
	publicUser := func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "image")
	}

	var truck models.CoffeeTruck
	err := r.db.WithContext(ctx).
		Preload("Images", primaryFirst).
		Preload("Owner", publicUser).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Reviews.User", publicUser).
		First(&truck, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("truck with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get truck detail %s: %w", id, err)
	}
	return &truck, nil
}

// Create creates a new truck in the database.
func (r *GORMTruckRepository) Create(ctx context.Context, truck *models.CoffeeTruck) error {
	if truck.ID == "" {
		truck.ID = uuid.New().String()
	}
	for i := range truck.Images {
		if truck.Images[i].ID == "" {
			truck.Images[i].ID = uuid.New().String()
		}
	}
	if err := r.db.WithContext(ctx).Omit("Owner", "Reviews").Create(truck).Error; err != nil {
		return fmt.Errorf("failed to create truck: %w", err)
	}
	return nil
}

// Update writes the truck's name, city and address. Owner and coordinates are
// left untouched.
func (r *GORMTruckRepository) Update(ctx context.Context, truck *models.CoffeeTruck) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.CoffeeTruck{}).
		Where("id = ?", truck.ID).
		Updates(map[string]interface{}{
			"name":       truck.Name,
			"city":       truck.City,
			"address":    truck.Address,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update truck: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("truck with ID %s: %w", truck.ID, ErrNotFound)
	}
	truck.UpdatedAt = now
	return nil
}
