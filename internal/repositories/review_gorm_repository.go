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

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// GetByID retrieves a review by its ID.
func (r *GORMReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review by ID %s: %w", id, err)
	}
	return &review, nil
}

// GetByTruckAndUser retrieves the review a user wrote for a truck.
func (r *GORMReviewRepository) GetByTruckAndUser(ctx context.Context, truckID, userID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("truck_id = ? AND user_id = ?", truckID, userID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review of truck %s by user %s: %w", truckID, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review of truck %s by user %s: %w", truckID, userID, err)
	}
	return &review, nil
}

// ListByTruck returns a truck's reviews, newest first.
func (r *GORMReviewRepository) ListByTruck(ctx context.Context, truckID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("truck_id = ?", truckID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for truck %s: %w", truckID, err)
	}
	return reviews, nil
}

// Create inserts a review. The unique index on (truck_id, user_id) decides
// concurrent creates; the loser gets ErrDuplicate.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review of truck %s by user %s: %w", review.TruckID, review.UserID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// Update writes the review's rating and content.
func (r *GORMReviewRepository) Update(ctx context.Context, review *models.Review) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"rating":     review.Rating,
			"content":    review.Content,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %s: %w", review.ID, ErrNotFound)
	}
	review.UpdatedAt = now
	return nil
}

// Delete removes a review by its ID.
func (r *GORMReviewRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
