package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"coffeetrucks/internal/models"
	"coffeetrucks/internal/validation"

	"github.com/google/uuid"
)

// MockStore is an in-memory backing store shared by the Mock repositories.
// It enforces the same (truck, user) uniqueness as the database schema.
type MockStore struct {
	mu          sync.RWMutex
	users       map[string]models.User
	trucks      map[string]models.CoffeeTruck
	images      map[string]models.CoffeeTruckImage
	reviews     map[string]models.Review
	reviewIndex map[string]string // truckID + "/" + userID -> review ID
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:       make(map[string]models.User),
		trucks:      make(map[string]models.CoffeeTruck),
		images:      make(map[string]models.CoffeeTruckImage),
		reviews:     make(map[string]models.Review),
		reviewIndex: make(map[string]string),
	}
}

func reviewKey(truckID, userID string) string { return truckID + "/" + userID }

func (s *MockStore) Users() *MockUserRepository { return &MockUserRepository{s: s} }
func (s *MockStore) Trucks() *MockTruckRepository { return &MockTruckRepository{s: s} }
func (s *MockStore) Images() *MockImageRepository { return &MockImageRepository{s: s} }
func (s *MockStore) Reviews() *MockReviewRepository { return &MockReviewRepository{s: s} }

// publicUser mirrors the columns GetDetail loads from the database.
func (s *MockStore) publicUser(id string) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &models.User{ID: u.ID, Name: u.Name, Image: u.Image}
}

func (s *MockStore) imagesOf(truckID string) []models.CoffeeTruckImage {
	var out []models.CoffeeTruckImage
	for _, img := range s.images {
		if img.TruckID == truckID {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *MockStore) reviewsOf(truckID string) []models.Review {
	var out []models.Review
	for _, r := range s.reviews {
		if r.TruckID == truckID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct{ s *MockStore }

// Create adds a new user.
func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := validation.ValidateUser(user); err != nil {
		return fmt.Errorf("user %q: %w: %v", user.Email, ErrInvalid, err)
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

// GetByID returns a user by its ID.
func (r *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &u, nil
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// MockTruckRepository is an in-memory implementation of TruckRepository.
type MockTruckRepository struct{ s *MockStore }

// GetAll returns all trucks, newest first, with images.
func (r *MockTruckRepository) GetAll(_ context.Context) ([]models.CoffeeTruck, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trucks := make([]models.CoffeeTruck, 0, len(r.s.trucks))
	for _, t := range r.s.trucks {
		t.Images = r.s.imagesOf(t.ID)
		trucks = append(trucks, t)
	}
	sort.SliceStable(trucks, func(i, j int) bool { return trucks[i].CreatedAt.After(trucks[j].CreatedAt) })
	return trucks, nil
}

// GetByID returns a truck by its ID.
func (r *MockTruckRepository) GetByID(_ context.Context, id string) (*models.CoffeeTruck, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.trucks[id]
	if !ok {
		return nil, fmt.Errorf("truck with ID %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

// GetDetail returns a truck with images, owner and reviews.
func (r *MockTruckRepository) GetDetail(_ context.Context, id string) (*models.CoffeeTruck, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.trucks[id]
	if !ok {
		return nil, fmt.Errorf("truck with ID %s: %w", id, ErrNotFound)
	}
	t.Images = r.s.imagesOf(id)
	t.Owner = r.s.publicUser(t.OwnerID)
	t.Reviews = r.s.reviewsOf(id)
	for i := range t.Reviews {
		t.Reviews[i].User = r.s.publicUser(t.Reviews[i].UserID)
	}
	return &t, nil
}

// Create adds a new truck. Images set on the truck are stored too.
func (r *MockTruckRepository) Create(_ context.Context, truck *models.CoffeeTruck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if truck.ID == "" {
		truck.ID = uuid.New().String()
	}
	now := time.Now()
	truck.CreatedAt, truck.UpdatedAt = now, now
	for i := range truck.Images {
		img := &truck.Images[i]
		if img.ID == "" {
			img.ID = uuid.New().String()
		}
		img.TruckID = truck.ID
		img.CreatedAt = now
		r.s.images[img.ID] = *img
	}

	stored := *truck
	stored.Images, stored.Reviews, stored.Owner = nil, nil, nil
	r.s.trucks[truck.ID] = stored
	return nil
}

// Update writes name, city and address.
func (r *MockTruckRepository) Update(_ context.Context, truck *models.CoffeeTruck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.trucks[truck.ID]
	if !ok {
		return fmt.Errorf("truck with ID %s: %w", truck.ID, ErrNotFound)
	}
	stored.Name, stored.City, stored.Address = truck.Name, truck.City, truck.Address
	stored.UpdatedAt = time.Now()
	r.s.trucks[truck.ID] = stored
	truck.UpdatedAt = stored.UpdatedAt
	return nil
}

// MockImageRepository is an in-memory implementation of ImageRepository.
type MockImageRepository struct{ s *MockStore }

// Create adds image metadata.
func (r *MockImageRepository) Create(_ context.Context, image *models.CoffeeTruckImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.trucks[image.TruckID]; !ok {
		return fmt.Errorf("truck with ID %s: %w", image.TruckID, ErrNotFound)
	}
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	image.CreatedAt = time.Now()
	r.s.images[image.ID] = *image
	return nil
}

// ListByTruck returns a truck's images, primary first.
func (r *MockImageRepository) ListByTruck(_ context.Context, truckID string) ([]models.CoffeeTruckImage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.imagesOf(truckID), nil
}

// MockReviewRepository is an in-memory implementation of ReviewRepository.
type MockReviewRepository struct{ s *MockStore }

// GetByID returns a review by its ID.
func (r *MockReviewRepository) GetByID(_ context.Context, id string) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review with ID %s: %w", id, ErrNotFound)
	}
	return &rv, nil
}

// GetByTruckAndUser returns the review a user wrote for a truck.
func (r *MockReviewRepository) GetByTruckAndUser(_ context.Context, truckID, userID string) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.reviewIndex[reviewKey(truckID, userID)]
	if !ok {
		return nil, fmt.Errorf("review of truck %s by user %s: %w", truckID, userID, ErrNotFound)
	}
	rv := r.s.reviews[id]
	return &rv, nil
}

// ListByTruck returns a truck's reviews, newest first.
func (r *MockReviewRepository) ListByTruck(_ context.Context, truckID string) ([]models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.reviewsOf(truckID), nil
}

// Create adds a review, rejecting a second review by the same user.
func (r *MockReviewRepository) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := reviewKey(review.TruckID, review.UserID)
	if _, exists := r.s.reviewIndex[key]; exists {
		return fmt.Errorf("review of truck %s by user %s: %w", review.TruckID, review.UserID, ErrDuplicate)
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	now := time.Now()
	review.CreatedAt, review.UpdatedAt = now, now

	stored := *review
	stored.User = nil
	r.s.reviews[review.ID] = stored
	r.s.reviewIndex[key] = review.ID
	return nil
}

// Update writes rating and content.
func (r *MockReviewRepository) Update(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.reviews[review.ID]
	if !ok {
		return fmt.Errorf("review with ID %s: %w", review.ID, ErrNotFound)
	}
	stored.Rating, stored.Content = review.Rating, review.Content
	stored.UpdatedAt = time.Now()
	r.s.reviews[review.ID] = stored
	review.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes a review by its ID.
func (r *MockReviewRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv, ok := r.s.reviews[id]
	if !ok {
		return fmt.Errorf("review with ID %s: %w", id, ErrNotFound)
	}
	delete(r.s.reviews, id)
	delete(r.s.reviewIndex, reviewKey(rv.TruckID, rv.UserID))
	return nil
}
