package services_test

import (
	"context"
	"io"
	"os"
	"testing"

	"coffeetrucks/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTruckRepository is a mock implementation of repositories.TruckRepository
type MockTruckRepository struct {
	mock.Mock
}

func (m *MockTruckRepository) GetAll(ctx context.Context) ([]models.CoffeeTruck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CoffeeTruck), args.Error(1)
}

func (m *MockTruckRepository) GetByID(ctx context.Context, id string) (*models.CoffeeTruck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoffeeTruck), args.Error(1)
}

func (m *MockTruckRepository) GetDetail(ctx context.Context, id string) (*models.CoffeeTruck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoffeeTruck), args.Error(1)
}

func (m *MockTruckRepository) Create(ctx context.Context, truck *models.CoffeeTruck) error {
	args := m.Called(ctx, truck)
	return args.Error(0)
}

func (m *MockTruckRepository) Update(ctx context.Context, truck *models.CoffeeTruck) error {
	args := m.Called(ctx, truck)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByTruckAndUser(ctx context.Context, truckID, userID string) (*models.Review, error) {
	args := m.Called(ctx, truckID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByTruck(ctx context.Context, truckID string) ([]models.Review, error) {
	args := m.Called(ctx, truckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRevalidator records the view paths it is asked to revalidate.
type MockRevalidator struct {
	mock.Mock
}

func (m *MockRevalidator) Revalidate(ctx context.Context, paths ...string) error {
	args := m.Called(paths)
	return args.Error(0)
}

func TestMain(m *testing.M) {
	// Storage failures are logged; keep test output clean.
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}
