package services

import (
	"context"
	"errors"

	"coffeetrucks/internal/apperr"
	"coffeetrucks/internal/authz"
	"coffeetrucks/internal/cache"
	"coffeetrucks/internal/models"
	"coffeetrucks/internal/rating"
	"coffeetrucks/internal/repositories"
	"coffeetrucks/internal/session"
	"coffeetrucks/internal/validation"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ratingFanOut bounds concurrent rating reads on the list view.
const ratingFanOut = 8

// TruckInput is the editable part of a truck listing.
type TruckInput struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// TruckSummary is a truck as shown on the list view.
type TruckSummary struct {
	models.CoffeeTruck
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
}

// TruckDetail is a truck as shown on its detail view.
type TruckDetail struct {
	models.CoffeeTruck
	PrimaryImage *models.CoffeeTruckImage `json:"primaryImage,omitempty"`
	AvgRating    float64                  `json:"avgRating"`
	ReviewCount  int                      `json:"reviewCount"`
}

// TruckService handles truck listings.
type TruckService struct {
	trucks      repositories.TruckRepository
	reviews     repositories.ReviewRepository
	users       repositories.UserRepository
	revalidator cache.Revalidator
}

// NewTruckService creates a new TruckService.
func NewTruckService(trucks repositories.TruckRepository, reviews repositories.ReviewRepository, users repositories.UserRepository, revalidator cache.Revalidator) *TruckService {
	return &TruckService{
		trucks:      trucks,
		reviews:     reviews,
		users:       users,
		revalidator: revalidator,
	}
}

// Create adds a truck owned by the session user, who must be a truck owner or
// an admin.
func (s *TruckService) Create(ctx context.Context, sess *session.User, in TruckInput) (*models.CoffeeTruck, error) {
	if sess == nil || sess.ID == "" {
		return nil, apperr.NewUnauthenticated()
	}

	fields := logrus.Fields{"user_id": sess.ID}
	user, err := s.users.GetByID(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NewUserNotFound()
		}
		return nil, storageFailure("create_truck", apperr.MsgSaveTruckFailed, err, fields)
	}

	if !authz.CanCreateTruck(user) {
		return nil, apperr.NewForbidden(apperr.MsgOnlyOwnersCreateTrucks)
	}

	valid, err := validation.ValidateTruckInput(in.Name, in.City, in.Address)
	if err != nil {
		return nil, err
	}

	truck := &models.CoffeeTruck{
		Name:    valid.Name,
		City:    valid.City,
		Address: valid.Address,
		OwnerID: sess.ID,
	}
	if err := s.trucks.Create(ctx, truck); err != nil {
		return nil, storageFailure("create_truck", apperr.MsgSaveTruckFailed, err, fields)
	}

	revalidate(ctx, s.revalidator, cache.TrucksPath)
	return truck, nil
}

// Update edits a truck's name, city and address. The owner may edit it, and so
// may any admin; the caller's role is only looked up for non-owners.
func (s *TruckService) Update(ctx context.Context, sess *session.User, truckID string, in TruckInput) (*models.CoffeeTruck, error) {
	if sess == nil || sess.ID == "" {
		return nil, apperr.NewUnauthenticated()
	}

	fields := logrus.Fields{"truck_id": truckID, "user_id": sess.ID}
	truck, err := s.trucks.GetByID(ctx, truckID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NewNotFound(apperr.EntityTruck)
		}
		return nil, storageFailure("update_truck", apperr.MsgSaveTruckFailed, err, fields)
	}

	caller := &models.User{ID: sess.ID}
	if !authz.CanMutateTruck(caller, truck) {
		caller, err = s.users.GetByID(ctx, sess.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, storageFailure("update_truck", apperr.MsgSaveTruckFailed, err, fields)
		}
		if !authz.CanMutateTruck(caller, truck) {
			return nil, apperr.NewForbidden("")
		}
	}

	valid, err := validation.ValidateTruckInput(in.Name, in.City, in.Address)
	if err != nil {
		return nil, err
	}

	truck.Name = valid.Name
	truck.City = valid.City
	truck.Address = valid.Address
	if err := s.trucks.Update(ctx, truck); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NewNotFound(apperr.EntityTruck)
		}
		return nil, storageFailure("update_truck", apperr.MsgSaveTruckFailed, err, fields)
	}

	revalidate(ctx, s.revalidator, cache.TrucksPath, cache.TruckPath(truckID))
	return truck, nil
}

// ListTrucks returns every truck with its rating. Ratings of different trucks
// are read concurrently.
func (s *TruckService) ListTrucks(ctx context.Context) ([]TruckSummary, error) {
	trucks, err := s.trucks.GetAll(ctx)
	if err != nil {
		return nil, storageFailure("list_trucks", apperr.MsgLoadTrucksFailed, err, nil)
	}

	out := make([]TruckSummary, len(trucks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ratingFanOut)
	for i := range trucks {
		i := i
		g.Go(func() error {
			reviews, err := s.reviews.ListByTruck(gctx, trucks[i].ID)
			if err != nil {
				return err
			}
			sum := rating.Summarize(reviews)
			out[i] = TruckSummary{CoffeeTruck: trucks[i], AvgRating: sum.Average, ReviewCount: sum.Count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storageFailure("list_trucks", apperr.MsgLoadTrucksFailed, err, nil)
	}
	return out, nil
}

// GetTruck returns one truck with images, owner, reviews and rating.
func (s *TruckService) GetTruck(ctx context.Context, truckID string) (*TruckDetail, error) {
	truck, err := s.trucks.GetDetail(ctx, truckID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NewNotFound(apperr.EntityTruck)
		}
		return nil, storageFailure("get_truck", apperr.MsgLoadTrucksFailed, err, logrus.Fields{"truck_id": truckID})
	}

	sum := rating.Summarize(truck.Reviews)
	return &TruckDetail{
		CoffeeTruck:  *truck,
		PrimaryImage: models.PrimaryImage(truck.Images),
		AvgRating:    sum.Average,
		ReviewCount:  sum.Count,
	}, nil
}
