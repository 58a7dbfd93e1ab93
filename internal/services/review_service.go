package services

import (
	"context"
	"errors"

	"coffeetrucks/internal/apperr"
	"coffeetrucks/internal/authz"
	"coffeetrucks/internal/cache"
	"coffeetrucks/internal/models"
	"coffeetrucks/internal/repositories"
	"coffeetrucks/internal/session"
	"coffeetrucks/internal/validation"

	"github.com/sirupsen/logrus"
)

// ReviewService handles creating, editing and deleting reviews.
type ReviewService struct {
	reviews     repositories.ReviewRepository
	trucks      repositories.TruckRepository
	revalidator cache.Revalidator
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, trucks repositories.TruckRepository, revalidator cache.Revalidator) *ReviewService {
	return &ReviewService{
		reviews:     reviews,
		trucks:      trucks,
		revalidator: revalidator,
	}
}

// Create writes a review of truckID by the session user. Input is validated
// before the truck and duplicate lookups.
func (s *ReviewService) Create(ctx context.Context, sess *session.User, truckID string, rating int, content string) (*models.Review, error) {
	if sess == nil || sess.ID == "" {
		return nil, apperr.NewUnauthenticated()
	}

	trimmed, err := validation.ValidateReviewInput(rating, content)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"truck_id": truckID, "user_id": sess.ID}
	if _, err := s.trucks.GetByID(ctx, truckID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NewNotFound(apperr.EntityTruck)
		}
		return nil, storageFailure("create_review", apperr.MsgCreateReviewFailed, err, fields)
	}

	// Early exit only; the unique index settles concurrent creates below.
	existing, err := s.reviews.GetByTruckAndUser(ctx, truckID, sess.ID)
	switch {
	case err == nil && existing != nil:
		return nil, apperr.NewDuplicateReview()
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, storageFailure("create_review", apperr.MsgCreateReviewFailed, err, fields)
	}

	review := &models.Review{
		TruckID: truckID,
		UserID:  sess.ID,
		Rating:  rating,
		Content: trimmed,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.NewDuplicateReview()
		}
		return nil, storageFailure("create_review", apperr.MsgCreateReviewFailed, err, fields)
	}

	revalidate(ctx, s.revalidator, cache.TrucksPath, cache.TruckPath(truckID))
	return review, nil
}

// Update changes the rating and content of the session user's review.
// Ownership is checked before the input.
func (s *ReviewService) Update(ctx context.Context, sess *session.User, reviewID string, rating int, content string) (*models.Review, error) {
	if sess == nil || sess.ID == "" {
		return nil, apperr.NewUnauthenticated()
	}

	review, err := s.authorReview(ctx, sess, reviewID, "update_review", apperr.MsgUpdateReviewFailed)
	if err != nil {
		return nil, err
	}

	trimmed, err := validation.ValidateReviewInput(rating, content)
	if err != nil {
		return nil, err
	}

	review.Rating = rating
	review.Content = trimmed
	if err := s.reviews.Update(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NewNotFound(apperr.EntityReview)
		}
		return nil, storageFailure("update_review", apperr.MsgUpdateReviewFailed, err,
			logrus.Fields{"review_id": reviewID, "user_id": sess.ID})
	}

	revalidate(ctx, s.revalidator, cache.TrucksPath, cache.TruckPath(review.TruckID))
	return review, nil
}

// Delete removes the session user's review.
func (s *ReviewService) Delete(ctx context.Context, sess *session.User, reviewID string) error {
	if sess == nil || sess.ID == "" {
		return apperr.NewUnauthenticated()
	}

	review, err := s.authorReview(ctx, sess, reviewID, "delete_review", apperr.MsgDeleteReviewFailed)
	if err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NewNotFound(apperr.EntityReview)
		}
		return storageFailure("delete_review", apperr.MsgDeleteReviewFailed, err,
			logrus.Fields{"review_id": reviewID, "user_id": sess.ID})
	}

	revalidate(ctx, s.revalidator, cache.TrucksPath, cache.TruckPath(review.TruckID))
	return nil
}

// authorReview loads reviewID and checks that the session user wrote it.
func (s *ReviewService) authorReview(ctx context.Context, sess *session.User, reviewID, op, failMsg string) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NewNotFound(apperr.EntityReview)
		}
		return nil, storageFailure(op, failMsg, err, logrus.Fields{"review_id": reviewID, "user_id": sess.ID})
	}

	if !authz.CanMutateReview(&models.User{ID: sess.ID}, review) {
		return nil, apperr.NewForbidden("")
	}
	return review, nil
}
