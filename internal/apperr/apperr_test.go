package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"coffeetrucks/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindReasonAndEntity(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", apperr.NewNotFound(apperr.EntityTruck))

	assert.True(t, errors.Is(err, apperr.NewNotFound(apperr.EntityTruck)))
	assert.False(t, errors.Is(err, apperr.NewNotFound(apperr.EntityReview)))
	assert.True(t, errors.Is(err, &apperr.Error{Kind: apperr.NotFound}))
	assert.False(t, errors.Is(err, apperr.NewForbidden("")))

	invalid := apperr.NewInvalid(apperr.ContentTooShort, "", "short")
	assert.True(t, errors.Is(invalid, &apperr.Error{Kind: apperr.Validation, Reason: apperr.ContentTooShort}))
	assert.False(t, errors.Is(invalid, &apperr.Error{Kind: apperr.Validation, Reason: apperr.ContentTooLong}))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(apperr.NewUnauthenticated()))
	assert.Equal(t, apperr.ServiceUnavailable, apperr.KindOf(errors.New("boom")))
}

func TestNewUnavailable_HidesCauseFromMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.NewUnavailable(apperr.MsgCreateReviewFailed, cause)

	assert.Equal(t, apperr.MsgCreateReviewFailed, err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewUnauthenticated_Message(t *testing.T) {
	assert.Equal(t, "אינך מחובר", apperr.NewUnauthenticated().Message)
}
