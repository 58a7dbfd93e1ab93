package services

import (
	"context"

	"coffeetrucks/internal/apperr"
	"coffeetrucks/internal/cache"

	"github.com/sirupsen/logrus"
)

// storageFailure logs an unexpected repository error and hides it behind the
// operation's generic message.
func storageFailure(op, message string, err error, fields logrus.Fields) error {
	logrus.WithFields(fields).WithField("op", op).WithError(err).Error("storage failure")
	return apperr.NewUnavailable(message, err)
}

// revalidate emits the invalidation signal. The write has already committed,
// so a failure here is logged and otherwise ignored.
func revalidate(ctx context.Context, r cache.Revalidator, paths ...string) {
	if r == nil {
		return
	}
	if err := r.Revalidate(ctx, paths...); err != nil {
		logrus.WithField("paths", paths).WithError(err).Warn("view revalidation failed")
	}
}
