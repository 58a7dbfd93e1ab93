// Package cache stores rendered read views and carries the revalidation
// signal the mutation services emit after every successful write.
package cache

import (
	"context"
	"errors"
)

// TrucksPath is the truck list view.
const TrucksPath = "/trucks"

// TruckPath is the detail view of one truck.
func TruckPath(truckID string) string { return TrucksPath + "/" + truckID }

// Revalidator marks view paths as stale so the next read recomputes them.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

// Views is a store of rendered views keyed by path.
//
// A reader takes the path's Generation before rendering and stores the result
// with SetIfCurrent, which refuses the write if the path was revalidated in
// between. A view rendered from rows older than the revalidation is thus never
// cached.
type Views interface {
	Revalidator
	Get(ctx context.Context, path string) ([]byte, bool, error)
	Generation(ctx context.Context, path string) (uint64, error)
	SetIfCurrent(ctx context.Context, path string, gen uint64, body []byte) (bool, error)
}

// RevalidatorFunc adapts a function to Revalidator.
type RevalidatorFunc func(ctx context.Context, paths ...string) error

func (f RevalidatorFunc) Revalidate(ctx context.Context, paths ...string) error {
	return f(ctx, paths...)
}

// Chain returns a Revalidator that calls each non-nil revalidator in order.
// All of them run even if one fails; the failures are joined.
func Chain(revalidators ...Revalidator) Revalidator {
	var rs []Revalidator
	for _, r := range revalidators {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return RevalidatorFunc(func(ctx context.Context, paths ...string) error {
		var errs []error
		for _, r := range rs {
			if err := r.Revalidate(ctx, paths...); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
