// Package seed fills an empty database with demo users, trucks and reviews.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coffeetrucks/internal/models"
	"coffeetrucks/internal/repositories"
	"coffeetrucks/internal/session"

	"github.com/sirupsen/logrus"
)

const (
	regularUsers = 8
	truckOwners  = 4
	imagesEach   = 3

	// AdminEmail marks a database as already seeded.
	AdminEmail = "admin@example.com"

	devTokenTTL = 30 * 24 * time.Hour
)

type place struct {
	city, address string
	lat, lng      float64
}

var places = []place{
	{"תל אביב", "שדרות רוטשילד 12", 32.0636, 34.7745},
	{"חיפה", "דרך העצמאות 45", 32.8193, 34.9991},
	{"ירושלים", "רחוב יפו 97", 31.7857, 35.2125},
	{"באר שבע", "שדרות רגר 30", 31.2518, 34.7913},
}

var names = []string{
	"נועה כהן", "איתי לוי", "מאיה מזרחי", "יונתן פרץ", "שירה ביטון",
	"דניאל אברהם", "תמר פרידמן", "עומר דהן", "רוני שפירא", "אורי גולן",
	"ליה כץ", "אביב חדד", "מיכל ברק",
}

var reviewTexts = []string{
	"אספרסו מצוין ושירות מהיר, בהחלט אחזור",
	"הקפה טעים אבל התור היה ארוך מדי בבוקר",
	"הלאטה הכי טוב שיש בעיר, ממליץ בחום",
	"מקום נעים, מאפים טריים וקפה חזק",
}

// Users is the subset of the user repository the seeder needs.
type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Run creates the demo data and logs a development session token for every
// seeded user. It does nothing when the admin user already exists.
func Run(ctx context.Context, users Users, trucks repositories.TruckRepository, images repositories.ImageRepository, reviews repositories.ReviewRepository, signer *session.Verifier) error {
	if _, err := users.GetByEmail(ctx, AdminEmail); err == nil {
		logrus.Info("seed data already present")
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check seed state: %w", err)
	}

	var created []*models.User
	newUser := func(i int, email string, role models.Role) (*models.User, error) {
		u := &models.User{Name: names[i%len(names)], Email: email, Role: role}
		if err := users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", email, err)
		}
		created = append(created, u)
		return u, nil
	}

	var reviewers, owners []*models.User
	for i := 0; i < regularUsers; i++ {
		u, err := newUser(i, fmt.Sprintf("user%d@example.com", i+1), models.RoleUser)
		if err != nil {
			return err
		}
		reviewers = append(reviewers, u)
	}
	for i := 0; i < truckOwners; i++ {
		u, err := newUser(regularUsers+i, fmt.Sprintf("owner%d@example.com", i+1), models.RoleTruckOwner)
		if err != nil {
			return err
		}
		owners = append(owners, u)
	}

	var seeded []*models.CoffeeTruck
	for i, owner := range owners {
		p := places[i%len(places)]
		lat, lng := p.lat, p.lng
		truck := &models.CoffeeTruck{
			Name:      fmt.Sprintf("עגלת הקפה של %s", owner.Name),
			City:      p.city,
			Address:   p.address,
			Latitude:  &lat,
			Longitude: &lng,
			OwnerID:   owner.ID,
		}
		if err := trucks.Create(ctx, truck); err != nil {
			return fmt.Errorf("failed to seed truck for %s: %w", owner.Email, err)
		}
		for j := 0; j < imagesEach; j++ {
			img := &models.CoffeeTruckImage{
				TruckID:   truck.ID,
				URL:       fmt.Sprintf("https://picsum.photos/seed/truck%d-%d/800/600", i+1, j+1),
				PublicID:  fmt.Sprintf("coffee_truck_%d_%d", i+1, j),
				Alt:       fmt.Sprintf("%s - תמונה %d", truck.Name, j+1),
				IsPrimary: j == 0,
			}
			if err := images.Create(ctx, img); err != nil {
				return fmt.Errorf("failed to seed image for truck %s: %w", truck.ID, err)
			}
		}
		seeded = append(seeded, truck)
	}

	for ui, u := range reviewers {
		for ti, truck := range seeded {
			r := &models.Review{
				TruckID: truck.ID,
				UserID:  u.ID,
				Rating:  3 + (ui+ti)%3,
				Content: reviewTexts[(ui+ti)%len(reviewTexts)],
			}
			if err := reviews.Create(ctx, r); err != nil {
				return fmt.Errorf("failed to seed review by %s: %w", u.Email, err)
			}
		}
	}

	if _, err := newUser(regularUsers+truckOwners, AdminEmail, models.RoleAdmin); err != nil {
		return err
	}

	for _, u := range created {
		entry := logrus.WithFields(logrus.Fields{"email": u.Email, "role": u.Role, "user_id": u.ID})
		if signer == nil {
			entry.Info("seeded user")
			continue
		}
		token, err := signer.Sign(u.ID, devTokenTTL)
		if err != nil {
			return err
		}
		entry.WithField("token", token).Info("seeded user")
	}

	logrus.WithFields(logrus.Fields{
		"users":   len(created),
		"trucks":  len(seeded),
		"reviews": len(reviewers) * len(seeded),
	}).Info("seed completed")
	return nil
}
