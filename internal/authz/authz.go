// Package authz holds the ownership and role predicates for truck and review
// mutations. Callers fetch the entities; nothing here does I/O.
package authz

import "coffeetrucks/internal/models"

// IsTruckOwner reports whether userID owns truck.
func IsTruckOwner(userID string, truck *models.CoffeeTruck) bool {
	return truck != nil && userID != "" && userID == truck.OwnerID
}

// CanMutateTruck reports whether user may edit truck: its owner or any admin.
func CanMutateTruck(user *models.User, truck *models.CoffeeTruck) bool {
	if user == nil || truck == nil {
		return false
	}
	return IsTruckOwner(user.ID, truck) || user.Role == models.RoleAdmin
}

// CanCreateTruck reports whether user may create a truck listing.
func CanCreateTruck(user *models.User) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleTruckOwner || user.Role == models.RoleAdmin
}

// CanMutateReview reports whether user may edit or delete review. Only the
// author may; admins get no override here.
func CanMutateReview(user *models.User, review *models.Review) bool {
	if user == nil || review == nil || user.ID == "" {
		return false
	}
	return user.ID == review.UserID
}
