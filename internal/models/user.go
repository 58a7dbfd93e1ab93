package models

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleUser       Role = "USER"
	RoleTruckOwner Role = "TRUCK_OWNER"
	RoleAdmin      Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTruckOwner, RoleAdmin:
		return true
	}
	return false
}

// User represents a person known to the directory.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,max=36"`
	Name      string    `json:"name" gorm:"type:varchar(255)" validate:"max=255"`
	Email     string    `json:"email,omitempty" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Image     string    `json:"image,omitempty" gorm:"type:varchar(2048)" validate:"omitempty,url"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:USER" validate:"required,oneof=USER TRUCK_OWNER ADMIN"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
