package models

import "time"

// Review is a star rating with text, written by one user for one truck.
// (TruckID, UserID) is unique.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TruckID   string    `json:"truckId" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_truck_user"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_truck_user;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}
