package models

import "time"

// CoffeeTruck is a coffee truck listing.
type CoffeeTruck struct {
	ID        string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string             `json:"name" gorm:"type:varchar(100);not null"`
	City      string             `json:"city" gorm:"not null"`
	Address   string             `json:"address" gorm:"type:varchar(500);not null"`
	Latitude  *float64           `json:"latitude,omitempty"`
	Longitude *float64           `json:"longitude,omitempty"`
	OwnerID   string             `json:"ownerId" gorm:"type:varchar(36);not null;index"`
	Owner     *User              `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Images    []CoffeeTruckImage `json:"images,omitempty" gorm:"foreignKey:TruckID;constraint:OnDelete:CASCADE"`
	Reviews   []Review           `json:"reviews,omitempty" gorm:"foreignKey:TruckID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time          `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// CoffeeTruckImage is a photo attached to a truck.
type CoffeeTruckImage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TruckID   string    `json:"truckId" gorm:"type:varchar(36);not null;index"`
	URL       string    `json:"url" gorm:"type:varchar(2048);not null"`
	PublicID  string    `json:"publicId,omitempty" gorm:"type:varchar(255)"`
	Alt       string    `json:"alt"`
	IsPrimary bool      `json:"isPrimary" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// PrimaryImage returns the first image flagged primary, falling back to the
// first image in listing order. It returns nil for an empty slice.
func PrimaryImage(images []CoffeeTruckImage) *CoffeeTruckImage {
	for i := range images {
		if images[i].IsPrimary {
			return &images[i]
		}
	}
	if len(images) > 0 {
		return &images[0]
	}
	return nil
}
