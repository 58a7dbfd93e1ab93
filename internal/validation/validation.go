// Package validation checks review, truck and user input. It has no side effects.
package validation

import (
	"fmt"
	"math"
	"strings"

	"coffeetrucks/internal/apperr"
	"coffeetrucks/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinContentLength = 10
	MaxContentLength = 1000
	MaxNameLength    = 100
	MaxAddressLength = 500
)

// Field names reported with MissingField.
const (
	FieldName    = "name"
	FieldCity    = "city"
	FieldAddress = "address"
)

var validate = validator.New()

var (
	ratingRule     = fmt.Sprintf("min=%d,max=%d", MinRating, MaxRating)
	contentMinRule = fmt.Sprintf("min=%d", MinContentLength)
	contentMaxRule = fmt.Sprintf("max=%d", MaxContentLength)
	nameMaxRule    = fmt.Sprintf("max=%d", MaxNameLength)
	addressMaxRule = fmt.Sprintf("max=%d", MaxAddressLength)
)

// TruckFields holds trimmed, validated truck fields.
type TruckFields struct {
	Name    string
	City    string
	Address string
}

// ValidateReviewInput checks rating and content and returns the trimmed content.
func ValidateReviewInput(rating int, content string) (string, error) {
	if err := validate.Var(rating, ratingRule); err != nil {
		return "", apperr.NewInvalid(apperr.RatingOutOfRange, "", "דירוג חייב להיות בין 1 ל-5")
	}

	trimmed := strings.TrimSpace(content)
	if err := validate.Var(trimmed, "required"); err != nil {
		return "", apperr.NewInvalid(apperr.ContentEmpty, "", "יש לכתוב תוכן לביקורת")
	}
	if err := validate.Var(trimmed, contentMinRule); err != nil {
		return "", apperr.NewInvalid(apperr.ContentTooShort, "", "התוכן קצר מדי (מינימום 10 תווים)")
	}
	if err := validate.Var(trimmed, contentMaxRule); err != nil {
		return "", apperr.NewInvalid(apperr.ContentTooLong, "", "התוכן ארוך מדי (מקסימום 1000 תווים)")
	}
	return trimmed, nil
}

// ValidateTruckInput checks the editable truck fields and returns them trimmed.
// City has no length limit.
func ValidateTruckInput(name, city, address string) (TruckFields, error) {
	f := TruckFields{
		Name:    strings.TrimSpace(name),
		City:    strings.TrimSpace(city),
		Address: strings.TrimSpace(address),
	}

	if validate.Var(f.Name, "required") != nil {
		return TruckFields{}, apperr.NewInvalid(apperr.MissingField, FieldName, "שם העגלה נדרש")
	}
	if validate.Var(f.City, "required") != nil {
		return TruckFields{}, apperr.NewInvalid(apperr.MissingField, FieldCity, "עיר נדרשת")
	}
	if validate.Var(f.Address, "required") != nil {
		return TruckFields{}, apperr.NewInvalid(apperr.MissingField, FieldAddress, "כתובת נדרשת")
	}
	if validate.Var(f.Name, nameMaxRule) != nil {
		return TruckFields{}, apperr.NewInvalid(apperr.NameTooLong, "", "שם העגלה לא יכול לעלות על 100 תווים")
	}
	if validate.Var(f.Address, addressMaxRule) != nil {
		return TruckFields{}, apperr.NewInvalid(apperr.AddressTooLong, "", "הכתובת לא יכולה לעלות על 500 תווים")
	}
	return f, nil
}

// ValidateUser checks a user record against its struct tags.
func ValidateUser(u *models.User) error {
	return validate.Struct(u)
}

// WholeRating converts a decoded JSON number to a rating. Values that are not
// whole numbers map to 0, which ValidateReviewInput rejects.
func WholeRating(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}
