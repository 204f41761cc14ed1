package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxShortText     = 200
	MaxEmailLength   = 254
	MoneyDigits      = 10
	MoneyDecimals    = 2
	MinRating        = 1
	MaxRating        = 5
	MaxGuestsLimit   = 2147483647
	msgRequired      = "This field is required."
	msgMaxDecimals   = "Ensure that there are no more than 2 decimal places."
	msgMaxDigits     = "Ensure that there are no more than 10 digits in total."
	msgNonNegative   = "Ensure this value is greater than or equal to 0."
	msgBlankRejected = "This field may not be blank."
)

// ValidateDateRange rejects a stay that ends before it starts.
func ValidateDateRange(start, end Date) *ValidationError {
	if end.Before(start) {
		return NewValidationError("end_date", "End date must be after start date.")
	}
	return nil
}

func ValidateTotalPrice(p decimal.Decimal) *ValidationError {
	if p.IsNegative() {
		return NewValidationError("total_price", "Total price must be non-negative.")
	}
	return validatePrecision("total_price", p)
}

func ValidateRating(r int) *ValidationError {
	switch {
	case r < MinRating:
		return NewValidationError("rating", fmt.Sprintf("Ensure this value is greater than or equal to %d.", MinRating))
	case r > MaxRating:
		return NewValidationError("rating", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxRating))
	}
	return nil
}

func validatePricePerNight(p decimal.Decimal) *ValidationError {
	if p.IsNegative() {
		return NewValidationError("price_per_night", msgNonNegative)
	}
	return validatePrecision("price_per_night", p)
}

// maxCoefficientBits bounds the unscaled value before any rescaling. 10^22
// fits; anything wider cannot be a DECIMAL(10,2) whatever its exponent.
const maxCoefficientBits = 74

// validatePrecision mirrors a DECIMAL(10,2) column.
func validatePrecision(field string, p decimal.Decimal) *ValidationError {
	// Round and Abs rescale to 10^|exponent|; reject huge exponents first
	exp := p.Exponent()
	if exp > MoneyDigits || exp < -(MoneyDigits+MoneyDecimals) || p.Coefficient().BitLen() > maxCoefficientBits {
		if p.IsZero() {
			return nil
		}
		return NewValidationError(field, msgMaxDigits)
	}
	if !p.Equal(p.Round(MoneyDecimals)) {
		return NewValidationError(field, msgMaxDecimals)
	}
	limit := decimal.New(1, MoneyDigits-MoneyDecimals)
	if p.Abs().GreaterThanOrEqual(limit) {
		return NewValidationError(field, msgMaxDigits)
	}
	return nil
}

func validateText(v *ValidationError, field, s string, max int) {
	if strings.TrimSpace(s) == "" {
		v.Add(field, msgBlankRejected)
		return
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		v.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
	}
}

func validateRef(v *ValidationError, field string, id int64) {
	if id <= 0 {
		v.Add(field, msgRequired)
	}
}
