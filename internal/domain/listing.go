package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Listing struct {
	ID            int64
	Title         string
	Description   string
	Location      string
	PricePerNight decimal.Decimal
	MaxGuests     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (l Listing) Validate() error {
	v := &ValidationError{}
	validateText(v, "title", l.Title, MaxShortText)
	validateText(v, "description", l.Description, 0)
	validateText(v, "location", l.Location, MaxShortText)
	v.Merge(validatePricePerNight(l.PricePerNight))
	switch {
	case l.MaxGuests <= 0:
		v.Add("max_guests", "Ensure this value is greater than or equal to 1.")
	case l.MaxGuests > MaxGuestsLimit:
		v.Add("max_guests", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxGuestsLimit))
	}
	return v.OrNil()
}

// ListingPatch holds the writable listing fields; nil means "leave as is".
type ListingPatch struct {
	Title         *string
	Description   *string
	Location      *string
	PricePerNight *decimal.Decimal
	MaxGuests     *int
}

func (p ListingPatch) Apply(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.PricePerNight != nil {
		l.PricePerNight = *p.PricePerNight
	}
	if p.MaxGuests != nil {
		l.MaxGuests = *p.MaxGuests
	}
}
