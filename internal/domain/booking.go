package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Label is the human readable form used in guest-facing messages.
func (s BookingStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID           int64
	ListingID    int64
	ListingTitle string // read-only, joined from the listing
	GuestName    string
	GuestEmail   string
	StartDate    Date
	EndDate      Date
	TotalPrice   decimal.Decimal
	Status       BookingStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks every booking invariant. Status transitions are not
// restricted; any known status may follow any other.
func (b Booking) Validate() error {
	v := &ValidationError{}
	validateRef(v, "listing", b.ListingID)
	validateText(v, "guest_name", b.GuestName, MaxShortText)
	validateText(v, "guest_email", b.GuestEmail, MaxEmailLength)
	if b.StartDate.IsZero() {
		v.Add("start_date", msgRequired)
	}
	if b.EndDate.IsZero() {
		v.Add("end_date", msgRequired)
	}
	if !b.StartDate.IsZero() && !b.EndDate.IsZero() {
		v.Merge(ValidateDateRange(b.StartDate, b.EndDate))
	}
	v.Merge(ValidateTotalPrice(b.TotalPrice))
	if !b.Status.Valid() {
		v.Add("status", `"`+string(b.Status)+`" is not a valid choice.`)
	}
	return v.OrNil()
}

type BookingPatch struct {
	ListingID  *int64
	GuestName  *string
	GuestEmail *string
	StartDate  *Date
	EndDate    *Date
	TotalPrice *decimal.Decimal
	Status     *BookingStatus
}

func (p BookingPatch) Apply(b *Booking) {
	if p.ListingID != nil {
		b.ListingID = *p.ListingID
	}
	if p.GuestName != nil {
		b.GuestName = *p.GuestName
	}
	if p.GuestEmail != nil {
		b.GuestEmail = *p.GuestEmail
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
}
