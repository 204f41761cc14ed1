package httpserver

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"alx_travel/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report wire names, not Go names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// request is a writable entity body. decode reads known fields and records
// type errors; unknown and read-only fields are ignored.
type request[P any] interface {
	decode(raw map[string]json.RawMessage, ve *domain.ValidationError)
	patch() P
}

// check runs field validation. Full bodies (POST, PUT) must carry every
// required field; partial bodies (PATCH) are checked only on fields present.
func check(req any, partial bool) *domain.ValidationError {
	var err error
	if partial {
		err = validate.StructExcept(req, nilFields(req)...)
	} else {
		err = validate.Struct(req)
	}
	ve := &domain.ValidationError{}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			ve.Add(fe.Field(), fieldMessage(fe))
		}
	} else if err != nil {
		ve.Add("non_field_errors", err.Error())
	}
	return ve
}

func nilFields(req any) []string {
	rv := reflect.Indirect(reflect.ValueOf(req))
	var out []string
	for i := 0; i < rv.NumField(); i++ {
		if f := rv.Field(i); f.Kind() == reflect.Pointer && f.IsNil() {
			out = append(out, rv.Type().Field(i).Name)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	t := fe.Type()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	isText := t.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	}
	return "Invalid value."
}

// decodeField unmarshals one member of a JSON object into dst. Absent keys
// leave dst nil; explicit nulls are rejected.
func decodeField[T any](raw map[string]json.RawMessage, name string, dst **T, ve *domain.ValidationError, invalid string) {
	b, ok := raw[name]
	if !ok {
		return
	}
	if strings.TrimSpace(string(b)) == "null" {
		ve.Add(name, "This field may not be null.")
		return
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		ve.Add(name, invalid)
		return
	}
	*dst = &v
}

const (
	msgInvalidString  = "Not a valid string."
	msgInvalidInt     = "A valid integer is required."
	msgInvalidNumber  = "A valid number is required."
	msgInvalidDate    = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgInvalidListing = "Incorrect type. Expected pk value."
)

// ---- listings ----

type listingRequest struct {
	Title         *string          `json:"title" validate:"required,max=200"`
	Description   *string          `json:"description" validate:"required"`
	Location      *string          `json:"location" validate:"required,max=200"`
	PricePerNight *decimal.Decimal `json:"price_per_night" validate:"required"`
	MaxGuests     *int             `json:"max_guests" validate:"required,gte=1,lte=2147483647"`
}

func (q *listingRequest) decode(raw map[string]json.RawMessage, ve *domain.ValidationError) {
	decodeField(raw, "title", &q.Title, ve, msgInvalidString)
	decodeField(raw, "description", &q.Description, ve, msgInvalidString)
	decodeField(raw, "location", &q.Location, ve, msgInvalidString)
	decodeField(raw, "price_per_night", &q.PricePerNight, ve, msgInvalidNumber)
	decodeField(raw, "max_guests", &q.MaxGuests, ve, msgInvalidInt)
}

func (q *listingRequest) patch() domain.ListingPatch {
	return domain.ListingPatch{
		Title:         q.Title,
		Description:   q.Description,
		Location:      q.Location,
		PricePerNight: q.PricePerNight,
		MaxGuests:     q.MaxGuests,
	}
}

type listingResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	PricePerNight string    `json:"price_per_night"`
	MaxGuests     int       `json:"max_guests"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func renderListing(l domain.Listing) any {
	return listingResponse{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: l.PricePerNight.StringFixed(domain.MoneyDecimals),
		MaxGuests:     l.MaxGuests,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// ---- bookings ----

type bookingRequest struct {
	Listing    *int64           `json:"listing" validate:"required"`
	GuestName  *string          `json:"guest_name" validate:"required,max=200"`
	GuestEmail *string          `json:"guest_email" validate:"required,email,max=254"`
	StartDate  *domain.Date     `json:"start_date" validate:"required"`
	EndDate    *domain.Date     `json:"end_date" validate:"required"`
	TotalPrice *decimal.Decimal `json:"total_price" validate:"required"`
	Status     *string          `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
}

func (q *bookingRequest) decode(raw map[string]json.RawMessage, ve *domain.ValidationError) {
	decodeField(raw, "listing", &q.Listing, ve, msgInvalidListing)
	decodeField(raw, "guest_name", &q.GuestName, ve, msgInvalidString)
	decodeField(raw, "guest_email", &q.GuestEmail, ve, msgInvalidString)
	decodeField(raw, "start_date", &q.StartDate, ve, msgInvalidDate)
	decodeField(raw, "end_date", &q.EndDate, ve, msgInvalidDate)
	decodeField(raw, "total_price", &q.TotalPrice, ve, msgInvalidNumber)
	decodeField(raw, "status", &q.Status, ve, msgInvalidString)
}

func (q *bookingRequest) patch() domain.BookingPatch {
	p := domain.BookingPatch{
		ListingID:  q.Listing,
		GuestName:  q.GuestName,
		GuestEmail: q.GuestEmail,
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
		TotalPrice: q.TotalPrice,
	}
	if q.Status != nil {
		s := domain.BookingStatus(*q.Status)
		p.Status = &s
	}
	return p
}

type bookingResponse struct {
	ID           int64       `json:"id"`
	ListingTitle string      `json:"listing_title"`
	Listing      int64       `json:"listing"`
	GuestName    string      `json:"guest_name"`
	GuestEmail   string      `json:"guest_email"`
	StartDate    domain.Date `json:"start_date"`
	EndDate      domain.Date `json:"end_date"`
	TotalPrice   string      `json:"total_price"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func renderBooking(b domain.Booking) any {
	return bookingResponse{
		ID:           b.ID,
		ListingTitle: b.ListingTitle,
		Listing:      b.ListingID,
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		TotalPrice:   b.TotalPrice.StringFixed(domain.MoneyDecimals),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// ---- reviews ----

type reviewRequest struct {
	Listing      *int64  `json:"listing" validate:"required"`
	ReviewerName *string `json:"reviewer_name" validate:"required,max=200"`
	Rating       *int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      *string `json:"comment" validate:"required"`
}

func (q *reviewRequest) decode(raw map[string]json.RawMessage, ve *domain.ValidationError) {
	decodeField(raw, "listing", &q.Listing, ve, msgInvalidListing)
	decodeField(raw, "reviewer_name", &q.ReviewerName, ve, msgInvalidString)
	decodeField(raw, "rating", &q.Rating, ve, msgInvalidInt)
	decodeField(raw, "comment", &q.Comment, ve, msgInvalidString)
}

func (q *reviewRequest) patch() domain.ReviewPatch {
	return domain.ReviewPatch{
		ListingID:    q.Listing,
		ReviewerName: q.ReviewerName,
		Rating:       q.Rating,
		Comment:      q.Comment,
	}
}

type reviewResponse struct {
	ID           int64     `json:"id"`
	Listing      int64     `json:"listing"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

func renderReview(r domain.Review) any {
	return reviewResponse{
		ID:           r.ID,
		Listing:      r.ListingID,
		ReviewerName: r.ReviewerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
	}
}
