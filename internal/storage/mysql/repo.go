package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"alx_travel/internal/domain"
)

// MySQL server error numbers we translate into domain errors.
const (
	errOutOfRange      = 1264
	errNoReferencedRow = 1452
	errCheckViolated   = 3819
)

// outOfRangeColumn pulls the column name out of
// "Out of range value for column 'max_guests' at row 1".
var outOfRangeColumn = regexp.MustCompile(`column '([^']+)'`)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Listings() domain.ListingRepository { return listingRepo{r.db} }
func (r *Repo) Bookings() domain.BookingRepository { return bookingRepo{r.db} }
func (r *Repo) Reviews() domain.ReviewRepository   { return reviewRepo{r.db} }

// mapErr turns constraint failures into the errors the service layer expects.
// The CHECK constraint only backs up validation that already ran.
func mapErr(op string, err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errOutOfRange:
			field := "non_field_errors"
			if m := outOfRangeColumn.FindStringSubmatch(me.Message); m != nil {
				field = m[1]
			}
			return domain.NewValidationError(field, "Ensure this value is within the allowed range.")
		case errNoReferencedRow:
			return fmt.Errorf("%s: listing: %w", op, domain.ErrNotFound)
		case errCheckViolated:
			if strings.Contains(me.Message, "end_date_after_start_date") {
				return domain.NewValidationError("end_date", "End date must be after start date.")
			}
			return &domain.ValidationError{Fields: map[string][]string{"non_field_errors": {me.Message}}}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// affectedOrMissing treats a zero-row write as "not found" only when the row
// really is absent; MySQL reports 0 for writes that change nothing.
func affectedOrMissing(ctx context.Context, db *sql.DB, res sql.Result, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s %d: %w", strings.TrimSuffix(table, "s"), id, domain.ErrNotFound)
	}
	return err
}

// ---- listings ----

type listingRepo struct{ db *sql.DB }

type scanner interface{ Scan(dest ...any) error }

func scanListing(s scanner) (domain.Listing, error) {
	var l domain.Listing
	err := s.Scan(&l.ID, &l.Title, &l.Description, &l.Location, &l.PricePerNight, &l.MaxGuests, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r listingRepo) List(ctx context.Context, _ domain.Filter) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, listListingsSQL)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r listingRepo) Get(ctx context.Context, id int64) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, getListingSQL, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Listing{}, fmt.Errorf("listing %d: %w", id, domain.ErrNotFound)
		}
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func (r listingRepo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	res, err := r.db.ExecContext(ctx, insertListingSQL,
		l.Title, l.Description, l.Location, l.PricePerNight, l.MaxGuests)
	if err != nil {
		return domain.Listing{}, mapErr("insert listing", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Listing{}, err
	}
	return r.Get(ctx, id)
}

func (r listingRepo) Update(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	res, err := r.db.ExecContext(ctx, updateListingSQL,
		l.Title, l.Description, l.Location, l.PricePerNight, l.MaxGuests, l.ID)
	if err != nil {
		return domain.Listing{}, mapErr("update listing", err)
	}
	if err := affectedOrMissing(ctx, r.db, res, "listings", l.ID); err != nil {
		return domain.Listing{}, err
	}
	return r.Get(ctx, l.ID)
}

// Delete relies on ON DELETE CASCADE to drop bookings and reviews.
func (r listingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteListingSQL, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return affectedOrMissing(ctx, r.db, res, "listings", id)
}

// ---- bookings ----

type bookingRepo struct{ db *sql.DB }

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	err := s.Scan(&b.ID, &b.ListingID, &b.ListingTitle, &b.GuestName, &b.GuestEmail,
		&b.StartDate, &b.EndDate, &b.TotalPrice, &status, &b.CreatedAt, &b.UpdatedAt)
	b.Status = domain.BookingStatus(status)
	return b, err
}

func (r bookingRepo) List(ctx context.Context, f domain.Filter) ([]domain.Booking, error) {
	q := selectBookingsSQL
	var args []any
	if f.ListingID != nil {
		q += " WHERE b.listing_id = ?"
		args = append(args, *f.ListingID)
	}
	rows, err := r.db.QueryContext(ctx, q+orderBookingsSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r bookingRepo) Get(ctx context.Context, id int64) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, selectBookingsSQL+" WHERE b.id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r bookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if b.Status == "" {
		b.Status = domain.StatusPending
	}
	res, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ListingID, b.GuestName, b.GuestEmail, b.StartDate, b.EndDate, b.TotalPrice, string(b.Status))
	if err != nil {
		return domain.Booking{}, mapErr("insert booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Booking{}, err
	}
	return r.Get(ctx, id)
}

func (r bookingRepo) Update(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	res, err := r.db.ExecContext(ctx, updateBookingSQL,
		b.ListingID, b.GuestName, b.GuestEmail, b.StartDate, b.EndDate, b.TotalPrice, string(b.Status), b.ID)
	if err != nil {
		return domain.Booking{}, mapErr("update booking", err)
	}
	if err := affectedOrMissing(ctx, r.db, res, "bookings", b.ID); err != nil {
		return domain.Booking{}, err
	}
	return r.Get(ctx, b.ID)
}

func (r bookingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteBookingSQL, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return affectedOrMissing(ctx, r.db, res, "bookings", id)
}

// ---- reviews ----

type reviewRepo struct{ db *sql.DB }

func scanReview(s scanner) (domain.Review, error) {
	var rv domain.Review
	err := s.Scan(&rv.ID, &rv.ListingID, &rv.ReviewerName, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	return rv, err
}

func (r reviewRepo) List(ctx context.Context, f domain.Filter) ([]domain.Review, error) {
	q := selectReviewsSQL
	var args []any
	if f.ListingID != nil {
		q += " WHERE listing_id = ?"
		args = append(args, *f.ListingID)
	}
	rows, err := r.db.QueryContext(ctx, q+orderReviewsSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r reviewRepo) Get(ctx context.Context, id int64) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, selectReviewsSQL+" WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Review{}, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
		}
		return domain.Review{}, fmt.Errorf("get review: %w", err)
	}
	return rv, nil
}

func (r reviewRepo) Create(ctx context.Context, rv domain.Review) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL, rv.ListingID, rv.ReviewerName, rv.Rating, rv.Comment)
	if err != nil {
		return domain.Review{}, mapErr("insert review", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, err
	}
	return r.Get(ctx, id)
}

func (r reviewRepo) Update(ctx context.Context, rv domain.Review) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, updateReviewSQL, rv.ListingID, rv.ReviewerName, rv.Rating, rv.Comment, rv.ID)
	if err != nil {
		return domain.Review{}, mapErr("update review", err)
	}
	if err := affectedOrMissing(ctx, r.db, res, "reviews", rv.ID); err != nil {
		return domain.Review{}, err
	}
	return r.Get(ctx, rv.ID)
}

func (r reviewRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return affectedOrMissing(ctx, r.db, res, "reviews", id)
}
