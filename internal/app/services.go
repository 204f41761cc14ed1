package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alx_travel/internal/domain"
)

type ListingService struct {
	repo     domain.ListingRepository
	bookings domain.BookingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewListingService(r domain.ListingRepository, b domain.BookingRepository, c domain.Cache, ttl time.Duration) *ListingService {
	return &ListingService{repo: r, bookings: b, cache: c, cacheTTL: ttl}
}

type BookingService struct {
	repo     domain.BookingRepository
	listings domain.ListingRepository
	queue    domain.TaskQueue
	// upper bound for handing a job to the broker
	enqueueTimeout time.Duration
}

func NewBookingService(r domain.BookingRepository, l domain.ListingRepository, q domain.TaskQueue) *BookingService {
	return &BookingService{repo: r, listings: l, queue: q, enqueueTimeout: 2 * time.Second}
}

type ReviewService struct {
	repo     domain.ReviewRepository
	listings domain.ListingRepository
}

func NewReviewService(r domain.ReviewRepository, l domain.ListingRepository) *ReviewService {
	return &ReviewService{repo: r, listings: l}
}

// checkListingRef reports a dangling listing reference as a field error on
// "listing", the way the API exposes foreign keys.
func checkListingRef(ctx context.Context, listings domain.ListingRepository, id int64) (*domain.ValidationError, error) {
	if id <= 0 {
		return nil, nil
	}
	if _, err := listings.Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return danglingListing(id), nil
		}
		return nil, err
	}
	return nil, nil
}

func danglingListing(id int64) *domain.ValidationError {
	return domain.NewValidationError("listing", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
}

// validateWithRef runs entity validation and the listing reference check and
// reports both in one error.
func validateWithRef(ctx context.Context, listings domain.ListingRepository, entityErr error, listingID int64) error {
	ve := &domain.ValidationError{}
	if entityErr != nil {
		var e *domain.ValidationError
		if !errors.As(entityErr, &e) {
			return entityErr
		}
		ve.Merge(e)
	}
	ref, err := checkListingRef(ctx, listings, listingID)
	if err != nil {
		return err
	}
	ve.Merge(ref)
	return ve.OrNil()
}

// refErr maps a store-level FK miss (listing deleted between check and write)
// back to the same field error.
func refErr(err error, listingID int64) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return danglingListing(listingID)
	}
	return err
}
