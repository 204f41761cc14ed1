package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"alx_travel/internal/domain"
)

// ---- listings ----

func (s *ListingService) Create(ctx context.Context, p domain.ListingPatch) (domain.Listing, error) {
	var l domain.Listing
	p.Apply(&l)
	if err := l.Validate(); err != nil {
		return domain.Listing{}, err
	}
	return s.repo.Create(ctx, l)
}

// Update applies p over the stored listing. PUT and PATCH both land here;
// the transport decides which fields p must carry.
func (s *ListingService) Update(ctx context.Context, id int64, p domain.ListingPatch) (domain.Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	p.Apply(&l)
	if err := l.Validate(); err != nil {
		return domain.Listing{}, err
	}
	out, err := s.repo.Update(ctx, l)
	if err != nil {
		return domain.Listing{}, err
	}
	s.invalidate(ctx, id)
	return out, nil
}

// Delete removes the listing together with its bookings and reviews.
func (s *ListingService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ListingService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, listingKey(id)); err != nil {
		log.Warn().Err(err).Int64("listing_id", id).Msg("listing cache eviction failed")
	}
}

// ---- bookings ----

// Create validates and stores a booking, then hands a confirmation job to the
// queue. The job is not awaited and a failed enqueue does not fail the call.
func (s *BookingService) Create(ctx context.Context, p domain.BookingPatch) (domain.Booking, error) {
	b := domain.Booking{Status: domain.StatusPending}
	p.Apply(&b)
	if err := validateWithRef(ctx, s.listings, b.Validate(), b.ListingID); err != nil {
		return domain.Booking{}, err
	}
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return domain.Booking{}, refErr(err, b.ListingID)
	}
	s.dispatchConfirmation(ctx, created.ID)
	return created, nil
}

func (s *BookingService) dispatchConfirmation(ctx context.Context, bookingID int64) {
	if s.queue == nil {
		return
	}
	// the row is committed; a client hanging up must not drop the job
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.enqueueTimeout)
	defer cancel()
	job := domain.Job{Task: domain.TaskSendBookingConfirmation, BookingID: bookingID}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Int64("booking_id", bookingID).Msg("confirmation email not enqueued")
		return
	}
	log.Debug().Int64("booking_id", bookingID).Msg("confirmation email enqueued")
}

// Update allows any status to replace any other.
func (s *BookingService) Update(ctx context.Context, id int64, p domain.BookingPatch) (domain.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	p.Apply(&b)
	if err := validateWithRef(ctx, s.listings, b.Validate(), b.ListingID); err != nil {
		return domain.Booking{}, err
	}
	return s.repo.Update(ctx, b)
}

func (s *BookingService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ---- reviews ----

func (s *ReviewService) Create(ctx context.Context, p domain.ReviewPatch) (domain.Review, error) {
	var r domain.Review
	p.Apply(&r)
	if err := validateWithRef(ctx, s.listings, r.Validate(), r.ListingID); err != nil {
		return domain.Review{}, err
	}
	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return domain.Review{}, refErr(err, r.ListingID)
	}
	return created, nil
}

func (s *ReviewService) Update(ctx context.Context, id int64, p domain.ReviewPatch) (domain.Review, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	p.Apply(&r)
	if err := validateWithRef(ctx, s.listings, r.Validate(), r.ListingID); err != nil {
		return domain.Review{}, err
	}
	return s.repo.Update(ctx, r)
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func listingKey(id int64) string { return fmt.Sprintf("listing:%d", id) }
