package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"alx_travel/internal/domain"
)

func (s *ListingService) List(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.List(ctx, domain.Filter{})
}

// Get reads through the cache; writes evict the key.
func (s *ListingService) Get(ctx context.Context, id int64) (domain.Listing, error) {
	key := listingKey(id)
	var l domain.Listing
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &l)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("listing cache read failed")
		}
		if ok {
			return l, nil
		}
	}
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	}
	return l, nil
}

// Bookings lists the bookings of one listing, newest first. An unknown
// listing is ErrNotFound, not an empty list.
func (s *ListingService) Bookings(ctx context.Context, listingID int64) ([]domain.Booking, error) {
	if _, err := s.repo.Get(ctx, listingID); err != nil {
		return nil, err
	}
	return s.bookings.List(ctx, domain.Filter{ListingID: &listingID})
}

// List returns every booking, or only those of f.ListingID when set.
func (s *BookingService) List(ctx context.Context, f domain.Filter) ([]domain.Booking, error) {
	return s.repo.List(ctx, f)
}

func (s *BookingService) Get(ctx context.Context, id int64) (domain.Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *ReviewService) List(ctx context.Context) ([]domain.Review, error) {
	return s.repo.List(ctx, domain.Filter{})
}

func (s *ReviewService) Get(ctx context.Context, id int64) (domain.Review, error) {
	return s.repo.Get(ctx, id)
}
