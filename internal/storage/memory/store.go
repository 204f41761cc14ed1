// Package memory is an in-process Data Store with the same semantics as the
// MySQL schema: generated ids, newest-first ordering, FK checks and cascading
// deletes from listings to bookings and reviews.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"alx_travel/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	seq      int64
	now      func() time.Time
	listings map[int64]domain.Listing
	bookings map[int64]domain.Booking
	reviews  map[int64]domain.Review
}

func New() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		listings: map[int64]domain.Listing{},
		bookings: map[int64]domain.Booking{},
		reviews:  map[int64]domain.Review{},
	}
}

func (s *Store) Listings() domain.ListingRepository { return listingRepo{s} }
func (s *Store) Bookings() domain.BookingRepository { return bookingRepo{s} }
func (s *Store) Reviews() domain.ReviewRepository   { return reviewRepo{s} }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// newestFirst orders by created_at then id, both descending.
func newestFirst[T any](items []T, key func(T) (time.Time, int64)) {
	sort.Slice(items, func(i, j int) bool {
		ti, ii := key(items[i])
		tj, ij := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ii > ij
	})
}

func missingListing(id int64) error {
	return fmt.Errorf("listing %d: %w", id, domain.ErrNotFound)
}

// ---- listings ----

type listingRepo struct{ s *Store }

func (r listingRepo) List(ctx context.Context, _ domain.Filter) ([]domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Listing, 0, len(r.s.listings))
	for _, l := range r.s.listings {
		out = append(out, l)
	}
	newestFirst(out, func(l domain.Listing) (time.Time, int64) { return l.CreatedAt, l.ID })
	return out, nil
}

func (r listingRepo) Get(ctx context.Context, id int64) (domain.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.listings[id]
	if !ok {
		return domain.Listing{}, missingListing(id)
	}
	return l, nil
}

func (r listingRepo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	l.CreatedAt = r.s.now()
	l.UpdatedAt = l.CreatedAt
	r.s.listings[l.ID] = l
	return l, nil
}

func (r listingRepo) Update(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.listings[l.ID]
	if !ok {
		return domain.Listing{}, missingListing(l.ID)
	}
	l.CreatedAt = old.CreatedAt
	l.UpdatedAt = r.s.now()
	r.s.listings[l.ID] = l
	return l, nil
}

func (r listingRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[id]; !ok {
		return missingListing(id)
	}
	delete(r.s.listings, id)
	for bid, b := range r.s.bookings {
		if b.ListingID == id {
			delete(r.s.bookings, bid)
		}
	}
	for rid, rv := range r.s.reviews {
		if rv.ListingID == id {
			delete(r.s.reviews, rid)
		}
	}
	return nil
}

// ---- bookings ----

type bookingRepo struct{ s *Store }

// withTitle fills the joined listing title; caller holds the lock.
func (r bookingRepo) withTitle(b domain.Booking) domain.Booking {
	b.ListingTitle = r.s.listings[b.ListingID].Title
	return b
}

func (r bookingRepo) List(ctx context.Context, f domain.Filter) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Booking, 0)
	for _, b := range r.s.bookings {
		if f.ListingID != nil && b.ListingID != *f.ListingID {
			continue
		}
		out = append(out, r.withTitle(b))
	}
	newestFirst(out, func(b domain.Booking) (time.Time, int64) { return b.CreatedAt, b.ID })
	return out, nil
}

func (r bookingRepo) Get(ctx context.Context, id int64) (domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return domain.Booking{}, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	return r.withTitle(b), nil
}

func (r bookingRepo) check(b domain.Booking) error {
	if _, ok := r.s.listings[b.ListingID]; !ok {
		return missingListing(b.ListingID)
	}
	// mirrors the end_date_after_start_date CHECK constraint
	return domain.ValidateDateRange(b.StartDate, b.EndDate).OrNil()
}

func (r bookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.check(b); err != nil {
		return domain.Booking{}, err
	}
	if b.Status == "" {
		b.Status = domain.StatusPending
	}
	b.ID = r.s.nextID()
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	b.ListingTitle = ""
	r.s.bookings[b.ID] = b
	return r.withTitle(b), nil
}

func (r bookingRepo) Update(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.bookings[b.ID]
	if !ok {
		return domain.Booking{}, fmt.Errorf("booking %d: %w", b.ID, domain.ErrNotFound)
	}
	if err := r.check(b); err != nil {
		return domain.Booking{}, err
	}
	b.CreatedAt = old.CreatedAt
	b.UpdatedAt = r.s.now()
	b.ListingTitle = ""
	r.s.bookings[b.ID] = b
	return r.withTitle(b), nil
}

func (r bookingRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.bookings, id)
	return nil
}

// ---- reviews ----

type reviewRepo struct{ s *Store }

func (r reviewRepo) List(ctx context.Context, f domain.Filter) ([]domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Review, 0)
	for _, rv := range r.s.reviews {
		if f.ListingID != nil && rv.ListingID != *f.ListingID {
			continue
		}
		out = append(out, rv)
	}
	newestFirst(out, func(rv domain.Review) (time.Time, int64) { return rv.CreatedAt, rv.ID })
	return out, nil
}

func (r reviewRepo) Get(ctx context.Context, id int64) (domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return domain.Review{}, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	return rv, nil
}

func (r reviewRepo) Create(ctx context.Context, rv domain.Review) (domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[rv.ListingID]; !ok {
		return domain.Review{}, missingListing(rv.ListingID)
	}
	rv.ID = r.s.nextID()
	rv.CreatedAt = r.s.now()
	r.s.reviews[rv.ID] = rv
	return rv, nil
}

func (r reviewRepo) Update(ctx context.Context, rv domain.Review) (domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.reviews[rv.ID]
	if !ok {
		return domain.Review{}, fmt.Errorf("review %d: %w", rv.ID, domain.ErrNotFound)
	}
	if _, ok := r.s.listings[rv.ListingID]; !ok {
		return domain.Review{}, missingListing(rv.ListingID)
	}
	rv.CreatedAt = old.CreatedAt
	r.s.reviews[rv.ID] = rv
	return rv, nil
}

func (r reviewRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.reviews, id)
	return nil
}
