package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"alx_travel/internal/domain"
	"alx_travel/internal/storage/memory"
)

func seedListing(t *testing.T, s *memory.Store, title string) domain.Listing {
	t.Helper()
	l, err := s.Listings().Create(context.Background(), domain.Listing{
		Title:         title,
		Description:   "A cozy apartment",
		Location:      "New York, NY",
		PricePerNight: decimal.RequireFromString("100.00"),
		MaxGuests:     4,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func seedBooking(t *testing.T, s *memory.Store, listingID int64, guest string) domain.Booking {
	t.Helper()
	start := domain.DateOf(time.Now()).AddDays(7)
	b, err := s.Bookings().Create(context.Background(), domain.Booking{
		ListingID:  listingID,
		GuestName:  guest,
		GuestEmail: "guest@example.com",
		StartDate:  start,
		EndDate:    start.AddDays(3),
		TotalPrice: decimal.RequireFromString("300.00"),
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestBookings_DefaultStatusAndTitle(t *testing.T) {
	s := memory.New()
	l := seedListing(t, s, "Test Apartment")
	b := seedBooking(t, s, l.ID, "John Doe")
	if b.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", b.Status)
	}
	if b.ListingTitle != "Test Apartment" {
		t.Fatalf("expected joined title, got %q", b.ListingTitle)
	}
}

func TestBookings_CheckConstraintBackstop(t *testing.T) {
	s := memory.New()
	l := seedListing(t, s, "A")
	start := domain.NewDate(2030, time.May, 10)
	_, err := s.Bookings().Create(context.Background(), domain.Booking{
		ListingID: l.ID, GuestName: "x", GuestEmail: "x@example.com",
		StartDate: start, EndDate: start.AddDays(-1),
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got, _ := s.Bookings().List(context.Background(), domain.Filter{}); len(got) != 0 {
		t.Fatalf("row written despite failed check: %+v", got)
	}
}

func TestBookings_UnknownListing(t *testing.T) {
	s := memory.New()
	_, err := s.Bookings().Create(context.Background(), domain.Booking{ListingID: 99})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookings_FilterNewestFirst(t *testing.T) {
	s := memory.New()
	a := seedListing(t, s, "A")
	b := seedListing(t, s, "B")
	a1 := seedBooking(t, s, a.ID, "a1")
	seedBooking(t, s, b.ID, "b1")
	a2 := seedBooking(t, s, a.ID, "a2")

	got, err := s.Bookings().List(context.Background(), domain.Filter{ListingID: &a.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != a2.ID || got[1].ID != a1.ID {
		t.Fatalf("unexpected filtered bookings: %+v", got)
	}
	all, _ := s.Bookings().List(context.Background(), domain.Filter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(all))
	}
}

func TestListings_DeleteCascades(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	l := seedListing(t, s, "A")
	other := seedListing(t, s, "B")
	b := seedBooking(t, s, l.ID, "gone")
	kept := seedBooking(t, s, other.ID, "kept")
	rv, err := s.Reviews().Create(ctx, domain.Review{ListingID: l.ID, ReviewerName: "Ana", Rating: 5, Comment: "ok"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	if err := s.Listings().Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Bookings().Get(ctx, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("booking survived cascade: %v", err)
	}
	if _, err := s.Reviews().Get(ctx, rv.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("review survived cascade: %v", err)
	}
	if _, err := s.Bookings().Get(ctx, kept.ID); err != nil {
		t.Fatalf("unrelated booking removed: %v", err)
	}
	if err := s.Listings().Delete(ctx, l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
