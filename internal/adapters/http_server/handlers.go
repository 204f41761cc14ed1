// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"alx_travel/internal/app"
	"alx_travel/internal/domain"
)

type Handlers struct {
	Listings *app.ListingService
	Bookings *app.BookingService
	Reviews  *app.ReviewService
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	listings := &resource[domain.Listing, domain.ListingPatch]{
		name:       "listing",
		newRequest: func() request[domain.ListingPatch] { return &listingRequest{} },
		render:     renderListing,
		list:       func(r *http.Request) ([]domain.Listing, error) { return h.Listings.List(r.Context()) },
		get:        h.Listings.Get,
		create:     h.Listings.Create,
		update:     h.Listings.Update,
		remove:     h.Listings.Delete,
	}
	bookings := &resource[domain.Booking, domain.BookingPatch]{
		name:       "booking",
		newRequest: func() request[domain.BookingPatch] { return &bookingRequest{} },
		render:     renderBooking,
		list:       h.listBookings,
		get:        h.Bookings.Get,
		create:     h.Bookings.Create,
		update:     h.Bookings.Update,
		remove:     h.Bookings.Delete,
	}
	reviews := &resource[domain.Review, domain.ReviewPatch]{
		name:       "review",
		newRequest: func() request[domain.ReviewPatch] { return &reviewRequest{} },
		render:     renderReview,
		list:       func(r *http.Request) ([]domain.Review, error) { return h.Reviews.List(r.Context()) },
		get:        h.Reviews.Get,
		create:     h.Reviews.Create,
		update:     h.Reviews.Update,
		remove:     h.Reviews.Delete,
	}

	s.mux.Route("/listings", func(r chi.Router) {
		listings.routes(r)
		r.Get("/{id}/bookings", h.listingBookings)
	})
	s.mux.Route("/bookings", bookings.routes)
	s.mux.Route("/reviews", reviews.routes)
}

// listBookings honours ?listing_id=N; without it every booking is returned.
func (h *Handlers) listBookings(r *http.Request) ([]domain.Booking, error) {
	var f domain.Filter
	if v := r.URL.Query().Get("listing_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("listing_id", "Enter a whole number.")
		}
		f.ListingID = &id
	}
	return h.Bookings.List(r.Context(), f)
}

func (h *Handlers) listingBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bs, err := h.Listings.Bookings(r.Context(), id)
	if err != nil {
		writeErr(w, r, "listing", err)
		return
	}
	writeJSON(w, http.StatusOK, renderAll(bs, renderBooking))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeValidation(w http.ResponseWriter, ve *domain.ValidationError) {
	writeProblemBody(w, problem{
		Type:   "about:blank",
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Errors: ve.Fields,
	})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}
