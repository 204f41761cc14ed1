package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	httpserver "alx_travel/internal/adapters/http_server"
	"alx_travel/internal/app"
	"alx_travel/internal/domain"
	"alx_travel/internal/storage/memory"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []domain.Job
}

func (q *fakeQueue) Enqueue(ctx context.Context, job domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

type testAPI struct {
	ts    *httptest.Server
	queue *fakeQueue
}

func newAPI(t *testing.T) *testAPI {
	t.Helper()
	s := memory.New()
	q := &fakeQueue{}
	srv := httpserver.New(httpserver.Options{CORSOrigins: []string{"*"}})
	srv.MountHandlers(&httpserver.Handlers{
		Listings: app.NewListingService(s.Listings(), s.Bookings(), nil, time.Minute),
		Bookings: app.NewBookingService(s.Bookings(), s.Listings(), q),
		Reviews:  app.NewReviewService(s.Reviews(), s.Listings()),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return &testAPI{ts: ts, queue: q}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.ts.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return res, out
}

func (a *testAPI) list(t *testing.T, path string) []map[string]any {
	t.Helper()
	res, err := http.Get(a.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, res.StatusCode)
	}
	var out []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return out
}

func expectStatus(t *testing.T, res *http.Response, body map[string]any, want int) {
	t.Helper()
	if res.StatusCode != want {
		t.Fatalf("status %d, want %d; body %v", res.StatusCode, want, body)
	}
}

func fieldErrors(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("no field errors in %v", body)
	}
	return errs
}

func listingBody() map[string]any {
	return map[string]any{
		"title":           "Test Apartment",
		"description":     "A cozy apartment",
		"location":        "New York, NY",
		"price_per_night": "100.00",
		"max_guests":      4,
	}
}

func day(offset int) string {
	return domain.DateOf(time.Now()).AddDays(offset).String()
}

func bookingBody(listingID any, start, end int) map[string]any {
	return map[string]any{
		"listing":     listingID,
		"guest_name":  "John Doe",
		"guest_email": "john@example.com",
		"start_date":  day(start),
		"end_date":    day(end),
		"total_price": "300.00",
	}
}

func (a *testAPI) createListing(t *testing.T) int64 {
	t.Helper()
	res, body := a.do(t, http.MethodPost, "/listings", listingBody())
	expectStatus(t, res, body, http.StatusCreated)
	return int64(body["id"].(float64))
}

// ---- tests ----

func TestBookingFlow_EndToEnd(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)

	res, body := a.do(t, http.MethodPost, "/bookings", bookingBody(lid, 7, 10))
	expectStatus(t, res, body, http.StatusCreated)

	if body["status"] != "PENDING" {
		t.Fatalf("status default: %v", body["status"])
	}
	if body["listing_title"] != "Test Apartment" {
		t.Fatalf("listing_title: %v", body["listing_title"])
	}
	if body["total_price"] != "300.00" {
		t.Fatalf("total_price: %v", body["total_price"])
	}
	if body["start_date"] != day(7) || body["end_date"] != day(10) {
		t.Fatalf("dates: %v %v", body["start_date"], body["end_date"])
	}
	if a.queue.Len() != 1 {
		t.Fatalf("expected one confirmation job, got %d", a.queue.Len())
	}

	id := int64(body["id"].(float64))
	res, got := a.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", id), nil)
	expectStatus(t, res, got, http.StatusOK)
	if got["guest_email"] != "john@example.com" {
		t.Fatalf("unexpected booking %v", got)
	}
}

func TestBookingCreate_EndBeforeStart(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)

	res, body := a.do(t, http.MethodPost, "/bookings", bookingBody(lid, 10, 7))
	expectStatus(t, res, body, http.StatusBadRequest)
	if _, ok := fieldErrors(t, body)["end_date"]; !ok {
		t.Fatalf("expected end_date error, got %v", body)
	}
	if n := len(a.list(t, "/bookings")); n != 0 {
		t.Fatalf("rejected booking was stored: %d rows", n)
	}
	if a.queue.Len() != 0 {
		t.Fatalf("rejected booking was enqueued")
	}
}

func TestBookingCreate_SameDayAllowed(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)
	res, body := a.do(t, http.MethodPost, "/bookings", bookingBody(lid, 3, 3))
	expectStatus(t, res, body, http.StatusCreated)
}

func TestBookingCreate_FieldErrors(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)

	cases := []struct {
		name  string
		body  any
		field string
	}{
		{"missing fields", map[string]any{"listing": lid}, "guest_name"},
		{"bad email", func() map[string]any { b := bookingBody(lid, 1, 2); b["guest_email"] = "nope"; return b }(), "guest_email"},
		{"negative price", func() map[string]any { b := bookingBody(lid, 1, 2); b["total_price"] = "-1.00"; return b }(), "total_price"},
		{"bad date", func() map[string]any { b := bookingBody(lid, 1, 2); b["start_date"] = "07/01/2030"; return b }(), "start_date"},
		{"bad status", func() map[string]any { b := bookingBody(lid, 1, 2); b["status"] = "ARCHIVED"; return b }(), "status"},
		{"unknown listing", bookingBody(9999, 1, 2), "listing"},
		{"listing wrong type", bookingBody("abc", 1, 2), "listing"},
		{"null name", func() map[string]any { b := bookingBody(lid, 1, 2); b["guest_name"] = nil; return b }(), "guest_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, body := a.do(t, http.MethodPost, "/bookings", tc.body)
			expectStatus(t, res, body, http.StatusBadRequest)
			if _, ok := fieldErrors(t, body)[tc.field]; !ok {
				t.Fatalf("expected %s error, got %v", tc.field, body)
			}
		})
	}
	if a.queue.Len() != 0 {
		t.Fatalf("invalid bookings must not be enqueued")
	}
}

func TestMalformedJSON(t *testing.T) {
	a := newAPI(t)
	res, body := a.do(t, http.MethodPost, "/listings", "{not json")
	expectStatus(t, res, body, http.StatusBadRequest)

	res, body = a.do(t, http.MethodPost, "/listings", "[1,2]")
	expectStatus(t, res, body, http.StatusBadRequest)

	res, body = a.do(t, http.MethodPost, "/listings", `{"title":"x"} trailing`)
	expectStatus(t, res, body, http.StatusBadRequest)
	if _, ok := body["errors"]; ok {
		t.Fatalf("trailing data should be a decode error, got %v", body)
	}
	if n := len(a.list(t, "/listings")); n != 0 {
		t.Fatalf("expected no listings, got %d", n)
	}
}

func TestNotFoundAndBadID(t *testing.T) {
	a := newAPI(t)
	for _, p := range []string{"/listings/42", "/bookings/42", "/reviews/42", "/listings/42/bookings"} {
		res, body := a.do(t, http.MethodGet, p, nil)
		expectStatus(t, res, body, http.StatusNotFound)
	}
	res, body := a.do(t, http.MethodDelete, "/bookings/42", nil)
	expectStatus(t, res, body, http.StatusNotFound)

	res, body = a.do(t, http.MethodGet, "/listings/abc", nil)
	expectStatus(t, res, body, http.StatusBadRequest)
}

func TestBookingUpdate_PatchAndPut(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)
	_, created := a.do(t, http.MethodPost, "/bookings", bookingBody(lid, 1, 3))
	path := fmt.Sprintf("/bookings/%d", int64(created["id"].(float64)))

	res, body := a.do(t, http.MethodPatch, path, map[string]any{"status": "CONFIRMED"})
	expectStatus(t, res, body, http.StatusOK)
	if body["status"] != "CONFIRMED" || body["guest_name"] != "John Doe" {
		t.Fatalf("patch result %v", body)
	}

	// any status may follow any other
	res, body = a.do(t, http.MethodPatch, path, map[string]any{"status": "PENDING"})
	expectStatus(t, res, body, http.StatusOK)

	// PATCH still validates the merged record
	res, body = a.do(t, http.MethodPatch, path, map[string]any{"end_date": day(0)})
	expectStatus(t, res, body, http.StatusBadRequest)

	// PUT requires the full writable set
	res, body = a.do(t, http.MethodPut, path, map[string]any{"status": "CANCELLED"})
	expectStatus(t, res, body, http.StatusBadRequest)
	if _, ok := fieldErrors(t, body)["guest_email"]; !ok {
		t.Fatalf("expected required errors, got %v", body)
	}

	full := bookingBody(lid, 2, 5)
	full["guest_name"] = "Jane Roe"
	res, body = a.do(t, http.MethodPut, path, full)
	expectStatus(t, res, body, http.StatusOK)
	if body["guest_name"] != "Jane Roe" || body["status"] != "PENDING" {
		t.Fatalf("put result %v", body)
	}
	if a.queue.Len() != 1 {
		t.Fatalf("updates must not enqueue confirmations")
	}
}

func TestBookingList_FilterByListing(t *testing.T) {
	a := newAPI(t)
	l1 := a.createListing(t)
	l2 := a.createListing(t)
	for _, lid := range []int64{l1, l2, l1} {
		res, body := a.do(t, http.MethodPost, "/bookings", bookingBody(lid, 1, 2))
		expectStatus(t, res, body, http.StatusCreated)
	}

	all := a.list(t, "/bookings")
	if len(all) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(all))
	}
	got := a.list(t, fmt.Sprintf("/bookings?listing_id=%d", l1))
	if len(got) != 2 {
		t.Fatalf("expected 2 bookings for listing %d, got %d", l1, len(got))
	}
	for _, b := range got {
		if int64(b["listing"].(float64)) != l1 {
			t.Fatalf("filter leaked %v", b)
		}
	}
	if got[0]["id"].(float64) < got[1]["id"].(float64) {
		t.Fatalf("expected newest first: %v", got)
	}
	nested := a.list(t, fmt.Sprintf("/listings/%d/bookings", l1))
	if len(nested) != 2 {
		t.Fatalf("nested read: expected 2, got %d", len(nested))
	}

	res, body := a.do(t, http.MethodGet, "/bookings?listing_id=x", nil)
	expectStatus(t, res, body, http.StatusBadRequest)
}

func TestListingDelete_Cascades(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)
	_, b := a.do(t, http.MethodPost, "/bookings", bookingBody(lid, 1, 2))
	res, body := a.do(t, http.MethodPost, "/reviews", map[string]any{
		"listing": lid, "reviewer_name": "Ann", "rating": 5, "comment": "Great",
	})
	expectStatus(t, res, body, http.StatusCreated)

	res, body = a.do(t, http.MethodDelete, fmt.Sprintf("/listings/%d", lid), nil)
	expectStatus(t, res, body, http.StatusNoContent)

	res, body = a.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", int64(b["id"].(float64))), nil)
	expectStatus(t, res, body, http.StatusNotFound)
	if n := len(a.list(t, "/reviews")); n != 0 {
		t.Fatalf("reviews survived cascade: %d", n)
	}
	res, body = a.do(t, http.MethodGet, fmt.Sprintf("/listings/%d/bookings", lid), nil)
	expectStatus(t, res, body, http.StatusNotFound)
}

func TestReviewCreate_RatingBounds(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)
	for _, rating := range []int{0, 6} {
		res, body := a.do(t, http.MethodPost, "/reviews", map[string]any{
			"listing": lid, "reviewer_name": "Ann", "rating": rating, "comment": "ok",
		})
		expectStatus(t, res, body, http.StatusBadRequest)
		if _, ok := fieldErrors(t, body)["rating"]; !ok {
			t.Fatalf("expected rating error, got %v", body)
		}
	}
}

func TestListingGet_ETag(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)
	url := fmt.Sprintf("%s/listings/%d", a.ts.URL, lid)

	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("If-None-Match", etag)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res.StatusCode)
	}
}

func TestListingCreate_Validation(t *testing.T) {
	a := newAPI(t)
	cases := []struct {
		field string
		value any
	}{
		{"max_guests", 0},
		{"max_guests", 5000000000},
		{"price_per_night", "12.345"},
		{"title", "   "},
	}
	for _, tc := range cases {
		b := listingBody()
		b[tc.field] = tc.value
		res, body := a.do(t, http.MethodPost, "/listings", b)
		expectStatus(t, res, body, http.StatusBadRequest)
		if _, ok := fieldErrors(t, body)[tc.field]; !ok {
			t.Fatalf("%s=%v: expected %s error, got %v", tc.field, tc.value, tc.field, body)
		}
	}
}

func TestMoney_HugeExponentRejectedQuickly(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)
	cases := []struct {
		path, body, field string
	}{
		{"/listings", `{"title":"Loft","description":"d","location":"x","price_per_night":1e1000000000,"max_guests":2}`, "price_per_night"},
		{"/listings", `{"title":"Loft","description":"d","location":"x","price_per_night":"1e-1000000000","max_guests":2}`, "price_per_night"},
		{"/bookings", fmt.Sprintf(`{"listing":%d,"guest_name":"A","guest_email":"a@example.com","start_date":%q,"end_date":%q,"total_price":1e-1000000000}`,
			lid, day(1), day(2)), "total_price"},
	}
	for _, tc := range cases {
		start := time.Now()
		res, body := a.do(t, http.MethodPost, tc.path, tc.body)
		if d := time.Since(start); d > 2*time.Second {
			t.Fatalf("%s took %s", tc.path, d)
		}
		expectStatus(t, res, body, http.StatusBadRequest)
		if _, ok := fieldErrors(t, body)[tc.field]; !ok {
			t.Fatalf("expected %s error, got %v", tc.field, body)
		}
	}
}

func TestReviewUpdate_AndDelete(t *testing.T) {
	a := newAPI(t)
	lid := a.createListing(t)
	res, rv := a.do(t, http.MethodPost, "/reviews", map[string]any{
		"listing": lid, "reviewer_name": "Ann", "rating": 5, "comment": "Lovely",
	})
	expectStatus(t, res, rv, http.StatusCreated)
	path := fmt.Sprintf("/reviews/%v", rv["id"])

	res, body := a.do(t, http.MethodPatch, path, map[string]any{"rating": 0})
	expectStatus(t, res, body, http.StatusBadRequest)
	if _, ok := fieldErrors(t, body)["rating"]; !ok {
		t.Fatalf("expected rating error, got %v", body)
	}

	res, body = a.do(t, http.MethodPatch, path, map[string]any{"rating": 4})
	expectStatus(t, res, body, http.StatusOK)
	if body["rating"] != float64(4) || body["comment"] != "Lovely" {
		t.Fatalf("unexpected review after patch: %v", body)
	}

	res, body = a.do(t, http.MethodPut, path, map[string]any{"rating": 3})
	expectStatus(t, res, body, http.StatusBadRequest)
	errs := fieldErrors(t, body)
	if _, ok := errs["reviewer_name"]; !ok {
		t.Fatalf("expected reviewer_name error on full update, got %v", body)
	}

	res, _ = a.do(t, http.MethodDelete, path, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", res.StatusCode)
	}
	res, body = a.do(t, http.MethodGet, path, nil)
	expectStatus(t, res, body, http.StatusNotFound)
}
