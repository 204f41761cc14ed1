package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alx_travel/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors are exported
	observability.ObserveHTTP("/bookings", "POST", 201, 12*time.Millisecond)
	observability.ObserveQueue("send_booking_confirmation_email", "enqueue")
	observability.ObserveTask("send_booking_confirmation_email", "sent")
	observability.ObserveMail("smtp", errors.New("boom"), time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"booking_http_requests_total",
		"booking_queue_events_total",
		"booking_task_results_total",
		`booking_mail_sends_total{backend="smtp",result="error"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}
