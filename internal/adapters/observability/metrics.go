package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	MailSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "mail_sends_total", Help: "Outbound mail attempts."},
		[]string{"backend", "result"}, // result: ok|error
	)
	MailLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking", Name: "mail_send_duration_seconds",
			Help:    "Outbound mail duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
	QueueEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "queue_events_total", Help: "Task queue enqueues/dequeues/errors."},
		[]string{"task", "event"}, // event: enqueue|dequeue|error
	)
	TaskResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "task_results_total", Help: "Finished tasks by outcome."},
		[]string{"task", "outcome"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve exposes reg on a side port. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, MailSends, MailLatency, QueueEvents, TaskResults, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveMail(backend string, err error, dur time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	MailSends.WithLabelValues(backend, result).Inc()
	MailLatency.WithLabelValues(backend).Observe(dur.Seconds())
}

func ObserveQueue(task, event string) { // event: enqueue|dequeue|error
	QueueEvents.WithLabelValues(task, event).Inc()
}

func ObserveTask(task, outcome string) {
	TaskResults.WithLabelValues(task, outcome).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
