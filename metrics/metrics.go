package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "geniustrading",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniustrading",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geniustrading",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	transactionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniustrading",
			Subsystem: "ledger",
			Name:      "transactions_created_total",
			Help:      "Transactions submitted by users.",
		},
		[]string{"type"},
	)

	transactionReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniustrading",
			Subsystem: "ledger",
			Name:      "transaction_reviews_total",
			Help:      "Admin status changes applied to transactions.",
		},
		[]string{"type", "status"},
	)

	balanceMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniustrading",
			Subsystem: "ledger",
			Name:      "balance_movement_cents_total",
			Help:      "Sum of balance credits and debits applied by the ledger, in cents.",
		},
		[]string{"direction"},
	)

	investmentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniustrading",
			Subsystem: "ledger",
			Name:      "investments_created_total",
			Help:      "Investments created per plan.",
		},
		[]string{"plan"},
	)

	kycDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geniustrading",
			Subsystem: "kyc",
			Name:      "decisions_total",
			Help:      "KYC status changes applied by admins.",
		},
		[]string{"status"},
	)

	loginFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geniustrading",
			Subsystem: "auth",
			Name:      "login_failures_total",
			Help:      "Rejected login attempts.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		transactionsCreated,
		transactionReviews,
		balanceMovements,
		investmentsCreated,
		kycDecisions,
		loginFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := CanonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

func RecordTransactionCreated(txType string) {
	transactionsCreated.WithLabelValues(txType).Inc()
}

func RecordTransactionReview(txType, status string) {
	transactionReviews.WithLabelValues(txType, status).Inc()
}

// RecordBalanceMovement tracks ledger-driven balance changes; direction is
// "credit" or "debit".
func RecordBalanceMovement(direction string, cents int64) {
	if cents <= 0 {
		return
	}
	balanceMovements.WithLabelValues(direction).Add(float64(cents))
}

func RecordInvestment(plan string) {
	if plan == "" {
		plan = "unknown"
	}
	investmentsCreated.WithLabelValues(plan).Inc()
}

func RecordKycDecision(status string) {
	kycDecisions.WithLabelValues(status).Inc()
}

func RecordLoginFailure() {
	loginFailures.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// CanonicalPath collapses numeric ids and method names so label cardinality
// stays bounded: /api/admin/users/12/role -> /api/admin/users/:id/role.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	if len(parts) == 3 && parts[0] == "api" && parts[1] == "deposit-addresses" {
		parts[2] = ":method"
	}
	return "/" + strings.Join(parts, "/")
}
