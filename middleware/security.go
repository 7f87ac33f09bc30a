package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"geniustrading/metrics"
	"geniustrading/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SecurityOptions struct {
	Env  string
	HSTS bool
	CSP  string
}

// SecurityHeaders sets the static security headers. CORS is handled by the
// router.
func SecurityHeaders(opts SecurityOptions) func(http.Handler) http.Handler {
	env := strings.ToLower(opts.Env)
	csp := opts.CSP
	if csp == "" {
		csp = "default-src 'none'; frame-ancestors 'none'; base-uri 'self';"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "no-referrer")
			if env != "development" {
				w.Header().Set("Content-Security-Policy", csp)
			}
			if opts.HSTS {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLog logs one line per request after it completes.
func RequestLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			ev := log.Info()
			if rec.status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Str("request_id", utils.GetRequestID(r)).
				Msg("request")
		})
	}
}

// RequestID injects a request id into the context and response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		ctx := context.WithValue(r.Context(), utils.RequestIDKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Timeout cancels the request context after d.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = 10 * time.Second
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recovery turns panics into a generic 500 carrying the request id.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					rid := utils.GetRequestID(r)
					log.Error().
						Str("request_id", rid).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")
					utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
						Success: false,
						Message: "Internal server error",
						Data:    map[string]string{"request_id": rid},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ActivityTracker counts slow responses per client IP and throttles clients
// that accumulate too many of them.
type ActivityTracker struct {
	slow      time.Duration
	threshold int
	trusted   []string

	mu     sync.Mutex
	counts map[string]int
}

func NewActivityTracker(slow time.Duration, threshold int, trustedProxies []string) *ActivityTracker {
	if slow <= 0 {
		slow = 800 * time.Millisecond
	}
	if threshold <= 0 {
		threshold = 10
	}
	return &ActivityTracker{slow: slow, threshold: threshold, trusted: trustedProxies, counts: make(map[string]int)}
}

// Metrics records Prometheus request metrics and flags slow responses.
func (t *ActivityTracker) Metrics(next http.Handler) http.Handler {
	instrumented := metrics.InstrumentHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		instrumented.ServeHTTP(w, r)
		if time.Since(start) > t.slow {
			ip := clientIPGeneric(r, t.trusted)
			t.mu.Lock()
			t.counts[ip]++
			t.mu.Unlock()
		}
	})
}

// Guard rejects clients that crossed the slow-response threshold.
func (t *ActivityTracker) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, t.trusted)
		t.mu.Lock()
		count := t.counts[ip]
		t.mu.Unlock()
		if count >= t.threshold {
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Reset forgets all recorded activity.
func (t *ActivityTracker) Reset() {
	t.mu.Lock()
	t.counts = make(map[string]int)
	t.mu.Unlock()
}
