package middleware

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"geniustrading/utils"
)

// In-memory sliding-window limiters. State is per process; a multi-instance
// deployment relies on the load balancer's stickiness or its own limits.

type timestamps []int64 // unix nanos

func nowUnix() int64 { return time.Now().UnixNano() }

func getEnvInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

// prune drops entries older than cutoff, reusing the backing array.
func prune(arr timestamps, cutoff int64) timestamps {
	out := arr[:0]
	for _, ts := range arr {
		if ts >= cutoff {
			out = append(out, ts)
		}
	}
	return out
}

func tooMany(w http.ResponseWriter, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
		Success: false,
		Message: "Too many requests, please try again later",
		Data:    map[string]interface{}{"retry_after_seconds": retryAfter},
	})
}

// IPRateLimiter limits requests per client IP within a sliding window.
type IPRateLimiter struct {
	max         int
	window      time.Duration
	trustedCIDR []string

	mu    sync.Mutex
	state map[string]timestamps
	stop  chan struct{}
	once  sync.Once
}

func NewIPRateLimiter(maxReq int, window time.Duration, trustedProxies []string) *IPRateLimiter {
	l := &IPRateLimiter{
		max:         maxReq,
		window:      window,
		trustedCIDR: trustedProxies,
		state:       make(map[string]timestamps),
		stop:        make(chan struct{}),
	}
	go l.cleanupLoop(time.Minute)
	return l
}

// clientIPGeneric returns the client IP. X-Forwarded-For and X-Real-IP are
// honoured only when the remote address is one of the trusted proxies.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteHost = r.RemoteAddr
	}
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" || remoteIP == nil {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil && ipnet.Contains(remoteIP) {
				trusted = true
				break
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	return remoteHost
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		now := nowUnix()
		windowNs := int64(l.window)

		l.mu.Lock()
		arr := append(prune(l.state[ip], now-windowNs), now)
		l.state[ip] = arr
		count := len(arr)
		oldest := arr[0]
		l.mu.Unlock()

		remaining := l.max - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > l.max {
			// the oldest request leaves the window first
			tooMany(w, int((oldest+windowNs-now)/int64(time.Second)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) cleanupLoop(every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-tick.C:
			l.mu.Lock()
			cutoff := nowUnix() - int64(l.window)
			for k, arr := range l.state {
				if arr = prune(arr, cutoff); len(arr) == 0 {
					delete(l.state, k)
				} else {
					l.state[k] = arr
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (l *IPRateLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// UserRateLimiter limits authenticated users per route category, with
// progressive penalties for clients that keep hammering past the limit.
type UserRateLimiter struct {
	window   time.Duration
	maxRead  int
	maxWrite int

	mu      sync.Mutex
	state   map[string]timestamps // key = u:<id>:<category>
	penalty map[string]penaltyInfo
	stop    chan struct{}
	once    sync.Once
}

type penaltyInfo struct {
	Level int
	Until int64 // unix nanos
}

func NewUserRateLimiter(maxReqRead, maxReqWrite int, window time.Duration) *UserRateLimiter {
	l := &UserRateLimiter{
		window:   window,
		maxRead:  maxReqRead,
		maxWrite: maxReqWrite,
		state:    make(map[string]timestamps),
		penalty:  make(map[string]penaltyInfo),
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(time.Minute)
	return l
}

func routeCategory(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/admin"):
		return "admin"
	case strings.HasSuffix(path, "/document"):
		return "upload"
	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		return "read"
	default:
		return "write"
	}
}

func (l *UserRateLimiter) limitFor(cat string) int {
	switch cat {
	case "upload":
		return getEnvInt("RATE_USER_UPLOAD", 10)
	case "admin":
		return getEnvInt("RATE_USER_ADMIN", 500)
	case "read":
		return l.maxRead
	default:
		return l.maxWrite
	}
}

func penaltyFor(level int) time.Duration {
	switch level {
	case 1:
		return time.Minute
	case 2:
		return 5 * time.Minute
	case 3:
		return 15 * time.Minute
	default:
		return 30 * time.Minute
	}
}

// Middleware must run after RequireAuth; anonymous requests pass through.
func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetUserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		cat := routeCategory(r)
		limit := l.limitFor(cat)
		key := fmt.Sprintf("u:%d:%s", uid, cat)
		now := nowUnix()

		l.mu.Lock()
		pi := l.penalty[key]
		if pi.Until > now {
			l.mu.Unlock()
			tooMany(w, int(time.Duration(pi.Until-now).Seconds()))
			return
		}
		arr := append(prune(l.state[key], now-int64(l.window)), now)
		l.state[key] = arr
		count := len(arr)
		if count > limit {
			d := penaltyFor(pi.Level + 1)
			l.penalty[key] = penaltyInfo{Level: pi.Level + 1, Until: now + int64(d)}
			l.mu.Unlock()
			tooMany(w, int(d.Seconds()))
			return
		}
		l.mu.Unlock()

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count))
		next.ServeHTTP(w, r)
	})
}

func (l *UserRateLimiter) cleanupLoop(every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-tick.C:
			l.mu.Lock()
			now := nowUnix()
			cutoff := now - int64(l.window)
			for k, arr := range l.state {
				if arr = prune(arr, cutoff); len(arr) == 0 {
					delete(l.state, k)
				} else {
					l.state[k] = arr
				}
			}
			for k, p := range l.penalty {
				// keep the level around for a while so repeat offenders escalate
				if p.Until+int64(time.Hour) < now {
					delete(l.penalty, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *UserRateLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}
