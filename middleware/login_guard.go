package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"geniustrading/logger"

	redis "github.com/redis/go-redis/v9"
)

// LoginGuard locks a username out after repeated failed logins. Counters
// live in Redis when a client is configured so every instance sees them,
// otherwise in process memory.
type LoginGuard struct {
	client   *redis.Client
	maxFails int
	failTTL  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	failed map[string]int
	locks  map[string]time.Time
}

func NewLoginGuard(client *redis.Client, maxFails int) *LoginGuard {
	if maxFails <= 0 {
		maxFails = 5
	}
	return &LoginGuard{
		client:   client,
		maxFails: maxFails,
		failTTL:  30 * time.Minute,
		now:      time.Now,
		failed:   make(map[string]int),
		locks:    make(map[string]time.Time),
	}
}

func guardKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// lockFor returns how long to lock after the given number of failures; each
// failure past the threshold escalates.
func (g *LoginGuard) lockFor(failures int) time.Duration {
	if failures < g.maxFails {
		return 0
	}
	return penaltyFor(failures - g.maxFails + 1)
}

// Locked reports whether username is locked and for how long.
func (g *LoginGuard) Locked(ctx context.Context, username string) (bool, time.Duration) {
	key := guardKey(username)
	if g.client != nil {
		ttl, err := g.client.TTL(ctx, "login:lock:"+key).Result()
		if err == nil {
			return ttl > 0, max(ttl, 0)
		}
		log := logger.For("login-guard")
		log.Warn().Err(err).Msg("redis lock lookup failed, using local state")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	until, ok := g.locks[key]
	if !ok {
		return false, 0
	}
	if left := until.Sub(g.now()); left > 0 {
		return true, left
	}
	delete(g.locks, key)
	return false, 0
}

// Fail records a failed attempt.
func (g *LoginGuard) Fail(ctx context.Context, username string) {
	key := guardKey(username)
	if g.client != nil {
		failures, err := g.client.Incr(ctx, "login:fail:"+key).Result()
		if err == nil {
			g.client.Expire(ctx, "login:fail:"+key, g.failTTL)
			if d := g.lockFor(int(failures)); d > 0 {
				g.client.Set(ctx, "login:lock:"+key, "1", d)
			}
			return
		}
		log := logger.For("login-guard")
		log.Warn().Err(err).Msg("redis failure counter unavailable, using local state")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed[key]++
	if d := g.lockFor(g.failed[key]); d > 0 {
		g.locks[key] = g.now().Add(d)
	}
}

// Reset clears the counters after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, username string) {
	key := guardKey(username)
	if g.client != nil {
		g.client.Del(ctx, "login:fail:"+key, "login:lock:"+key)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failed, key)
	delete(g.locks, key)
}
