package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// defaultRateLimit is the number of mutating requests a client may make
// per minute when no limit is configured.
const defaultRateLimit = 60

// rateLimiter implements a simple in-memory rate limiter per client IP.
type rateLimiter struct {
	mu           sync.Mutex
	limit        int
	window       time.Duration
	now          func() time.Time
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	windowStart time.Time
	lastRequest time.Time
	requests    int
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = defaultRateLimit
	}
	rl := &rateLimiter{
		limit:       perMinute,
		window:      time.Minute,
		now:         time.Now,
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries.
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries drops clients idle for ten windows. It returns how
// many were removed.
func (rl *rateLimiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * rl.window)
	removed := 0
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// allow reports whether a request from clientIP fits in the current
// window. Rejections are counted in metrics when it is not nil.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, exists := rl.clients[clientIP]
	if !exists || now.Sub(client.windowStart) >= rl.window {
		rl.clients[clientIP] = &clientInfo{windowStart: now, lastRequest: now, requests: 1}
		return true
	}

	client.requests++
	client.lastRequest = now
	if client.requests > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// retryAfter is the number of seconds until clientIP's window resets.
func (rl *rateLimiter) retryAfter(clientIP string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[clientIP]
	if !ok {
		return 0
	}
	left := rl.window - rl.now().Sub(client.windowStart)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
