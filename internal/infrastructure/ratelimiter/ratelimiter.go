package ratelimiter

import (
	"math"
	"net/http"
	"sync"
	"time"
)

const defaultSourceKey = "X-RateLimit-Key"

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	IdleTTL          time.Duration
	SourceHeaderKey  string
}

func New(options Options) Limiter {
	if options.IdleTTL == 0 {
		options.IdleTTL = 5 * time.Minute
	}

	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond
	}

	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}

	rl := &RateLimiter{
		ratePerMillisecond: float64(options.MaxRatePerSecond) / 1000.0,
		maxBurst:           options.MaxBurst,
		idleTTL:            options.IdleTTL,
		sourceHeaderKey:    options.SourceHeaderKey,
		buckets:            make(map[string]*bucket),
	}

	go rl.evictIdle()

	return rl
}

type bucket struct {
	tokens   float64
	lastFill int64 // Unix milliseconds
	lastSeen time.Time
}

type RateLimiter struct {
	ratePerMillisecond float64
	maxBurst           int
	idleTTL            time.Duration
	sourceHeaderKey    string

	mu      sync.Mutex
	buckets map[string]*bucket
}

func (rl *RateLimiter) getBucket(sourceKey string, now int64) *bucket {
	b, ok := rl.buckets[sourceKey]
	if !ok {
		b = &bucket{
			tokens:   float64(rl.maxBurst),
			lastFill: now,
		}
		rl.buckets[sourceKey] = b
	}

	return b
}

func (rl *RateLimiter) refill(b *bucket, now int64) {
	elapsed := now - b.lastFill
	if elapsed <= 0 {
		return
	}

	b.tokens = math.Min(
		b.tokens+float64(elapsed)*rl.ratePerMillisecond,
		float64(rl.maxBurst),
	)
	b.lastFill = now
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixMilli()
	b := rl.getBucket(sourceKey, now)
	rl.refill(b, now)
	b.lastSeen = time.Now()

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixMilli()
	b := rl.getBucket(sourceKey, now)
	rl.refill(b, now)

	return int(math.Floor(b.tokens))
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(rl.sourceHeaderKey); key != "" {
		return key
	}

	// Fall back to IP address
	return r.RemoteAddr
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-rl.idleTTL)

		rl.mu.Lock()
		for key, b := range rl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}
