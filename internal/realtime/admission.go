package realtime

import "golang.org/x/time/rate"

// Admission decides whether a connection may publish right now
type Admission interface {
	Allow(id string) bool
	Forget(id string)
}

// RateLimiter gives every connection its own token bucket
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewRateLimiter returns nil when perSecond is not positive, which disables admission
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one token for id. A nil limiter admits everything.
func (r *RateLimiter) Allow(id string) bool {
	if r == nil {
		return true
	}
	l, ok := r.limiters[id]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[id] = l
	}
	return l.Allow()
}

// Forget drops the bucket of a closed connection
func (r *RateLimiter) Forget(id string) {
	if r == nil {
		return
	}
	delete(r.limiters, id)
}
