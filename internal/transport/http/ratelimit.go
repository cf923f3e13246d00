package http

import "golang.org/x/time/rate"

// drawLimiter throttles draw messages of one connection. A nil limiter allows
// everything. It is used only from the connection's read loop.
type drawLimiter struct {
	limiter *rate.Limiter
}

func newDrawLimiter(perSecond float64, burst int) *drawLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &drawLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// allow reports whether the next draw may pass.
func (d *drawLimiter) allow() bool {
	return d == nil || d.limiter.Allow()
}
