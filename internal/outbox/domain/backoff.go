package domain

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffPolicy computes retry delays as base * multiplier^(attempts-1), capped at Max,
// with a symmetric random jitter of +/- Jitter (a ratio, 0.2 means 20%).
type BackoffPolicy struct {
	Base       time.Duration
	Multiplier float64
	Max        time.Duration
	Jitter     float64

	// Rand returns a float in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

// DefaultBackoffPolicy returns 2s, 4s, 8s ... capped at 10 minutes with 20% jitter.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Base:       2 * time.Second,
		Multiplier: 2,
		Max:        10 * time.Minute,
		Jitter:     0.2,
	}
}

// Delay returns how long to wait after the given number of failed attempts.
// The result never drops below Base nor exceeds Max.
func (p BackoffPolicy) Delay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}

	raw := float64(p.Base) * math.Pow(mult, float64(attempts-1))
	if p.Max > 0 && raw > float64(p.Max) {
		raw = float64(p.Max)
	}

	if p.Jitter > 0 {
		r := rand.Float64
		if p.Rand != nil {
			r = p.Rand
		}
		raw += raw * (r()*2 - 1) * p.Jitter
	}

	delay := time.Duration(raw)
	if p.Max > 0 {
		delay = min(delay, p.Max)
	}
	return max(delay, p.Base)
}

// NextRetryAt returns the earliest time the item may be retried.
func (p BackoffPolicy) NextRetryAt(now time.Time, attempts int) time.Time {
	return now.Add(p.Delay(attempts))
}
