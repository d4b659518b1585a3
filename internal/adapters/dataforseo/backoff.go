package dataforseo

import (
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxRetries is the number of additional attempts after the first one
	MaxRetries = 3
	// BaseDelay is the exponential backoff unit
	BaseDelay = time.Second

	retryAfterJitter = 500 * time.Millisecond
	maxRetryAfterSec = 60
)

// Backoff computes retry delays. The zero value is not usable, see NewBackoff
type Backoff struct {
	Base time.Duration

	// int64n returns a value in [0, n); swapped in tests
	int64n func(n int64) int64
}

// NewBackoff returns a Backoff with the given unit, BaseDelay when base <= 0
func NewBackoff(base time.Duration) Backoff {
	if base <= 0 {
		base = BaseDelay
	}
	return Backoff{Base: base, int64n: rand.Int64N}
}

// Delay returns how long to wait before the attempt following attempt (0 based).
// A positive retryAfter (seconds) wins over exponential growth.
func (b Backoff) Delay(attempt, retryAfter int) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter)*time.Second + b.jitter(retryAfterJitter)
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 20 {
		attempt = 20
	}
	return b.Base*time.Duration(1<<attempt) + b.jitter(b.Base)
}

// jitter returns a value in [0, upper]
func (b Backoff) jitter(upper time.Duration) time.Duration {
	if upper <= 0 {
		return 0
	}
	pick := b.int64n
	if pick == nil {
		pick = rand.Int64N
	}
	return time.Duration(pick(int64(upper) + 1))
}

// ParseRetryAfter reads a Retry-After header value in either delta-seconds or
// HTTP-date form. The result is clamped to [0, 60] seconds. ok is false when the
// header is absent or unparseable.
func ParseRetryAfter(h string, now time.Time) (seconds int, ok bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(h); err == nil {
		return clampRetryAfter(n), true
	}
	at, err := http.ParseTime(h)
	if err != nil {
		return 0, false
	}
	secs := math.Ceil(at.Sub(now).Seconds())
	if secs > maxRetryAfterSec {
		secs = maxRetryAfterSec
	}
	return clampRetryAfter(int(secs)), true
}

func clampRetryAfter(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxRetryAfterSec {
		return maxRetryAfterSec
	}
	return n
}

// ShouldRetry reports whether an HTTP status is worth another attempt (429 and 5xx)
func ShouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}
