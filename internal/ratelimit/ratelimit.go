// Package ratelimit implements a fixed counting window per key.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type window struct {
	start time.Time
	count int
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window resets, at least 1.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(d.ResetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Limiter counts hits per key. Keys live in a bounded LRU whose entries expire
// with the window, so memory stays capped no matter how many clients show up.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries *expirable.LRU[string, *window]

	now func() time.Time
}

func New(limit int, win time.Duration, capacity int) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if win <= 0 {
		win = time.Minute
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		limit:   limit,
		window:  win,
		entries: expirable.NewLRU[string, *window](capacity, nil, win),
		now:     time.Now,
	}
}

func (l *Limiter) Limit() int { return l.limit }

func (l *Limiter) Window() time.Duration { return l.window }

// Allow records one hit for key. The first hit opens a window; once the count
// passes the limit every hit is rejected until the window ends.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries.Get(key)
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &window{start: now}
		l.entries.Add(key, w)
	}
	if w.count <= l.limit {
		w.count++
	}

	remaining := l.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   w.count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   w.start.Add(l.window),
	}
}

// Reset forgets key; the login route calls it after a successful sign-in.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries.Remove(key)
}
