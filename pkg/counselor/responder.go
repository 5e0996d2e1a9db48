// Package counselor produces the canned "AI counselor" replies: a uniformly random
// pick from a fixed catalog after a uniformly random thinking delay.
package counselor

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// Random is the randomness the responder draws from. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// Sleeper suspends the calling goroutine for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

var ErrEmptyCatalog = errors.New("counselor: reply catalog is empty")

// Reply is one produced answer and how it was drawn.
type Reply struct {
	Content      string
	CatalogIndex int
	Delay        time.Duration
}

type Responder struct {
	catalog  []string
	minDelay time.Duration
	maxDelay time.Duration
	random   Random
	sleep    Sleeper
}

type Option func(*Responder)

func WithRandom(r Random) Option {
	return func(rs *Responder) {
		rs.random = r
	}
}

func WithSleeper(s Sleeper) Option {
	return func(rs *Responder) {
		rs.sleep = s
	}
}

// WithDelayRange sets the [min, max] thinking delay. max below min is clamped to min.
func WithDelayRange(min, max time.Duration) Option {
	return func(rs *Responder) {
		if max < min {
			max = min
		}
		rs.minDelay = min
		rs.maxDelay = max
	}
}

// NewResponder copies catalog, so later changes by the caller do not affect the
// index-to-reply mapping.
func NewResponder(catalog []string, opts ...Option) (*Responder, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	r := &Responder{
		catalog:  append([]string(nil), catalog...),
		minDelay: time.Second,
		maxDelay: 3 * time.Second,
		random:   NewLockedRandom(time.Now().UnixNano()),
		sleep:    ContextSleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Delay draws a duration uniformly from [minDelay, maxDelay).
func (r *Responder) Delay() time.Duration {
	span := r.maxDelay - r.minDelay
	return r.minDelay + time.Duration(r.random.Float64()*float64(span))
}

// Pick returns a uniformly random catalog entry and its index.
func (r *Responder) Pick() (string, int) {
	i := r.random.Intn(len(r.catalog))
	return r.catalog[i], i
}

// Respond waits out a random delay, then picks a reply. Only the calling goroutine
// is suspended. A cancelled ctx aborts the wait and returns its error.
func (r *Responder) Respond(ctx context.Context) (*Reply, error) {
	delay := r.Delay()
	if err := r.sleep(ctx, delay); err != nil {
		return nil, err
	}
	content, idx := r.Pick()
	return &Reply{Content: content, CatalogIndex: idx, Delay: delay}, nil
}

func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LockedRandom makes a *rand.Rand safe for concurrent requests.
type LockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRandom(seed int64) *LockedRandom {
	return &LockedRandom{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRandom) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
