// Package poller is the consumer side of the notification feed: it polls the
// delivery endpoint and keeps a bounded board of transient tiles.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/contoso-notify/internal/domain"
)

const (
	// DefaultInterval is the poll period used when none is configured.
	DefaultInterval = 5 * time.Second
	// DefaultExpiryTick bounds how late a tile can outlive its lifetime.
	DefaultExpiryTick = time.Second
)

// Fetcher returns the next batch of notifications.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.Notification, error)
}

// Poller drives a Board from a Fetcher.
type Poller struct {
	fetcher  Fetcher
	board    *Board
	interval time.Duration
	expiry   time.Duration
	now      func() time.Time
	onCycle  func(*Board)
}

type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithExpiryTick sets how often expired tiles are swept between polls.
// Non-positive values are ignored.
func WithExpiryTick(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.expiry = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// OnCycle registers fn to run after every poll, including failed ones, and
// after any expiry sweep that removed tiles.
func OnCycle(fn func(*Board)) Option {
	return func(p *Poller) { p.onCycle = fn }
}

func New(f Fetcher, b *Board, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  f,
		board:    b,
		interval: DefaultInterval,
		expiry:   DefaultExpiryTick,
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run polls immediately and then every interval until ctx is cancelled.
// Fetch errors are logged and the next tick retries. Expired tiles are
// swept on their own tick so they vanish on time between polls.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	sweep := time.NewTicker(p.expiry)
	defer sweep.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			p.cycle(ctx)
		case <-sweep.C:
			if ctx.Err() != nil {
				return nil
			}
			if p.expire(p.now()) > 0 && p.onCycle != nil {
				p.onCycle(p.board)
			}
		}
	}
}

func (p *Poller) expire(now time.Time) int {
	n := p.board.Expire(now)
	if n > 0 {
		slog.Debug("expired notification tiles", "count", n)
	}
	return n
}

func (p *Poller) cycle(ctx context.Context) {
	now := p.now()
	p.expire(now)

	batch, err := p.fetcher.Fetch(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		return
	case err != nil:
		slog.Warn("error fetching notifications", "err", err)
	default:
		for _, n := range batch {
			p.board.Add(n, now)
		}
	}

	if p.onCycle != nil {
		p.onCycle(p.board)
	}
}
