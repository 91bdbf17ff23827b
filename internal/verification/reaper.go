package verification

import (
	"context"
	"time"

	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// Reaper periodically purges verification codes older than the TTL.
type Reaper struct {
	store    CodeStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	quit     chan struct{}
	doneCh   chan struct{}
}

// NewReaper creates a Reaper. A non-positive ttl uses DefaultTTL, matching
// NewService. A non-positive interval defaults to one minute.
func NewReaper(store CodeStore, ttl, interval time.Duration) *Reaper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		quit:     make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the reaper in a background goroutine.
func (r *Reaper) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reaper to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reaper) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reaper has fully stopped.
func (r *Reaper) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	l := pkglog.L()

	n, err := r.store.Purge(ctx, r.now().Add(-r.ttl))
	if err != nil {
		l.Error().Err(err).Msg("reaper: failed to purge verification codes")
		return
	}
	if n > 0 {
		l.Info().Int64("count", n).Msg("reaper: purged verification codes")
	}
}
