// Package sweeper runs the periodic cart maintenance: abandoning idle carts
// and purging long-empty ones. It goes through the same status-guarded cart
// operations as the API, so it cannot race an in-flight checkout, which
// re-validates the cart status under lock.
package sweeper

import (
	"context"
	"io"
	"log"
	"time"
)

type cartMaintainer interface {
	AbandonIdle(ctx context.Context, olderThan time.Duration) (int64, error)
	PurgeEmpty(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Sweeper struct {
	carts        cartMaintainer
	abandonAfter time.Duration
	purgeAfter   time.Duration
	logger       *log.Logger
}

func New(carts cartMaintainer, abandonAfter, purgeAfter time.Duration, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sweeper{
		carts:        carts,
		abandonAfter: abandonAfter,
		purgeAfter:   purgeAfter,
		logger:       logger,
	}
}

// Run sweeps once immediately, then on every tick until the context ends.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	s.Sweep(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one maintenance pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	abandoned, err := s.carts.AbandonIdle(ctx, s.abandonAfter)
	if err != nil {
		s.logger.Printf("sweeper: abandon idle carts error=%v", err)
	} else if abandoned > 0 {
		s.logger.Printf("sweeper: abandoned %d idle carts", abandoned)
	}

	purged, err := s.carts.PurgeEmpty(ctx, s.purgeAfter)
	if err != nil {
		s.logger.Printf("sweeper: purge empty carts error=%v", err)
	} else if purged > 0 {
		s.logger.Printf("sweeper: purged %d empty carts", purged)
	}
}
