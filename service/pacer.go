package service

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out broadcasts. It holds a token bucket shared by every batch
// in the process and hands each batch its own bucket that enforces the
// minimum spacing between that batch's publications. Waiting parks only the
// calling goroutine and returns early when ctx is done.
type Pacer struct {
	global      *rate.Limiter
	minInterval time.Duration
}

// NewPacer returns a pacer. A zero minInterval disables per-batch spacing and
// a zero globalRate disables the shared limit.
func NewPacer(minInterval time.Duration, globalRate float64, globalBurst int) *Pacer {
	p := &Pacer{minInterval: minInterval}
	if globalRate > 0 {
		if globalBurst < 1 {
			globalBurst = 1
		}
		p.global = rate.NewLimiter(rate.Limit(globalRate), globalBurst)
	}
	return p
}

// Batch returns the pacer for one batch. It must not be shared across batches.
func (p *Pacer) Batch() *BatchPacer {
	bp := &BatchPacer{}
	if p == nil {
		return bp
	}
	bp.global = p.global
	if p.minInterval > 0 {
		bp.local = rate.NewLimiter(rate.Every(p.minInterval), 1)
	}
	return bp
}

// BatchPacer gates the publications of a single batch.
type BatchPacer struct {
	global *rate.Limiter
	local  *rate.Limiter
}

// Wait blocks until the next publication may go out. The shared bucket is
// consulted first so the batch spacing is measured right before publishing.
func (b *BatchPacer) Wait(ctx context.Context) error {
	start := time.Now()
	defer func() { pacingWait.Observe(time.Since(start).Seconds()) }()

	if b.global != nil {
		if err := b.global.Wait(ctx); err != nil {
			return err
		}
	}
	if b.local != nil {
		if err := b.local.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
