package batch

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Pacer holds each submission back so its progress stays visible
type Pacer interface {
	Wait(ctx context.Context) error
}

// fixedPacer waits a fixed delay before every submission
type fixedPacer struct {
	clock clockwork.Clock
	delay time.Duration
}

// NewFixedPacer creates a pacer that sleeps delay on clock. A zero delay never blocks.
func NewFixedPacer(clock clockwork.Clock, delay time.Duration) Pacer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &fixedPacer{clock: clock, delay: delay}
}

// Wait blocks for the delay or until ctx is done
func (p *fixedPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := p.clock.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
