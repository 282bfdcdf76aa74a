// Package pacing consumes the advisory latencies of the datapath.
//
// A Pacer sees only the kind and length of each step. It never sees
// operands or results, so no pacer can change what the datapath computes.
package pacing

import (
	"context"
	"time"

	"tlog.app/go/tlog"

	"github.com/sarchlab/dp8sim/timing/latency"
)

// Step is one latency-bearing datapath operation.
type Step struct {
	Kind    latency.Kind
	Seconds float64
	// Detail is a short human-readable description, e.g. "r1,r2".
	Detail string
}

// Pacer consumes the latency of a step.
type Pacer interface {
	Pace(ctx context.Context, step Step) error
}

// Nop is a Pacer that returns immediately.
type Nop struct{}

// Pace implements Pacer.
func (Nop) Pace(ctx context.Context, step Step) error {
	return nil
}

// Sleep is a Pacer that blocks for the wall-clock length of each step.
type Sleep struct {
	// Scale multiplies every latency. Zero means 1.
	Scale float64
}

// Pace implements Pacer. It returns the context error if ctx is done first.
func (s Sleep) Pace(ctx context.Context, step Step) error {
	scale := s.Scale
	if scale == 0 {
		scale = 1
	}

	d := latency.Duration(step.Seconds * scale)

	tlog.V("pacing").Printw("sleep", "kind", step.Kind.String(), "detail", step.Detail, "dur", d)

	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
