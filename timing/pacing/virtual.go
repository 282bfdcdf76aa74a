package pacing

import (
	"context"
	"sync"

	"github.com/sarchlab/akita/v4/sim"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Mark records when a step completed on the virtual clock.
type Mark struct {
	Step Step
	At   float64
}

// stepEvent completes a paced step at its virtual time.
type stepEvent struct {
	*sim.EventBase
	step Step
}

// VirtualPacer advances a virtual clock instead of sleeping. Each step
// becomes an event on an Akita serial engine scheduled Seconds after the
// previous step completed.
type VirtualPacer struct {
	mu     sync.Mutex
	engine *sim.SerialEngine
	trace  []Mark
}

// NewVirtualPacer creates a VirtualPacer starting at time zero.
func NewVirtualPacer() *VirtualPacer {
	return &VirtualPacer{
		engine: sim.NewSerialEngine(),
	}
}

// Pace implements Pacer.
func (p *VirtualPacer) Pace(ctx context.Context, step Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	at := p.engine.CurrentTime() + sim.VTimeInSec(step.Seconds)
	p.engine.Schedule(stepEvent{
		EventBase: sim.NewEventBase(at, p),
		step:      step,
	})

	if err := p.engine.Run(); err != nil {
		return errors.Wrap(err, "virtual clock")
	}

	return nil
}

// Handle implements sim.Handler.
func (p *VirtualPacer) Handle(e sim.Event) error {
	evt, ok := e.(stepEvent)
	if !ok {
		return errors.New("unexpected event %T", e)
	}

	at := float64(evt.Time())
	p.trace = append(p.trace, Mark{Step: evt.step, At: at})

	tlog.V("pacing").Printw("virtual step", "kind", evt.step.Kind.String(), "detail", evt.step.Detail, "at", at)

	return nil
}

// Now returns the current virtual time in seconds.
func (p *VirtualPacer) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return float64(p.engine.CurrentTime())
}

// Trace returns a copy of the completed steps in order.
func (p *VirtualPacer) Trace() []Mark {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Mark, len(p.trace))
	copy(out, p.trace)

	return out
}

// Reset restarts the virtual clock at zero and drops the trace.
func (p *VirtualPacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.engine = sim.NewSerialEngine()
	p.trace = nil
}
