package engine

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// tribute is collected once per this many driver steps.
const stepsPerTributeCycle = 3600

// Step advances the whole world to the given timestamp: ledgers and
// queues first, then marches and battles, then the camp AI, then dynasty
// succession. Idempotent for a fixed now.
func (o *Orchestrator) Step(now int64) {
	o.mu.RLock()
	paused := o.state.Paused
	o.mu.RUnlock()
	if paused {
		return
	}

	o.ReconcileAll(now)
	o.AdvanceArmies(now)
	o.TickBarbarians(now)
	o.TickSuccession(now)
}

// SetPaused toggles world advancement without stopping the driver.
func (o *Orchestrator) SetPaused(paused bool) {
	o.mu.Lock()
	o.state.Paused = paused
	o.mu.Unlock()
}

// Driver runs the periodic loop that feeds wall-clock timestamps into the
// orchestrator. Everything below the driver takes now as an argument; the
// driver is the only component that reads the system clock. Speed is
// stored atomically so HTTP handlers can retune a running loop.
type Driver struct {
	Orchestrator *Orchestrator
	Interval     time.Duration // base step interval (default 1 second)

	speed    atomic.Uint64 // float64 bits; 1.0 = real-time, 0 = paused
	steps    uint64
	stop     chan struct{}
	stopOnce sync.Once
}

// NewDriver wires a driver with default settings.
func NewDriver(o *Orchestrator) *Driver {
	d := &Driver{
		Orchestrator: o,
		Interval:     time.Second,
		stop:         make(chan struct{}),
	}
	d.SetSpeed(1.0)
	return d
}

// Speed reports the current time multiplier.
func (d *Driver) Speed() float64 {
	return math.Float64frombits(d.speed.Load())
}

// SetSpeed retunes the time multiplier. Safe to call while Run is live;
// zero or negative idles the loop without stopping it.
func (d *Driver) SetSpeed(v float64) {
	d.speed.Store(math.Float64bits(v))
}

// Run starts the driver loop. Blocks until Stop is called.
func (d *Driver) Run() {
	slog.Info("engine driver started", "interval", d.Interval, "speed", d.Speed())

	for {
		select {
		case <-d.stop:
			slog.Info("engine driver stopped", "steps", d.steps)
			return
		default:
		}

		speed := d.Speed()
		if speed <= 0 {
			select {
			case <-d.stop:
				slog.Info("engine driver stopped", "steps", d.steps)
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		start := time.Now()
		d.step(start.UnixMilli())

		elapsed := time.Since(start)
		target := time.Duration(float64(d.Interval) / speed)
		if elapsed < target {
			select {
			case <-d.stop:
				slog.Info("engine driver stopped", "steps", d.steps)
				return
			case <-time.After(target - elapsed):
			}
		}
	}
}

// Stop halts the driver loop. Idempotent.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// step runs one driver iteration.
func (d *Driver) step(now int64) {
	d.steps++
	d.Orchestrator.Step(now)
	if d.steps%stepsPerTributeCycle == 0 {
		d.Orchestrator.CollectTribute(now)
	}
}
