package engine

import (
	"testing"
	"time"
)

func TestDriverSpeedRoundTrip(t *testing.T) {
	d := NewDriver(newTestOrchestrator())
	if d.Speed() != 1.0 {
		t.Fatalf("default speed = %v, want 1.0", d.Speed())
	}
	d.SetSpeed(25)
	if d.Speed() != 25 {
		t.Fatalf("speed = %v, want 25", d.Speed())
	}
	d.SetSpeed(0)
	if d.Speed() != 0 {
		t.Fatalf("speed = %v, want 0", d.Speed())
	}
}

func TestDriverStopTerminatesRun(t *testing.T) {
	d := NewDriver(newTestOrchestrator())
	d.SetSpeed(0) // idle loop; nothing steps while we shut it down

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	d.Stop()
	d.Stop() // second call is a no-op, not a panic

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestDriverSetSpeedWhileRunning(t *testing.T) {
	d := NewDriver(newTestOrchestrator())
	d.Interval = time.Millisecond

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	// Retune from another goroutine the way the HTTP handler does.
	for i := 0; i < 100; i++ {
		d.SetSpeed(float64(i % 5))
	}
	d.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
