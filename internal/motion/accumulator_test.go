package motion

import (
	"math"
	"testing"
)

func TestAccumulateMovingIncrement(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())

	r := a.Accumulate(Classification{DeltaKm: 0.0009, DeltaSeconds: 1, Moving: true}, 5)
	if math.Abs(r.DistanceKm-0.0009) > 1e-9 {
		t.Fatalf("expected distance 0.0009, got %v", r.DistanceKm)
	}
	// Reported speed (5) beats dead-reckoned (3.24).
	if r.InstantKmh != 5 {
		t.Fatalf("expected instant 5, got %v", r.InstantKmh)
	}
	if r.SmoothedKmh != 5 {
		t.Fatalf("expected smoothed 5, got %v", r.SmoothedKmh)
	}
}

func TestAccumulateDeadReckonedBeatsReported(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())

	r := a.Accumulate(Classification{DeltaKm: 0.002, DeltaSeconds: 1, Moving: true}, 1)
	if math.Abs(r.InstantKmh-7.2) > 1e-9 {
		t.Fatalf("expected dead-reckoned 7.2, got %v", r.InstantKmh)
	}
}

func TestAccumulateNotMovingHoldsDistance(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())
	a.Accumulate(Classification{DeltaKm: 0.001, DeltaSeconds: 1, Moving: true}, 4)

	r := a.Accumulate(Classification{DeltaKm: 0.002, DeltaSeconds: 1, Moving: false}, 0)
	if math.Abs(r.DistanceKm-0.001) > 1e-9 {
		t.Fatalf("expected distance unchanged, got %v", r.DistanceKm)
	}
}

func TestAccumulateDistanceMonotonic(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())
	prev := 0.0
	for i := 0; i < 50; i++ {
		moving := i%3 != 0
		r := a.Accumulate(Classification{DeltaKm: 0.001, DeltaSeconds: 1, Moving: moving}, 4)
		if r.DistanceKm < prev {
			t.Fatalf("distance decreased: %v < %v", r.DistanceKm, prev)
		}
		prev = r.DistanceKm
	}
}

func TestAccumulateSpeedJumpRejected(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())

	// First sample jumps 20 km/h from an empty buffer; the previous sample
	// (zero) is substituted.
	r := a.Accumulate(Classification{DeltaKm: 0.0001, DeltaSeconds: 1, Moving: true}, 20)
	if r.SmoothedKmh != 0 {
		t.Fatalf("expected jump rejected to zero, got %v", r.SmoothedKmh)
	}

	r = a.Accumulate(Classification{DeltaKm: 0.0001, DeltaSeconds: 1, Moving: true}, 5)
	if r.SmoothedKmh != 5 {
		t.Fatalf("expected smoothed 5, got %v", r.SmoothedKmh)
	}
}

func TestAccumulateStopTimeoutForcesZero(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())
	a.Accumulate(Classification{DeltaKm: 0.001, DeltaSeconds: 1, Moving: true}, 6)
	if a.SmoothedKmh() == 0 {
		t.Fatalf("expected non-zero smoothed speed before stop")
	}

	r := a.Accumulate(Classification{Moving: false, StopExceeded: true}, 0)
	if r.SmoothedKmh != 0 {
		t.Fatalf("expected forced zero after stop timeout, got %v", r.SmoothedKmh)
	}
}

func TestAccumulateBufferBounded(t *testing.T) {
	cfg := DefaultConfig()
	a := NewDistanceSpeedAccumulator(cfg)
	for i := 0; i < 30; i++ {
		a.Accumulate(Classification{DeltaKm: 0.001, DeltaSeconds: 1, Moving: true}, 4)
		if len(a.buffer) > cfg.SpeedBufferSize {
			t.Fatalf("speed buffer exceeded capacity: %d", len(a.buffer))
		}
	}
}

func TestAccumulateMaxSpeed(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())
	a.Accumulate(Classification{DeltaKm: 0.001, DeltaSeconds: 1, Moving: true}, 5)
	a.Accumulate(Classification{DeltaKm: 0.002, DeltaSeconds: 1, Moving: true}, 8)
	a.Accumulate(Classification{Moving: false, StopExceeded: true}, 0)

	if a.MaxKmh() != 8 {
		t.Fatalf("expected max speed 8, got %v", a.MaxKmh())
	}
}

func TestAccumulatorReset(t *testing.T) {
	a := NewDistanceSpeedAccumulator(DefaultConfig())
	a.Accumulate(Classification{DeltaKm: 0.001, DeltaSeconds: 1, Moving: true}, 5)
	a.Reset()

	if a.DistanceKm() != 0 || a.SmoothedKmh() != 0 || a.MaxKmh() != 0 || len(a.buffer) != 0 {
		t.Fatalf("expected cleared accumulator")
	}
}

func TestMedian(t *testing.T) {
	if median(nil) != 0 {
		t.Fatalf("expected zero median for empty buffer")
	}
	if median([]float64{3, 1, 2}) != 2 {
		t.Fatalf("unexpected median")
	}
	if median([]float64{4, 1, 3, 2}) != 3 {
		t.Fatalf("unexpected upper median")
	}
}
