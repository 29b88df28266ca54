package motion

import "testing"

func TestClockLifecycle(t *testing.T) {
	c := NewSessionClock()
	if c.Phase() != PhaseIdle || c.Running() {
		t.Fatalf("expected idle clock")
	}

	c.Start(3)
	if c.Phase() != PhaseCountdown || c.Countdown() != 3 {
		t.Fatalf("expected countdown 3, got %v %d", c.Phase(), c.Countdown())
	}
	if c.MetricsEnabled() {
		t.Fatalf("metrics must be gated during countdown")
	}

	c.Tick()
	c.Tick()
	if c.Phase() != PhaseCountdown {
		t.Fatalf("expected still counting down")
	}
	c.Tick()
	if c.Phase() != PhaseActive || c.Countdown() != 0 {
		t.Fatalf("expected active after countdown, got %v", c.Phase())
	}
	if c.ElapsedSec() != 0 {
		t.Fatalf("countdown ticks must not accrue duration")
	}

	c.Tick()
	c.Tick()
	if c.ElapsedSec() != 2 {
		t.Fatalf("expected 2 elapsed seconds, got %d", c.ElapsedSec())
	}

	if !c.Stop() {
		t.Fatalf("expected stop to succeed")
	}
	if c.Stop() {
		t.Fatalf("expected second stop to be a no-op")
	}

	c.Reset()
	if c.Phase() != PhaseIdle || c.ElapsedSec() != 0 {
		t.Fatalf("expected idle clock after reset")
	}
}

func TestClockPauseFreezesDuration(t *testing.T) {
	c := NewSessionClock()
	c.Start(0)
	c.Tick()

	c.Pause()
	if c.Phase() != PhasePaused || c.MetricsEnabled() {
		t.Fatalf("expected paused clock")
	}
	c.Tick()
	c.Tick()
	if c.ElapsedSec() != 1 {
		t.Fatalf("expected duration frozen at 1, got %d", c.ElapsedSec())
	}

	c.Resume()
	c.Tick()
	if c.ElapsedSec() != 2 {
		t.Fatalf("expected duration to continue from frozen value, got %d", c.ElapsedSec())
	}
}

func TestClockPauseResumeOnlyFromValidPhases(t *testing.T) {
	c := NewSessionClock()
	c.Pause()
	if c.Phase() != PhaseIdle {
		t.Fatalf("pause from idle must be a no-op")
	}

	c.Start(3)
	c.Pause()
	if c.Phase() != PhaseCountdown {
		t.Fatalf("pause during countdown must be a no-op")
	}

	c.Resume()
	if c.Phase() != PhaseCountdown {
		t.Fatalf("resume during countdown must be a no-op")
	}
}

func TestClockStartWithoutCountdown(t *testing.T) {
	c := NewSessionClock()
	c.Start(0)
	if c.Phase() != PhaseActive {
		t.Fatalf("expected immediate active phase")
	}
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseIdle:      "idle",
		PhaseCountdown: "countdown",
		PhaseActive:    "active",
		PhasePaused:    "paused",
		PhaseStopped:   "stopped",
	}
	for phase, want := range cases {
		if phase.String() != want {
			t.Fatalf("expected %q, got %q", want, phase.String())
		}
	}
}
