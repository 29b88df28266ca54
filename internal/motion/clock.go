package motion

// SessionClock is the per-session phase machine. Phases advance on explicit
// commands and on the 1-second tick:
//
//	Idle -> Countdown(N) -> Active <-> Paused -> Stopped -> Idle
//
// Elapsed duration only advances while Active, and metric mutation elsewhere
// in the pipeline is gated on MetricsEnabled.
type SessionClock struct {
	phase     Phase
	countdown int
	elapsed   int
}

func NewSessionClock() *SessionClock {
	return &SessionClock{phase: PhaseIdle}
}

// Start moves the clock into the pre-start countdown.
func (c *SessionClock) Start(countdownSec int) {
	c.elapsed = 0
	c.countdown = countdownSec
	if countdownSec <= 0 {
		c.phase = PhaseActive
		return
	}
	c.phase = PhaseCountdown
}

// Tick advances the clock by one second: it burns down the countdown and,
// once Active, accrues elapsed duration. Ticks in any other phase are no-ops.
func (c *SessionClock) Tick() {
	switch c.phase {
	case PhaseCountdown:
		c.countdown--
		if c.countdown <= 0 {
			c.countdown = 0
			c.phase = PhaseActive
		}
	case PhaseActive:
		c.elapsed++
	}
}

// Pause freezes an active session; it is a no-op in any other phase.
func (c *SessionClock) Pause() {
	if c.phase == PhaseActive {
		c.phase = PhasePaused
	}
}

// Resume continues a paused session; it is a no-op in any other phase.
func (c *SessionClock) Resume() {
	if c.phase == PhasePaused {
		c.phase = PhaseActive
	}
}

// Stop ends the session from any running phase. It reports whether the clock
// was actually running, so a second stop can be treated as a no-op.
func (c *SessionClock) Stop() bool {
	switch c.phase {
	case PhaseCountdown, PhaseActive, PhasePaused:
		c.phase = PhaseStopped
		return true
	}
	return false
}

// Reset returns a stopped clock to Idle with zero elapsed time.
func (c *SessionClock) Reset() {
	c.phase = PhaseIdle
	c.countdown = 0
	c.elapsed = 0
}

func (c *SessionClock) Phase() Phase { return c.phase }

func (c *SessionClock) Countdown() int { return c.countdown }

// ElapsedSec is the accrued active duration in seconds.
func (c *SessionClock) ElapsedSec() int { return c.elapsed }

// MetricsEnabled reports whether pipeline components may mutate accumulated
// metrics: only while Active.
func (c *SessionClock) MetricsEnabled() bool { return c.phase == PhaseActive }

// Running reports whether a session is underway in any phase between start
// and stop.
func (c *SessionClock) Running() bool {
	switch c.phase {
	case PhaseCountdown, PhaseActive, PhasePaused:
		return true
	}
	return false
}
