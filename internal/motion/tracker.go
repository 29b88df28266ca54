package motion

import (
	"context"
	"math"
	"sync"
	"time"
)

// Tracker owns one workout session's pipeline state and serializes every
// incoming event against it: location fixes, accelerometer samples, clock
// ticks and lifecycle commands. Fixes and samples arrive from independent
// streams, so all state lives behind one mutex and each event is processed
// synchronously.
//
// After every accepted event the tracker publishes a read-only Snapshot
// through the publish callback. Stopping tears down both sensor
// subscriptions unconditionally and returns the frozen Summary.
type Tracker struct {
	cfg     Config
	mode    Mode
	fixes   FixSource
	accel   AccelSource
	publish func(Snapshot)

	mu          sync.Mutex
	clock       *SessionClock
	filter      *GeoFilter
	classifier  *MotionClassifier
	accumulator *DistanceSpeedAccumulator
	steps       *StepCadenceEstimator
	location    *GeoPoint
	lastMoving  bool

	cancelFix   func()
	cancelAccel func()
	stopTicker  chan struct{}
}

// NewTracker builds a tracker for one session. accel may be nil for modes
// without an accelerometer stream; publish may be nil.
func NewTracker(cfg Config, mode Mode, fixes FixSource, accel AccelSource, publish func(Snapshot)) *Tracker {
	if publish == nil {
		publish = func(Snapshot) {}
	}
	return &Tracker{
		cfg:         cfg,
		mode:        mode,
		fixes:       fixes,
		accel:       accel,
		publish:     publish,
		clock:       NewSessionClock(),
		filter:      NewGeoFilter(cfg.ProcessNoise, cfg.MeasurementNoise),
		classifier:  NewMotionClassifier(cfg),
		accumulator: NewDistanceSpeedAccumulator(cfg),
		steps:       NewStepCadenceEstimator(cfg, mode),
	}
}

// Start begins a session: permission check, one-shot initial fix (failure
// swallowed), sensor subscriptions, then the pre-start countdown. Starting
// while a session is already running performs an implicit stop first.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	running := t.clock.Running()
	t.mu.Unlock()
	if running {
		t.Stop()
	}

	if err := t.fixes.RequestPermission(ctx); err != nil {
		return err
	}

	if initial, err := t.fixes.Current(ctx); err == nil {
		t.mu.Lock()
		lat, lng := t.filter.Filter(initial.Latitude, initial.Longitude)
		t.location = &GeoPoint{Latitude: lat, Longitude: lng}
		t.classifier.Observe(*t.location, initial.RecordedAt)
		t.mu.Unlock()
	}

	fixCh, cancelFix, err := t.fixes.Subscribe(ctx, t.cfg.TickInterval)
	if err != nil {
		return err
	}

	var accelCh <-chan AccelSample
	var cancelAccel func()
	if t.mode.OnFoot() && t.accel != nil {
		accelCh, cancelAccel, err = t.accel.Subscribe(ctx, 100*time.Millisecond)
		if err != nil {
			cancelFix()
			return err
		}
	}

	t.mu.Lock()
	t.cancelFix = cancelFix
	t.cancelAccel = cancelAccel
	t.stopTicker = make(chan struct{})
	t.clock.Start(t.cfg.CountdownSec)
	snap := t.snapshotLocked()
	stop := t.stopTicker
	t.mu.Unlock()

	go t.pumpFixes(fixCh)
	if accelCh != nil {
		go t.pumpAccel(accelCh)
	}
	go t.runTicker(stop)

	t.publish(snap)
	return nil
}

// Pause freezes duration and all accumulators.
func (t *Tracker) Pause() {
	t.mu.Lock()
	t.clock.Pause()
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.publish(snap)
}

// Resume continues from the frozen values.
func (t *Tracker) Resume() {
	t.mu.Lock()
	t.clock.Resume()
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.publish(snap)
}

// Stop ends the session, releases both sensor subscriptions and resets all
// session state. It returns the final summary; ok is false when no session
// was running, which makes a repeated stop a no-op.
func (t *Tracker) Stop() (Summary, bool) {
	t.mu.Lock()
	if !t.clock.Stop() {
		t.mu.Unlock()
		return Summary{}, false
	}

	cancelFix := t.cancelFix
	cancelAccel := t.cancelAccel
	stopTicker := t.stopTicker
	t.cancelFix = nil
	t.cancelAccel = nil
	t.stopTicker = nil

	summary := t.summaryLocked()
	t.resetLocked()
	snap := t.snapshotLocked()
	t.mu.Unlock()

	// Sensor teardown is unconditional; whatever the caller does with the
	// summary (including a failed save) must not leave subscriptions alive.
	if stopTicker != nil {
		close(stopTicker)
	}
	if cancelFix != nil {
		cancelFix()
	}
	if cancelAccel != nil {
		cancelAccel()
	}

	t.publish(snap)
	return summary, true
}

// Snapshot returns the current published state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) Mode() Mode { return t.mode }

func (t *Tracker) pumpFixes(ch <-chan RawFix) {
	for f := range ch {
		t.ingestFix(f)
	}
}

func (t *Tracker) pumpAccel(ch <-chan AccelSample) {
	for s := range ch {
		t.ingestAccel(s)
	}
}

func (t *Tracker) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Tracker) tick() {
	t.mu.Lock()
	if !t.clock.Running() {
		t.mu.Unlock()
		return
	}
	t.clock.Tick()
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.publish(snap)
}

// ingestFix runs one raw fix through the pipeline. The smoothed position is
// always published so the map stays live, but metrics only mutate while the
// session is Active.
func (t *Tracker) ingestFix(f RawFix) {
	t.mu.Lock()
	if !t.clock.Running() {
		t.mu.Unlock()
		return
	}

	at := f.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}

	lat, lng := t.filter.Filter(f.Latitude, f.Longitude)
	point := GeoPoint{Latitude: lat, Longitude: lng}
	t.location = &point

	if t.clock.MetricsEnabled() {
		if cl, ok := t.classifier.Classify(point, at, f.SpeedKmh); ok {
			reading := t.accumulator.Accumulate(cl, f.SpeedKmh)
			t.steps.Advance(cl.DeltaKm, cl.Moving)
			t.steps.UpdateCadence(reading.SmoothedKmh)
			t.lastMoving = cl.Moving
		}
	} else {
		// Countdown/Paused: keep the reference point current so the first
		// active fix does not see a stale delta.
		t.classifier.Observe(point, at)
	}

	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.publish(snap)
}

// ingestAccel feeds one accelerometer sample to the step estimator. Samples
// outside the Active phase are discarded.
func (t *Tracker) ingestAccel(s AccelSample) {
	t.mu.Lock()
	if !t.clock.MetricsEnabled() {
		t.mu.Unlock()
		return
	}
	if s.RecordedAt.IsZero() {
		s.RecordedAt = time.Now()
	}
	registered := t.steps.Sample(s, t.lastMoving, t.clock.ElapsedSec())
	var snap Snapshot
	if registered {
		snap = t.snapshotLocked()
	}
	t.mu.Unlock()
	if registered {
		t.publish(snap)
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:       t.clock.Phase().String(),
		Countdown:   t.clock.Countdown(),
		Location:    t.location,
		DistanceKm:  t.accumulator.DistanceKm(),
		SpeedKmh:    t.accumulator.SmoothedKmh(),
		Steps:       t.steps.Steps(),
		CadenceRpm:  t.steps.Cadence(),
		DurationSec: t.clock.ElapsedSec(),
	}
}

func (t *Tracker) summaryLocked() Summary {
	durationSec := t.clock.ElapsedSec()
	distanceKm := t.accumulator.DistanceKm()

	avgSpeed := 0.0
	if durationSec > 0 {
		avgSpeed = distanceKm / (float64(durationSec) / 3600)
	}
	hours := float64(durationSec) / 3600

	return Summary{
		Mode:         t.mode,
		DurationSec:  durationSec,
		DistanceKm:   distanceKm,
		Steps:        t.steps.Steps(),
		CadenceRpm:   t.steps.Cadence(),
		CaloriesKcal: int(math.Round(distanceKm * t.cfg.CaloriesPerKm)),
		AvgSpeedKmh:  avgSpeed,
		MaxSpeedKmh:  t.accumulator.MaxKmh(),
		FluidLossL:   math.Round(hours*t.cfg.FluidLossLPerHour*100) / 100,
	}
}

func (t *Tracker) resetLocked() {
	t.clock.Reset()
	t.filter.Reset()
	t.classifier.Reset()
	t.accumulator.Reset()
	t.steps.Reset()
	t.location = nil
	t.lastMoving = false
}
