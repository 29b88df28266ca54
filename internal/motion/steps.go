package motion

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// StepCadenceEstimator counts steps for foot-borne modes and derives a
// cadence proxy for bike mode.
//
// Foot modes keep a bounded buffer of accelerometer vector magnitudes. A step
// registers when the rolling mean exceeds an adaptive threshold (base plus a
// slow time-varying term plus a standard-deviation term), the raw magnitude
// clears an absolute floor, the minimum inter-step interval has elapsed, the
// device is classified as moving, and the acceleration direction has not
// jerked in a way inconsistent with steady gait.
//
// A distance-derived estimate runs in parallel as a fallback; the published
// count is the larger of the two so neither source under-counts.
type StepCadenceEstimator struct {
	cfg  Config
	mode Mode

	magnitudes []float64
	directions [][3]float64

	accelSteps    int
	distanceSteps int
	lastStepAt    time.Time

	cadence int
}

func NewStepCadenceEstimator(cfg Config, mode Mode) *StepCadenceEstimator {
	return &StepCadenceEstimator{
		cfg:        cfg,
		mode:       mode,
		magnitudes: make([]float64, 0, cfg.AccelBufferSize),
		directions: make([][3]float64, 0, cfg.DirectionBufferSize),
	}
}

// Sample consumes one accelerometer sample and reports whether it registered
// a step. activeSeconds is the session's elapsed active duration, which feeds
// the slow time-varying threshold term.
func (e *StepCadenceEstimator) Sample(s AccelSample, moving bool, activeSeconds int) bool {
	if !e.mode.OnFoot() {
		return false
	}

	mag := math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)

	e.magnitudes = append(e.magnitudes, mag)
	if len(e.magnitudes) > e.cfg.AccelBufferSize {
		e.magnitudes = e.magnitudes[1:]
	}

	jerk := e.observeDirection(s)

	mean := stat.Mean(e.magnitudes, nil)
	var sd float64
	if len(e.magnitudes) > 1 {
		sd = stat.StdDev(e.magnitudes, nil)
	}
	threshold := e.cfg.BaseStepThreshold +
		0.1*math.Sin(float64(activeSeconds)/5) +
		e.cfg.StdDevGain*sd

	if mean <= threshold || mag <= e.cfg.MinStepMagnitude {
		return false
	}
	if s.RecordedAt.Sub(e.lastStepAt) <= e.cfg.StepDebounce {
		return false
	}
	if !moving || jerk > e.cfg.MaxStepJerk {
		return false
	}

	e.lastStepAt = s.RecordedAt
	e.accelSteps++
	return true
}

// observeDirection records the raw acceleration vector and returns the jerk:
// the magnitude of the change from the previous vector.
func (e *StepCadenceEstimator) observeDirection(s AccelSample) float64 {
	cur := [3]float64{s.X, s.Y, s.Z}

	var jerk float64
	if n := len(e.directions); n > 0 {
		prev := e.directions[n-1]
		dx := cur[0] - prev[0]
		dy := cur[1] - prev[1]
		dz := cur[2] - prev[2]
		jerk = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	e.directions = append(e.directions, cur)
	if len(e.directions) > e.cfg.DirectionBufferSize {
		e.directions = e.directions[1:]
	}
	return jerk
}

// Advance feeds a classified distance increment into the distance-derived
// step fallback. Increments are ignored for fixes that moved further than
// MaxStepFixMeters and capped at MaxStepsPerFix per call.
func (e *StepCadenceEstimator) Advance(deltaKm float64, moving bool) {
	if !e.mode.OnFoot() || !moving {
		return
	}
	if deltaKm*1000 > e.cfg.MaxStepFixMeters {
		return
	}
	delta := int(math.Round(deltaKm * e.cfg.StepsPerKm))
	if delta > e.cfg.MaxStepsPerFix {
		delta = e.cfg.MaxStepsPerFix
	}
	e.distanceSteps += delta
}

// UpdateCadence derives the bike-mode cadence proxy from smoothed speed.
func (e *StepCadenceEstimator) UpdateCadence(smoothedKmh float64) int {
	if e.mode.OnFoot() {
		return 0
	}
	if smoothedKmh < 0 {
		smoothedKmh = 0
	}
	e.cadence = int(math.Round(smoothedKmh * e.cfg.CadenceFactor))
	return e.cadence
}

// Steps returns the fused step count: the larger of the accelerometer-derived
// and distance-derived counts.
func (e *StepCadenceEstimator) Steps() int {
	if e.distanceSteps > e.accelSteps {
		return e.distanceSteps
	}
	return e.accelSteps
}

func (e *StepCadenceEstimator) Cadence() int { return e.cadence }

// Reset clears all estimator state for a new session.
func (e *StepCadenceEstimator) Reset() {
	e.magnitudes = e.magnitudes[:0]
	e.directions = e.directions[:0]
	e.accelSteps = 0
	e.distanceSteps = 0
	e.lastStepAt = time.Time{}
	e.cadence = 0
}
