package motion

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"backend-fittrack/internal/shared/geo"
)

// Classification is the per-fix verdict of the MotionClassifier.
type Classification struct {
	// DeltaKm is the displacement since the previous fix, clamped to zero
	// when it exceeds the plausible-jump limit.
	DeltaKm float64
	// DeltaSeconds is the elapsed time since the previous fix, floored to a
	// small epsilon so downstream rates never divide by zero.
	DeltaSeconds float64
	Moving       bool
	// StopExceeded is set once the user has been stationary longer than the
	// stop timeout; the accumulator uses it to force speed to zero.
	StopExceeded bool
}

// MotionClassifier decides whether the user is moving from consecutive
// smoothed fixes. The threshold adapts to recent GPS noise: a fix counts as
// motion when its displacement exceeds twice the recent average (bounded to
// [MinThresholdKm, MaxThresholdKm]) or when the device-reported speed is at
// or above SpeedThresholdKmh. Either condition alone suffices.
type MotionClassifier struct {
	cfg Config

	lastPoint GeoPoint
	lastAt    time.Time
	primed    bool

	recent    []float64
	stopSince time.Time
}

func NewMotionClassifier(cfg Config) *MotionClassifier {
	return &MotionClassifier{
		cfg:    cfg,
		recent: make([]float64, 0, cfg.RecentDistanceSize),
	}
}

// Classify consumes one smoothed fix. The first fix only primes the
// classifier; ok is false until a previous fix exists.
func (c *MotionClassifier) Classify(p GeoPoint, now time.Time, reportedKmh float64) (Classification, bool) {
	if !c.primed {
		c.lastPoint = p
		c.lastAt = now
		c.primed = true
		return Classification{}, false
	}

	deltaKm := geo.HaversineKm(c.lastPoint.Latitude, c.lastPoint.Longitude, p.Latitude, p.Longitude)
	if deltaKm > c.cfg.MaxJumpKm {
		deltaKm = 0
	}

	c.recent = append(c.recent, deltaKm)
	if len(c.recent) > c.cfg.RecentDistanceSize {
		c.recent = c.recent[1:]
	}
	avg := stat.Mean(c.recent, nil)

	threshold := avg * 2
	if threshold < c.cfg.MinThresholdKm {
		threshold = c.cfg.MinThresholdKm
	}
	if threshold > c.cfg.MaxThresholdKm {
		threshold = c.cfg.MaxThresholdKm
	}

	moving := deltaKm > threshold || reportedKmh >= c.cfg.SpeedThresholdKmh

	var stopExceeded bool
	if !moving && reportedKmh < c.cfg.SpeedThresholdKmh {
		if c.stopSince.IsZero() {
			c.stopSince = now
		}
		stopExceeded = now.Sub(c.stopSince) > c.cfg.StopTimeout
	} else {
		c.stopSince = time.Time{}
	}

	deltaSec := now.Sub(c.lastAt).Seconds()
	if deltaSec < 0.001 {
		deltaSec = 0.001
	}

	c.lastPoint = p
	c.lastAt = now

	return Classification{
		DeltaKm:      deltaKm,
		DeltaSeconds: deltaSec,
		Moving:       moving,
		StopExceeded: stopExceeded,
	}, true
}

// Observe updates the reference point without classifying, for fixes that
// arrive while metrics are gated off (countdown, pause).
func (c *MotionClassifier) Observe(p GeoPoint, now time.Time) {
	c.lastPoint = p
	c.lastAt = now
	c.primed = true
}

// Reset clears all classifier state for a new session.
func (c *MotionClassifier) Reset() {
	c.primed = false
	c.recent = c.recent[:0]
	c.stopSince = time.Time{}
}
