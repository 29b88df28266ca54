package motion

import "sort"

// SpeedReading is the output of one accumulation step.
type SpeedReading struct {
	DistanceKm  float64
	InstantKmh  float64
	SmoothedKmh float64
}

// DistanceSpeedAccumulator integrates moving displacement into cumulative
// distance and smooths instantaneous speed over a bounded buffer. Distance
// only ever grows. Speed samples that jump more than MaxSpeedJumpKmh from the
// previous buffered sample are treated as sensor noise and replaced by that
// previous sample. The published speed is the median of the buffer, read as
// zero below the movement threshold or after a stop timeout.
type DistanceSpeedAccumulator struct {
	cfg Config

	distanceKm float64
	buffer     []float64
	smoothed   float64
	maxKmh     float64
}

func NewDistanceSpeedAccumulator(cfg Config) *DistanceSpeedAccumulator {
	return &DistanceSpeedAccumulator{
		cfg:    cfg,
		buffer: make([]float64, 0, cfg.SpeedBufferSize),
	}
}

func (a *DistanceSpeedAccumulator) Accumulate(cl Classification, reportedKmh float64) SpeedReading {
	if !cl.Moving {
		if cl.StopExceeded {
			a.smoothed = 0
		}
		return SpeedReading{DistanceKm: a.distanceKm, SmoothedKmh: a.smoothed}
	}

	// Larger of dead-reckoned and device-reported speed; dead reckoning
	// alone undercounts on sparse ticks.
	instant := cl.DeltaKm / cl.DeltaSeconds * 3600
	if reportedKmh > instant {
		instant = reportedKmh
	}

	var last float64
	if len(a.buffer) > 0 {
		last = a.buffer[len(a.buffer)-1]
	}
	accepted := instant
	if abs(instant-last) > a.cfg.MaxSpeedJumpKmh {
		accepted = last
	}

	a.buffer = append(a.buffer, accepted)
	if len(a.buffer) > a.cfg.SpeedBufferSize {
		a.buffer = a.buffer[1:]
	}

	a.smoothed = median(a.buffer)
	if a.smoothed < a.cfg.SpeedThresholdKmh {
		a.smoothed = 0
	}
	if a.smoothed > a.maxKmh {
		a.maxKmh = a.smoothed
	}

	a.distanceKm += cl.DeltaKm

	return SpeedReading{
		DistanceKm:  a.distanceKm,
		InstantKmh:  instant,
		SmoothedKmh: a.smoothed,
	}
}

func (a *DistanceSpeedAccumulator) DistanceKm() float64 { return a.distanceKm }

func (a *DistanceSpeedAccumulator) SmoothedKmh() float64 { return a.smoothed }

func (a *DistanceSpeedAccumulator) MaxKmh() float64 { return a.maxKmh }

// Reset clears all accumulated state for a new session.
func (a *DistanceSpeedAccumulator) Reset() {
	a.distanceKm = 0
	a.buffer = a.buffer[:0]
	a.smoothed = 0
	a.maxKmh = 0
}

func median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
