// Package motion implements the real-time motion-state estimation pipeline:
// GPS smoothing, movement classification, distance/speed accumulation, step
// and cadence estimation, and the per-session aggregation of all of them.
package motion

import "time"

type Mode string

const (
	ModeRunning Mode = "running"
	ModeWalking Mode = "walking"
	ModeBike    Mode = "bike"
	ModeOther   Mode = "other"
)

// OnFoot reports whether the mode counts physical steps. Bike sessions
// derive a cadence proxy from speed instead.
func (m Mode) OnFoot() bool {
	return m != ModeBike
}

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeRunning, ModeWalking, ModeBike, ModeOther:
		return Mode(s), true
	}
	return "", false
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RawFix is one raw location sample as delivered by a location source.
// SpeedKmh is the device-reported GPS speed; zero when the device did not
// report one.
type RawFix struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SpeedKmh   float64   `json:"speed_kmh"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AccelSample is one raw accelerometer sample in g units per axis.
type AccelSample struct {
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Z          float64   `json:"z"`
	RecordedAt time.Time `json:"recorded_at"`
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhaseActive
	PhasePaused
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseStopped:
		return "stopped"
	}
	return "idle"
}

// Snapshot is the read-only state published after every accepted fix,
// sample or clock tick.
type Snapshot struct {
	Phase       string    `json:"phase"`
	Countdown   int       `json:"countdown,omitempty"`
	Location    *GeoPoint `json:"location,omitempty"`
	DistanceKm  float64   `json:"distance_km"`
	SpeedKmh    float64   `json:"speed_kmh"`
	Steps       int       `json:"steps"`
	CadenceRpm  int       `json:"cadence_rpm"`
	DurationSec int       `json:"duration_sec"`
}

// Summary is the frozen result of one completed session.
type Summary struct {
	Mode         Mode
	DurationSec  int
	DistanceKm   float64
	Steps        int
	CadenceRpm   int
	CaloriesKcal int
	AvgSpeedKmh  float64
	MaxSpeedKmh  float64
	FluidLossL   float64
}

// Config tunes the estimation pipeline. Defaults reproduce the behavior the
// mobile clients were calibrated against.
type Config struct {
	// GeoFilter gain inputs; equal values yield a 0.5 fixed gain.
	ProcessNoise     float64
	MeasurementNoise float64

	// Largest plausible displacement between two consecutive fixes. Anything
	// beyond it is treated as a GPS teleport and contributes zero distance.
	MaxJumpKm float64

	// Movement classification.
	RecentDistanceSize int
	MinThresholdKm     float64
	MaxThresholdKm     float64
	SpeedThresholdKmh  float64
	StopTimeout        time.Duration

	// Speed smoothing.
	SpeedBufferSize int
	MaxSpeedJumpKmh float64

	// Step detection.
	AccelBufferSize     int
	DirectionBufferSize int
	BaseStepThreshold   float64
	StdDevGain          float64
	MinStepMagnitude    float64
	MaxStepJerk         float64
	StepDebounce        time.Duration
	StepsPerKm          float64
	MaxStepsPerFix      int
	MaxStepFixMeters    float64

	// Session lifecycle.
	CountdownSec  int
	TickInterval  time.Duration
	CadenceFactor float64

	// Summary derivation.
	CaloriesPerKm     float64
	FluidLossLPerHour float64
}

func DefaultConfig() Config {
	return Config{
		ProcessNoise:     0.0001,
		MeasurementNoise: 0.0001,

		MaxJumpKm: 0.05,

		RecentDistanceSize: 3,
		MinThresholdKm:     0.001,
		MaxThresholdKm:     0.01,
		SpeedThresholdKmh:  0.5,
		StopTimeout:        3 * time.Second,

		SpeedBufferSize: 5,
		MaxSpeedJumpKmh: 10,

		AccelBufferSize:     5,
		DirectionBufferSize: 5,
		BaseStepThreshold:   1.0,
		StdDevGain:          0.1,
		MinStepMagnitude:    1.05,
		MaxStepJerk:         1.2,
		StepDebounce:        300 * time.Millisecond,
		StepsPerKm:          1300,
		MaxStepsPerFix:      4,
		MaxStepFixMeters:    5,

		CountdownSec:  3,
		TickInterval:  time.Second,
		CadenceFactor: 2,

		CaloriesPerKm:     60,
		FluidLossLPerHour: 0.7,
	}
}
