package workout

import "time"

// Record is the persisted shape of one completed workout. Exactly one of
// UserID/GuestID identifies the owner; guest records can later be merged
// into an account.
type Record struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	GuestID      string    `json:"guest_id,omitempty"`
	Type         string    `json:"type"`
	DurationSec  int       `json:"duration_sec"`
	DistanceKm   float64   `json:"distance_km"`
	Steps        int       `json:"steps"`
	CadenceRpm   *int      `json:"cadence_rpm,omitempty"`
	CaloriesKcal int       `json:"calories_kcal"`
	AvgSpeedKmh  float64   `json:"avg_speed_kmh"`
	MaxSpeedKmh  float64   `json:"max_speed_kmh"`
	FluidLossL   float64   `json:"fluid_loss_l"`
	CreatedAt    time.Time `json:"created_at"`
}

type StartRequest struct {
	Type string `json:"type"`
}

type MergeRequest struct {
	GuestID string `json:"guest_id"`
}

type SessionResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	UserID  string `json:"user_id,omitempty"`
	GuestID string `json:"guest_id,omitempty"`
}
