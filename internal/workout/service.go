package workout

import (
	"context"
	"errors"

	"backend-fittrack/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Save inserts one completed workout record. The record is immutable once
// written.
func (s *Service) Save(ctx context.Context, rec Record) (Record, error) {
	if s.db == nil {
		return Record{}, errors.New("database unavailable")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO workouts (id, user_id, guest_id, type, duration_sec, distance_km, steps, cadence_rpm, calories_kcal, avg_speed_kmh, max_speed_kmh, fluid_loss_l)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`, rec.ID, rec.UserID, rec.GuestID, rec.Type, rec.DurationSec, rec.DistanceKm, rec.Steps, rec.CadenceRpm, rec.CaloriesKcal, rec.AvgSpeedKmh, rec.MaxSpeedKmh, rec.FluidLossL)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// History lists workouts for an owner, newest first. An authenticated user
// also sees records still attached to their guest id.
func (s *Service) History(ctx context.Context, userID, guestID string) ([]Record, error) {
	if s.db == nil {
		return nil, errors.New("database unavailable")
	}
	if userID == "" && guestID == "" {
		return nil, errors.New("owner required")
	}

	const columns = `
		SELECT id, COALESCE(user_id,''), COALESCE(guest_id,''), type, duration_sec, distance_km, steps, cadence_rpm, calories_kcal, avg_speed_kmh, max_speed_kmh, fluid_loss_l, created_at
		FROM workouts`

	var (
		query string
		args  []any
	)
	if userID != "" {
		query = columns + `
		WHERE user_id=$1 OR guest_id=NULLIF($2,'')
		ORDER BY created_at DESC`
		args = []any{userID, guestID}
	} else {
		query = columns + `
		WHERE guest_id=$1
		ORDER BY created_at DESC`
		args = []any{guestID}
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.GuestID, &rec.Type, &rec.DurationSec, &rec.DistanceKm, &rec.Steps, &rec.CadenceRpm, &rec.CaloriesKcal, &rec.AvgSpeedKmh, &rec.MaxSpeedKmh, &rec.FluidLossL, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns one workout by id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	if s.db == nil {
		return Record{}, errors.New("database unavailable")
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, COALESCE(user_id,''), COALESCE(guest_id,''), type, duration_sec, distance_km, steps, cadence_rpm, calories_kcal, avg_speed_kmh, max_speed_kmh, fluid_loss_l, created_at
		FROM workouts WHERE id=$1
	`, id)

	var rec Record
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.GuestID, &rec.Type, &rec.DurationSec, &rec.DistanceKm, &rec.Steps, &rec.CadenceRpm, &rec.CaloriesKcal, &rec.AvgSpeedKmh, &rec.MaxSpeedKmh, &rec.FluidLossL, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// MergeGuest reassigns all workouts recorded under a guest id to the given
// account and reports how many records moved.
func (s *Service) MergeGuest(ctx context.Context, userID, guestID string) (int64, error) {
	if s.db == nil {
		return 0, errors.New("database unavailable")
	}
	if userID == "" || guestID == "" {
		return 0, errors.New("user_id and guest_id required")
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE workouts
		SET user_id=$1, guest_id=NULL
		WHERE guest_id=$2
	`, userID, guestID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
