package workout

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"backend-fittrack/internal/motion"
	"backend-fittrack/internal/stream"

	"github.com/google/uuid"
)

// Saver is the persistence sink a completed session's record goes to.
type Saver interface {
	Save(ctx context.Context, rec Record) (Record, error)
}

// ErrSessionNotFound is returned for operations on unknown or already
// stopped sessions.
var ErrSessionNotFound = errors.New("session not found")

// LiveSession is one in-flight workout: its tracker plus the push sources
// the ingest handlers feed.
type LiveSession struct {
	ID        string
	UserID    string
	GuestID   string
	Mode      motion.Mode
	StartedAt time.Time

	tracker *motion.Tracker
	fixes   *motion.PushFixSource
	accel   *motion.PushAccelSource
}

// Manager owns all live sessions on this instance. Each session runs its own
// tracker; the manager routes ingested sensor events to it, relays published
// snapshots to the stream hub, and hands the final record to the saver when
// the session stops.
type Manager struct {
	cfg   motion.Config
	saver Saver
	hub   *stream.Hub

	mu       sync.Mutex
	sessions map[string]*LiveSession
}

func NewManager(cfg motion.Config, saver Saver, hub *stream.Hub) *Manager {
	return &Manager{
		cfg:      cfg,
		saver:    saver,
		hub:      hub,
		sessions: map[string]*LiveSession{},
	}
}

// Start opens a new session for the given owner and begins tracking.
func (m *Manager) Start(ctx context.Context, userID, guestID string, mode motion.Mode) (*LiveSession, error) {
	id := uuid.NewString()

	fixes := motion.NewPushFixSource()
	accel := motion.NewPushAccelSource()

	publish := func(snap motion.Snapshot) {
		if m.hub != nil {
			m.hub.PublishJSON(id, snap)
		}
	}

	session := &LiveSession{
		ID:        id,
		UserID:    userID,
		GuestID:   guestID,
		Mode:      mode,
		StartedAt: time.Now(),
		tracker:   motion.NewTracker(m.cfg, mode, fixes, accel, publish),
		fixes:     fixes,
		accel:     accel,
	}

	if err := session.tracker.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	return session, nil
}

func (m *Manager) get(id string) (*LiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// IngestFix hands one raw GPS fix to a session's location source.
func (m *Manager) IngestFix(id string, fix motion.RawFix) error {
	session, err := m.get(id)
	if err != nil {
		return err
	}
	session.fixes.Offer(fix)
	return nil
}

// IngestAccel hands a batch of accelerometer samples to a session.
func (m *Manager) IngestAccel(id string, samples []motion.AccelSample) error {
	session, err := m.get(id)
	if err != nil {
		return err
	}
	for _, s := range samples {
		session.accel.Offer(s)
	}
	return nil
}

func (m *Manager) Pause(id string) (motion.Snapshot, error) {
	session, err := m.get(id)
	if err != nil {
		return motion.Snapshot{}, err
	}
	session.tracker.Pause()
	return session.tracker.Snapshot(), nil
}

func (m *Manager) Resume(id string) (motion.Snapshot, error) {
	session, err := m.get(id)
	if err != nil {
		return motion.Snapshot{}, err
	}
	session.tracker.Resume()
	return session.tracker.Snapshot(), nil
}

func (m *Manager) Snapshot(id string) (motion.Snapshot, error) {
	session, err := m.get(id)
	if err != nil {
		return motion.Snapshot{}, err
	}
	return session.tracker.Snapshot(), nil
}

// Stop ends a session and persists its record. Sensor teardown and session
// removal happen regardless of the save outcome; a failed save is logged and
// the record is still returned. Stopping an unknown id returns
// ErrSessionNotFound, which makes a repeated stop harmless.
func (m *Manager) Stop(ctx context.Context, id string) (Record, error) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return Record{}, ErrSessionNotFound
	}

	summary, stopped := session.tracker.Stop()
	if !stopped {
		return Record{}, ErrSessionNotFound
	}

	rec := recordFromSummary(session, summary)
	if m.saver == nil {
		return rec, nil
	}

	saved, err := m.saver.Save(ctx, rec)
	if err != nil {
		log.Printf("workout save failed for session %s: %v", id, err)
		return rec, nil
	}
	return saved, nil
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func recordFromSummary(session *LiveSession, summary motion.Summary) Record {
	rec := Record{
		ID:           uuid.NewString(),
		UserID:       session.UserID,
		GuestID:      session.GuestID,
		Type:         string(summary.Mode),
		DurationSec:  summary.DurationSec,
		DistanceKm:   summary.DistanceKm,
		Steps:        summary.Steps,
		CaloriesKcal: summary.CaloriesKcal,
		AvgSpeedKmh:  roundTo(summary.AvgSpeedKmh, 2),
		MaxSpeedKmh:  roundTo(summary.MaxSpeedKmh, 2),
		FluidLossL:   summary.FluidLossL,
	}
	if !summary.Mode.OnFoot() {
		cadence := summary.CadenceRpm
		rec.CadenceRpm = &cadence
	}
	return rec
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
