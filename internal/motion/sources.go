package motion

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FixSource delivers raw location fixes.
type FixSource interface {
	// RequestPermission asks for location access; a non-nil error means
	// tracking must not start.
	RequestPermission(ctx context.Context) error
	// Current returns a one-shot fix. Failures here are non-fatal; the
	// continuous subscription is still attempted.
	Current(ctx context.Context) (RawFix, error)
	// Subscribe starts a continuous fix stream at roughly the given
	// interval. The returned func cancels the subscription and closes the
	// channel.
	Subscribe(ctx context.Context, interval time.Duration) (<-chan RawFix, func(), error)
}

// AccelSource delivers raw accelerometer samples.
type AccelSource interface {
	Subscribe(ctx context.Context, interval time.Duration) (<-chan AccelSample, func(), error)
}

// ErrNoFix is returned by Current when no fix has been observed yet.
var ErrNoFix = errors.New("no fix available")

// PushFixSource is a FixSource fed by external callers (e.g. an HTTP ingest
// handler pushing fixes reported by a phone). Offer never blocks; when a
// subscriber lags, the newest fix wins and the backlog is dropped.
type PushFixSource struct {
	mu     sync.Mutex
	ch     chan RawFix
	last   RawFix
	seen   bool
	closed bool
}

func NewPushFixSource() *PushFixSource {
	return &PushFixSource{}
}

func (s *PushFixSource) RequestPermission(_ context.Context) error { return nil }

func (s *PushFixSource) Current(_ context.Context) (RawFix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seen {
		return RawFix{}, ErrNoFix
	}
	return s.last, nil
}

func (s *PushFixSource) Subscribe(_ context.Context, _ time.Duration) (<-chan RawFix, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		return nil, nil, errors.New("already subscribed")
	}
	ch := make(chan RawFix, 16)
	s.ch = ch
	s.closed = false
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ch == ch && !s.closed {
			close(ch)
			s.closed = true
			s.ch = nil
		}
	}
	return ch, cancel, nil
}

// Offer hands one fix to the current subscriber, if any. It never blocks the
// caller.
func (s *PushFixSource) Offer(f RawFix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = f
	s.seen = true
	if s.ch == nil || s.closed {
		return
	}
	select {
	case s.ch <- f:
	default:
	}
}

// PushAccelSource is the accelerometer counterpart of PushFixSource.
type PushAccelSource struct {
	mu     sync.Mutex
	ch     chan AccelSample
	closed bool
}

func NewPushAccelSource() *PushAccelSource {
	return &PushAccelSource{}
}

func (s *PushAccelSource) Subscribe(_ context.Context, _ time.Duration) (<-chan AccelSample, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		return nil, nil, errors.New("already subscribed")
	}
	ch := make(chan AccelSample, 64)
	s.ch = ch
	s.closed = false
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ch == ch && !s.closed {
			close(ch)
			s.closed = true
			s.ch = nil
		}
	}
	return ch, cancel, nil
}

func (s *PushAccelSource) Offer(sample AccelSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil || s.closed {
		return
	}
	select {
	case s.ch <- sample:
	default:
	}
}
