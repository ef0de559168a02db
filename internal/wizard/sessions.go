package wizard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound  = errors.New("wizard session not found")
	ErrSessionForbidden = errors.New("wizard session belongs to another user")
)

// Session is one live wizard with its owner.
type Session struct {
	ID         uuid.UUID
	UserID     string
	CreatedAt  time.Time
	Controller *Controller

	mu         sync.Mutex
	lastActive time.Time
}

// LastActive returns the time of the last access
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

// Registry keeps the live sessions in memory. Nothing is persisted: a
// session that is swept or deleted is gone.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	idleTTL  time.Duration
	now      func() time.Time
	onEvict  func(id uuid.UUID)
	logger   *zap.Logger

	cron    *cron.Cron
	running bool
}

// NewRegistry creates a registry that evicts sessions idle for longer than idleTTL.
func NewRegistry(idleTTL time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		idleTTL:  idleTTL,
		now:      time.Now,
		onEvict:  func(uuid.UUID) {},
		logger:   logger,
	}
}

// OnEvict registers a callback run after a session is removed.
func (r *Registry) OnEvict(fn func(id uuid.UUID)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Add registers a session
func (r *Registry) Add(s *Session) {
	now := r.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Get returns the session if it exists and belongs to userID.
func (r *Registry) Get(id uuid.UUID, userID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	if s.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionForbidden)
	}
	s.touch(r.now())
	return s, nil
}

// Remove deletes a session owned by userID
func (r *Registry) Remove(id uuid.UUID, userID string) error {
	if _, err := r.Get(id, userID); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.sessions, id)
	evict := r.onEvict
	r.mu.Unlock()

	evict(id)
	return nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var expired []uuid.UUID
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	evict := r.onEvict
	r.mu.Unlock()

	for _, id := range expired {
		evict(id)
	}
	if len(expired) > 0 {
		r.logger.Info("Swept idle wizard sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// StartSweeper runs Sweep on a cron schedule such as "@every 1m".
func (r *Registry) StartSweeper(schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("sweeper already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()

	r.cron = c
	r.running = true
	r.logger.Info("Session sweeper started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (r *Registry) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	c := r.cron
	r.running = false
	r.cron = nil
	r.mu.Unlock()

	ctx := c.Stop()
	<-ctx.Done()
}
