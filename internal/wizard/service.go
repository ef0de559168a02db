package wizard

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"buildmarket/project-wizard/wizard-backend/internal/realtime"
	"buildmarket/project-wizard/wizard-backend/internal/receipts"
)

const defaultSubmissionLimit = 50

// ErrViewsUnavailable is returned by AttachView when no realtime manager is configured.
var ErrViewsUnavailable = errors.New("realtime views are not enabled")

// ViewBroadcaster delivers session events to the attached browser views.
type ViewBroadcaster interface {
	SendToSession(sessionID string, message realtime.Message) int
	CloseSession(sessionID string)
	HandleConnection(w http.ResponseWriter, r *http.Request, sessionID string) (*realtime.Connection, error)
}

// Service manages wizard sessions for the HTTP layer
type Service interface {
	CreateSession(ctx context.Context, userID string) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID, userID string) (*Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID, userID string) error
	ListSubmissions(ctx context.Context, userID string, limit int) ([]receipts.Receipt, error)
	AttachView(w http.ResponseWriter, r *http.Request, id uuid.UUID, userID string) error
}

type wizardService struct {
	registry *Registry
	deps     Dependencies
	views    ViewBroadcaster
	logger   *zap.Logger
}

// NewService creates the session service. views may be nil, in which case
// events are dropped and AttachView fails.
func NewService(registry *Registry, deps Dependencies, views ViewBroadcaster) Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &wizardService{
		registry: registry,
		deps:     deps,
		views:    views,
		logger:   logger,
	}
	if views != nil {
		registry.OnEvict(func(id uuid.UUID) {
			views.CloseSession(id.String())
		})
	}
	return s
}

func (s *wizardService) CreateSession(ctx context.Context, userID string) (*Session, error) {
	id := uuid.New()
	session := &Session{
		ID:         id,
		UserID:     userID,
		Controller: NewController(id, userID, s.deps, s.notifierFor(id)),
	}
	s.registry.Add(session)

	s.logger.Info("Wizard session created",
		zap.String("session_id", id.String()),
		zap.String("user_id", userID))
	return session, nil
}

func (s *wizardService) GetSession(ctx context.Context, id uuid.UUID, userID string) (*Session, error) {
	return s.registry.Get(id, userID)
}

func (s *wizardService) DeleteSession(ctx context.Context, id uuid.UUID, userID string) error {
	if err := s.registry.Remove(id, userID); err != nil {
		return err
	}
	s.logger.Info("Wizard session deleted", zap.String("session_id", id.String()))
	return nil
}

func (s *wizardService) ListSubmissions(ctx context.Context, userID string, limit int) ([]receipts.Receipt, error) {
	if s.deps.Receipts == nil {
		return []receipts.Receipt{}, nil
	}
	if limit <= 0 || limit > defaultSubmissionLimit {
		limit = defaultSubmissionLimit
	}
	out, err := s.deps.Receipts.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return out, nil
}

func (s *wizardService) AttachView(w http.ResponseWriter, r *http.Request, id uuid.UUID, userID string) error {
	if _, err := s.registry.Get(id, userID); err != nil {
		return err
	}
	if s.views == nil {
		return ErrViewsUnavailable
	}
	_, err := s.views.HandleConnection(w, r, id.String())
	return err
}

func (s *wizardService) notifierFor(id uuid.UUID) Notifier {
	if s.views == nil {
		return nopNotifier{}
	}
	sessionID := id.String()
	return NotifierFunc(func(e Event) {
		s.views.SendToSession(sessionID, realtime.Message{
			Type: string(e.Type),
			Data: e,
		})
	})
}
