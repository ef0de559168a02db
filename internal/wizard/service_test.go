package wizard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"buildmarket/project-wizard/wizard-backend/internal/realtime"
	"buildmarket/project-wizard/wizard-backend/internal/receipts"
)

type fakeViews struct {
	mu       sync.Mutex
	messages map[string][]realtime.Message
	closed   []string
}

func newFakeViews() *fakeViews {
	return &fakeViews{messages: make(map[string][]realtime.Message)}
}

func (f *fakeViews) SendToSession(sessionID string, message realtime.Message) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[sessionID] = append(f.messages[sessionID], message)
	return 1
}

func (f *fakeViews) CloseSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, sessionID)
}

func (f *fakeViews) HandleConnection(w http.ResponseWriter, r *http.Request, sessionID string) (*realtime.Connection, error) {
	return nil, errors.New("not supported")
}

func (f *fakeViews) types(sessionID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.messages[sessionID] {
		out = append(out, m.Type)
	}
	return out
}

func TestService_EventsReachViews(t *testing.T) {
	views := newFakeViews()
	svc := NewService(NewRegistry(time.Hour, zap.NewNop()), Dependencies{}, views)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "alice")
	require.NoError(t, err)

	session.Controller.Update(validBasics())
	_, err = session.Controller.Continue(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{string(EventScrollTop)}, views.types(session.ID.String()))

	require.NoError(t, svc.DeleteSession(ctx, session.ID, "alice"))
	assert.Equal(t, []string{session.ID.String()}, views.closed)
}

func TestService_GetSession(t *testing.T) {
	svc := NewService(NewRegistry(time.Hour, zap.NewNop()), Dependencies{}, nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "alice")
	require.NoError(t, err)

	got, err := svc.GetSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = svc.GetSession(ctx, session.ID, "bob")
	assert.ErrorIs(t, err, ErrSessionForbidden)
}

func TestService_ListSubmissions(t *testing.T) {
	repo := new(MockReceipts)
	repo.On("ListByUser", context.Background(), "alice", defaultSubmissionLimit).
		Return([]receipts.Receipt{{ProjectID: "p1"}}, nil)

	svc := NewService(NewRegistry(time.Hour, zap.NewNop()), Dependencies{Receipts: repo}, nil)

	out, err := svc.ListSubmissions(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	repo.AssertExpectations(t)

	noRepo := NewService(NewRegistry(time.Hour, zap.NewNop()), Dependencies{}, nil)
	out, err = noRepo.ListSubmissions(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestService_AttachViewChecksOwnership(t *testing.T) {
	svc := NewService(NewRegistry(time.Hour, zap.NewNop()), Dependencies{}, newFakeViews())
	session, err := svc.CreateSession(context.Background(), "alice")
	require.NoError(t, err)

	err = svc.AttachView(nil, nil, session.ID, "bob")
	assert.ErrorIs(t, err, ErrSessionForbidden)
}

func TestService_AttachViewWithoutViews(t *testing.T) {
	svc := NewService(NewRegistry(time.Hour, zap.NewNop()), Dependencies{}, nil)
	session, err := svc.CreateSession(context.Background(), "alice")
	require.NoError(t, err)

	err = svc.AttachView(nil, nil, session.ID, "alice")
	assert.ErrorIs(t, err, ErrViewsUnavailable)
}
