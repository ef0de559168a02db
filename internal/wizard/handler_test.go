package wizard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"buildmarket/project-wizard/wizard-backend/internal/auth"
	"buildmarket/project-wizard/wizard-backend/internal/projectapi"
	"buildmarket/project-wizard/wizard-backend/internal/receipts"
)

const handlerSecret = "handler-secret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, deps Dependencies) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps.Logger = zap.NewNop()
	service := NewService(NewRegistry(time.Hour, zap.NewNop()), deps, nil)
	handler := NewHandler(service, zap.NewNop())

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(auth.Middleware(auth.NewVerifier(handlerSecret), zap.NewNop()))
	handler.RegisterRoutes(api)

	return &testServer{t: t, router: router}
}

func (s *testServer) do(user, method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   user,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString([]byte(handlerSecret))
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createSession(user string) string {
	s.t.Helper()
	w := s.do(user, http.MethodPost, "/api/v1/wizard/sessions", nil)
	require.Equal(s.t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.t, 1, resp.State.CurrentStep)
	assert.Len(s.t, resp.Progress.Markers, TotalSteps)
	return resp.ID.String()
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) State {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.State
}

func TestHandler_ValidationScenario(t *testing.T) {
	srv := newTestServer(t, Dependencies{})
	id := srv.createSession("alice")
	base := "/api/v1/wizard/sessions/" + id

	w := srv.do("alice", http.MethodPost, base+"/continue", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var invalid struct {
		FieldErrors map[string]string `json:"fieldErrors"`
		State       State             `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invalid))
	assert.Contains(t, invalid.FieldErrors, "basics.projectType")
	assert.Equal(t, 1, invalid.State.CurrentStep)

	w = srv.do("alice", http.MethodPatch, base+"/draft", map[string]interface{}{
		"basics": map[string]interface{}{"projectType": "single-family", "squareFootage": 2200},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "single-family", decodeState(t, w).Draft.Basics.ProjectType)

	w = srv.do("alice", http.MethodPost, base+"/continue", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ok struct {
		Outcome  Outcome  `json:"outcome"`
		Progress Progress `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Outcome.Advanced)
	assert.Equal(t, 2, ok.Outcome.State.CurrentStep)
	assert.Equal(t, MarkerCompleted, ok.Progress.Markers[0].State)
}

func TestHandler_Navigation(t *testing.T) {
	srv := newTestServer(t, Dependencies{})
	id := srv.createSession("alice")
	base := "/api/v1/wizard/sessions/" + id

	srv.do("alice", http.MethodPatch, base+"/draft", completeDraft())
	srv.do("alice", http.MethodPost, base+"/continue", nil)
	srv.do("alice", http.MethodPost, base+"/continue", nil)

	w := srv.do("alice", http.MethodPost, base+"/back", nil)
	assert.Equal(t, 2, decodeState(t, w).CurrentStep)

	w = srv.do("alice", http.MethodPost, base+"/goto/5", nil)
	assert.Equal(t, 2, decodeState(t, w).CurrentStep)

	w = srv.do("alice", http.MethodPost, base+"/goto/3", nil)
	assert.Equal(t, 3, decodeState(t, w).CurrentStep)

	w = srv.do("alice", http.MethodPost, base+"/goto/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do("alice", http.MethodPost, base+"/reset", nil)
	st := decodeState(t, w)
	assert.Equal(t, 1, st.CurrentStep)
	assert.Equal(t, "", st.Draft.Basics.ProjectType)
}

func TestHandler_SessionAccess(t *testing.T) {
	srv := newTestServer(t, Dependencies{})
	id := srv.createSession("alice")

	w := srv.do("bob", http.MethodGet, "/api/v1/wizard/sessions/"+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do("alice", http.MethodGet, "/api/v1/wizard/sessions/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do("alice", http.MethodGet, "/api/v1/wizard/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do("", http.MethodGet, "/api/v1/wizard/sessions/"+id, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do("alice", http.MethodDelete, "/api/v1/wizard/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do("alice", http.MethodGet, "/api/v1/wizard/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_PreviewAndOptimizations(t *testing.T) {
	srv := newTestServer(t, Dependencies{})
	id := srv.createSession("alice")
	base := "/api/v1/wizard/sessions/" + id

	w := srv.do("alice", http.MethodGet, base+"/optimizations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var opts struct {
		Optimizations []string `json:"optimizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Equal(t, DefaultOptimizations, opts.Optimizations)

	w = srv.do("alice", http.MethodGet, base+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"description": ""}`, w.Body.String())

	w = srv.do("alice", http.MethodPost, base+"/estimate", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_Summary(t *testing.T) {
	srv := newTestServer(t, Dependencies{})
	id := srv.createSession("alice")
	base := "/api/v1/wizard/sessions/" + id
	srv.do("alice", http.MethodPatch, base+"/draft", completeDraft())

	w := srv.do("alice", http.MethodGet, base+"/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Rows []SummaryRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Contains(t, summary.Rows, SummaryRow{"Exterior", "Style", "Modern Farmhouse"})

	w = srv.do("alice", http.MethodGet, base+"/summary?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = srv.do("alice", http.MethodGet, base+"/summary?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.Bytes())

	w = srv.do("alice", http.MethodGet, base+"/summary?format=csv", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SubmitFlow(t *testing.T) {
	creator := new(MockCreator)
	creator.On("CreateProject", mock.Anything, mock.Anything).
		Return(nil, &projectapi.APIError{StatusCode: http.StatusConflict, Message: "duplicate project"}).Once()
	creator.On("CreateProject", mock.Anything, mock.MatchedBy(func(req projectapi.ProjectRequest) bool {
		return req.Title == "Lake house"
	})).Return(&projectapi.ProjectCreated{ID: "proj-1"}, nil).Once()

	repo := receipts.NewMemoryRepository()
	srv := newTestServer(t, Dependencies{Creator: creator, Receipts: repo})
	id := srv.createSession("alice")
	base := "/api/v1/wizard/sessions/" + id

	srv.do("alice", http.MethodPatch, base+"/draft", completeDraft())
	for i := 0; i < StepSubmission-1; i++ {
		w := srv.do("alice", http.MethodPost, base+"/continue", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := srv.do("alice", http.MethodPost, base+"/continue", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate project")

	w = srv.do("alice", http.MethodPost, base+"/continue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		Outcome Outcome `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Equal(t, "proj-1", ok.Outcome.ProjectID)
	assert.True(t, ok.Outcome.State.IsFormCompleted)

	w = srv.do("alice", http.MethodGet, "/api/v1/wizard/submissions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []receipts.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "proj-1", list[0].ProjectID)

	w = srv.do("bob", http.MethodGet, "/api/v1/wizard/submissions", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	creator.AssertExpectations(t)
}

func TestHandler_EventsWithoutViews(t *testing.T) {
	srv := newTestServer(t, Dependencies{})
	id := srv.createSession("alice")

	w := srv.do("alice", http.MethodGet, "/api/v1/wizard/sessions/"+id+"/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = srv.do("bob", http.MethodGet, "/api/v1/wizard/sessions/"+id+"/events", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
