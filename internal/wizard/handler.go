package wizard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"buildmarket/project-wizard/wizard-backend/internal/auth"
	"buildmarket/project-wizard/wizard-backend/internal/export"
	"buildmarket/project-wizard/wizard-backend/internal/projectapi"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wiz := rg.Group("/wizard")
	{
		wiz.POST("/sessions", h.CreateSession)
		wiz.GET("/sessions/:id", h.GetSession)
		wiz.DELETE("/sessions/:id", h.DeleteSession)
		wiz.PATCH("/sessions/:id/draft", h.UpdateDraft)
		wiz.POST("/sessions/:id/continue", h.Continue)
		wiz.POST("/sessions/:id/back", h.Back)
		wiz.POST("/sessions/:id/goto/:step", h.GoTo)
		wiz.POST("/sessions/:id/reset", h.Reset)
		wiz.POST("/sessions/:id/estimate", h.RefreshEstimate)
		wiz.GET("/sessions/:id/preview", h.Preview)
		wiz.GET("/sessions/:id/optimizations", h.Optimizations)
		wiz.GET("/sessions/:id/summary", h.Summary)
		wiz.GET("/sessions/:id/events", h.Events)
		wiz.GET("/submissions", h.ListSubmissions)
	}
}

// SessionResponse is the wire view of a session
type SessionResponse struct {
	ID       uuid.UUID `json:"id"`
	State    State     `json:"state"`
	Progress Progress  `json:"progress"`
}

func newSessionResponse(s *Session) SessionResponse {
	st := s.Controller.State()
	return SessionResponse{ID: s.ID, State: st, Progress: NewProgress(st)}
}

func (h *Handler) CreateSession(c *gin.Context) {
	session, err := h.service.CreateSession(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(session))
}

func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) DeleteSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSession(c.Request.Context(), id, auth.UserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateDraft(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var patch DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session.Controller.Update(patch)
	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) Continue(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	outcome, err := session.Controller.Continue(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *projectapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 {
			status = apiErr.StatusCode
		}
		c.JSON(status, gin.H{"error": err.Error(), "notice": outcome.Notice, "state": outcome.State})
		return
	}

	if len(outcome.FieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       "validation failed",
			"fieldErrors": outcome.FieldErrors,
			"state":       outcome.State,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":  outcome,
		"progress": NewProgress(outcome.State),
	})
}

func (h *Handler) Back(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Controller.Back()
	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) GoTo(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		return
	}
	session.Controller.GoTo(step)
	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) Reset(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Controller.Reset()
	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) RefreshEstimate(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	applied, err := session.Controller.RefreshEstimate(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrEstimationUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"applied": applied,
		"state":   session.Controller.State(),
	})
}

func (h *Handler) Preview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": session.Controller.Preview()})
}

func (h *Handler) Optimizations(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"optimizations": session.Controller.Optimizations()})
}

func (h *Handler) Summary(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	rows := session.Controller.Summary()

	format := c.DefaultQuery("format", "json")
	if format == "json" {
		c.JSON(http.StatusOK, gin.H{"rows": rows})
		return
	}

	doc := summaryDocument(session.Controller.State().Draft, rows)
	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "pdf":
		data, err = export.SummaryPDF(doc)
		contentType = "application/pdf"
	case "xlsx":
		data, err = export.SummaryXLSX(doc)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, pdf or xlsx"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to export summary", zap.String("format", format), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export summary"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="project-summary.%s"`, format))
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) Events(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.service.AttachView(c.Writer, c.Request, id, auth.UserID(c)); err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionForbidden) {
			h.respondError(c, err)
			return
		}
		if errors.Is(err, ErrViewsUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		// The upgrader has already written a response.
		h.logger.Debug("Failed to attach view", zap.Error(err))
	}
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := h.service.ListSubmissions(c.Request.Context(), auth.UserID(c), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}
	session, err := h.service.GetSession(c.Request.Context(), id, auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return session, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, ErrSessionForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		h.logger.Error("Wizard request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func summaryDocument(d Draft, rows []SummaryRow) export.Document {
	doc := export.Document{
		Title: "Project Summary",
		Rows:  make([]export.Row, 0, len(rows)),
	}
	if d.Submission.Title != "" {
		doc.Title = d.Submission.Title
	}
	if d.Exterior.Style != "" && d.Basics.ProjectType != "" {
		doc.Subtitle = fmt.Sprintf("%s %s", d.Exterior.Style, d.Basics.ProjectType)
	}
	for _, r := range rows {
		doc.Rows = append(doc.Rows, export.Row{Section: r.Section, Field: r.Field, Value: r.Value})
	}
	return doc
}
