package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"buildmarket/project-wizard/wizard-backend/internal/estimation"
	"buildmarket/project-wizard/wizard-backend/internal/projectapi"
	"buildmarket/project-wizard/wizard-backend/internal/receipts"
)

var (
	// ErrSubmissionFailed wraps every failed hand-off to the project API.
	ErrSubmissionFailed = errors.New("project submission failed")
	// ErrEstimationUnavailable is returned when no estimator is configured.
	ErrEstimationUnavailable = errors.New("estimation service not configured")
)

// Dependencies are the collaborators shared by all controllers.
type Dependencies struct {
	Estimator       estimation.Estimator
	Creator         projectapi.Creator
	Receipts        receipts.Repository
	Logger          *zap.Logger
	EstimateTimeout time.Duration
}

// Outcome is the result of a Continue.
type Outcome struct {
	State       State       `json:"state"`
	Advanced    bool        `json:"advanced"`
	FieldErrors FieldErrors `json:"fieldErrors,omitempty"`
	Notice      *Notice     `json:"notice,omitempty"`
	ProjectID   string      `json:"projectId,omitempty"`
}

// Controller is the root of one wizard session: it owns the store and runs
// the step modules against it.
type Controller struct {
	sessionID uuid.UUID
	userID    string
	store     *Store
	handles   Handles
	steps     map[int]Step
	deps      Dependencies
	notifier  Notifier
	logger    *zap.Logger

	// continueMu keeps two Continue calls from advancing twice.
	continueMu sync.Mutex
}

// NewController creates the controller of a fresh session.
func NewController(sessionID uuid.UUID, userID string, deps Dependencies, notifier Notifier) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	steps := make(map[int]Step, TotalSteps)
	for _, s := range Steps() {
		steps[s.Number()] = s
	}

	store := NewStore(TotalSteps, notifier)
	return &Controller{
		sessionID: sessionID,
		userID:    userID,
		store:     store,
		handles:   NewHandles(store),
		steps:     steps,
		deps:      deps,
		notifier:  notifier,
		logger:    logger.With(zap.String("session_id", sessionID.String())),
	}
}

// Store exposes the draft store of the session
func (c *Controller) Store() *Store {
	return c.store
}

// State returns a snapshot of the session
func (c *Controller) State() State {
	return c.store.Snapshot()
}

// Handles returns the per-slice handles of the session's store
func (c *Controller) Handles() Handles {
	return c.handles
}

// Update merges patch into the draft, one slice at a time.
func (c *Controller) Update(patch DraftPatch) State {
	c.handles.Apply(patch)
	return c.store.Snapshot()
}

// Back moves to the previous step
func (c *Controller) Back() State {
	c.store.PrevStep()
	return c.store.Snapshot()
}

// GoTo jumps to an already reached step
func (c *Controller) GoTo(step int) State {
	c.store.GoToStep(step)
	return c.store.Snapshot()
}

// Reset restores the defaults
func (c *Controller) Reset() State {
	c.store.ResetForm()
	return c.store.Snapshot()
}

// Continue validates the current step and, when it passes, runs the step's
// completion work and advances. On the last step it submits the draft. A
// completed form is never submitted again.
func (c *Controller) Continue(ctx context.Context) (Outcome, error) {
	c.continueMu.Lock()
	defer c.continueMu.Unlock()

	st := c.store.Snapshot()
	if st.IsFormCompleted {
		return Outcome{State: st}, nil
	}
	step := c.steps[st.CurrentStep]

	if errs := step.Validate(st.Draft); len(errs) > 0 {
		return c.invalid(st.CurrentStep, errs, nil), nil
	}

	var notice *Notice
	if _, ok := step.(estimateInput); ok && c.deps.Estimator != nil {
		if _, err := c.RefreshEstimate(ctx); err != nil {
			notice = &Notice{Level: NoticeWarning, Message: "We couldn't update your estimate. You can keep going and try again later."}
			c.toast(notice)
		}
	}

	// Each step writes from the base description, so it replaces whatever
	// clause an earlier step stored.
	if p, ok := step.(Previewer); ok {
		c.store.SetGeneratedDescription(p.Preview)
	}

	if st.CurrentStep == TotalSteps {
		return c.submit(ctx, step)
	}

	// The draft may have changed while the estimate was fetched.
	advanced, errs := c.store.AdvanceFrom(st.CurrentStep, step.Validate)
	if len(errs) > 0 {
		return c.invalid(st.CurrentStep, errs, notice), nil
	}
	if !advanced {
		c.logger.Debug("Step changed during continue, not advancing", zap.Int("step", st.CurrentStep))
	}
	return Outcome{State: c.store.Snapshot(), Advanced: advanced, Notice: notice}, nil
}

func (c *Controller) invalid(step int, errs FieldErrors, notice *Notice) Outcome {
	c.logger.Debug("Step validation failed",
		zap.Int("step", step),
		zap.Strings("fields", errs.Fields()))
	return Outcome{State: c.store.Snapshot(), FieldErrors: errs, Notice: notice}
}

// RefreshEstimate asks the estimation service for a new estimate of the
// current draft. It reports whether the result was applied; a response that
// was overtaken by a newer request or a reset is dropped.
func (c *Controller) RefreshEstimate(ctx context.Context) (bool, error) {
	if c.deps.Estimator == nil {
		return false, ErrEstimationUnavailable
	}

	seq := c.store.BeginEstimate()
	d := c.store.Snapshot().Draft

	if c.deps.EstimateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deps.EstimateTimeout)
		defer cancel()
	}

	estimate, err := c.deps.Estimator.Estimate(ctx, estimation.Request{
		Classification: d.Basics,
		Exterior:       d.Exterior,
		Interior:       d.Interior,
	})
	if err != nil {
		c.logger.Warn("Estimate refresh failed", zap.Error(err))
		return false, fmt.Errorf("failed to refresh estimate: %w", err)
	}

	applied := c.store.ApplyEstimate(seq, estimate)
	if !applied {
		c.logger.Debug("Discarding stale estimate", zap.Uint64("request", seq))
	}
	return applied, nil
}

// Preview returns the live description of the current step.
func (c *Controller) Preview() string {
	st := c.store.Snapshot()
	base := st.Draft.BaseDescription()
	if p, ok := c.steps[st.CurrentStep].(Previewer); ok {
		return p.Preview(base, st.Draft)
	}
	if est := st.Draft.APIResponse; est != nil && est.AIGeneratedDescription != "" {
		return est.AIGeneratedDescription
	}
	return base
}

// Optimizations returns the cost-optimization strategies offered on the
// outdoor step.
func (c *Controller) Optimizations() []string {
	return OutdoorStep{}.Candidates(c.store.Snapshot().Draft)
}

// Summary returns the review rows of the draft
func (c *Controller) Summary() []SummaryRow {
	return SummaryStep{}.Rows(c.store.Snapshot().Draft)
}

func (c *Controller) submit(ctx context.Context, step Step) (Outcome, error) {
	d, errs, ok := c.store.ValidatedDraft(StepSubmission, step.Validate)
	if !ok {
		return Outcome{State: c.store.Snapshot()}, nil
	}
	if len(errs) > 0 {
		return c.invalid(StepSubmission, errs, nil), nil
	}

	st := c.store.Snapshot()
	if c.deps.Creator == nil {
		notice := &Notice{Level: NoticeError, Message: "Project submission is unavailable right now."}
		c.toast(notice)
		return Outcome{State: st, Notice: notice}, fmt.Errorf("%w: project API not configured", ErrSubmissionFailed)
	}

	req := SubmissionStep{}.Request(d)
	created, err := c.deps.Creator.CreateProject(ctx, req)
	if err != nil {
		c.logger.Warn("Project submission failed", zap.Error(err))
		notice := &Notice{Level: NoticeError, Message: submissionFailureMessage(err)}
		c.toast(notice)
		return Outcome{State: st, Notice: notice}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	c.store.CompleteForm()
	c.recordReceipt(ctx, req, created)

	notice := &Notice{Level: NoticeSuccess, Message: "Your project request was submitted."}
	c.toast(notice)
	return Outcome{State: c.store.Snapshot(), Notice: notice, ProjectID: created.ID}, nil
}

func (c *Controller) recordReceipt(ctx context.Context, req projectapi.ProjectRequest, created *projectapi.ProjectCreated) {
	if c.deps.Receipts == nil {
		return
	}
	payload, err := json.Marshal(req)
	if err != nil {
		c.logger.Error("Failed to encode receipt payload", zap.Error(err))
		return
	}
	receipt := &receipts.Receipt{
		SessionID:     c.sessionID,
		UserID:        c.userID,
		ProjectID:     created.ID,
		Title:         req.Title,
		EstimatedCost: req.EstimatedCost,
		Payload:       datatypes.JSON(payload),
		SubmittedAt:   time.Now(),
	}
	if err := c.deps.Receipts.Create(ctx, receipt); err != nil {
		c.logger.Error("Failed to record submission receipt",
			zap.String("project_id", created.ID),
			zap.Error(err))
	}
}

func (c *Controller) toast(n *Notice) {
	c.notifier.Notify(Event{Type: EventToast, Notice: n})
}

func submissionFailureMessage(err error) string {
	var apiErr *projectapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.Message != "" {
		return apiErr.Message
	}
	return "We couldn't submit your project. Your answers are saved, please try again."
}
