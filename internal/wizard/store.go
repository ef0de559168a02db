package wizard

import (
	"sync"

	"buildmarket/project-wizard/wizard-backend/internal/estimation"
)

// State is a point-in-time copy of a store.
type State struct {
	Draft           Draft `json:"draft"`
	CurrentStep     int   `json:"currentStep"`
	TotalSteps      int   `json:"totalSteps"`
	HighestStep     int   `json:"highestStep"`
	IsFormCompleted bool  `json:"isFormCompleted"`
}

// Store holds the draft and the step pointer of one wizard session.
// Mutations are serialized; view events are delivered after the lock is
// released.
type Store struct {
	mu          sync.Mutex
	draft       Draft
	currentStep int
	highestStep int
	totalSteps  int
	completed   bool
	estimateSeq uint64
	notifier    Notifier
}

// NewStore creates a store at step 1 with a default draft.
func NewStore(totalSteps int, notifier Notifier) *Store {
	if totalSteps < 1 {
		totalSteps = 1
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Store{
		draft:       NewDraft(),
		currentStep: 1,
		highestStep: 1,
		totalSteps:  totalSteps,
		notifier:    notifier,
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Draft:           s.draft.Clone(),
		CurrentStep:     s.currentStep,
		TotalSteps:      s.totalSteps,
		HighestStep:     s.highestStep,
		IsFormCompleted: s.completed,
	}
}

// CurrentStep returns the step pointer
func (s *Store) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStep
}

// UpdateFormData shallow-merges patch into the draft.
func (s *Store) UpdateFormData(patch DraftPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch.Apply(&s.draft)
}

// SetAPIResponse replaces the estimate slot wholesale.
func (s *Store) SetAPIResponse(estimate *estimation.Estimate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.APIResponse = estimate.Clone()
}

// BeginEstimate issues the identity of a new estimate request. Only the
// response to the latest issued request is applied.
func (s *Store) BeginEstimate() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.estimateSeq++
	return s.estimateSeq
}

// ApplyEstimate sets the estimate fetched by request seq, unless a newer
// request was issued or the form was reset since. It reports whether the
// estimate was applied.
func (s *Store) ApplyEstimate(seq uint64, estimate *estimation.Estimate) bool {
	s.mu.Lock()
	if seq != s.estimateSeq {
		s.mu.Unlock()
		return false
	}
	s.draft.APIResponse = estimate.Clone()
	s.mu.Unlock()

	s.notifier.Notify(Event{Type: EventEstimateUpdated})
	return true
}

// NextStep advances one step. No-op on the last step.
func (s *Store) NextStep() {
	s.move(func() int { return s.currentStep + 1 })
}

// PrevStep goes back one step. No-op on step 1.
func (s *Store) PrevStep() {
	s.move(func() int { return s.currentStep - 1 })
}

// GoToStep jumps to step n when n is in range and has already been reached.
func (s *Store) GoToStep(n int) {
	s.move(func() int {
		if n > s.highestStep {
			return s.currentStep
		}
		return n
	})
}

func (s *Store) move(target func() int) {
	s.mu.Lock()
	next := target()
	if next < 1 || next > s.totalSteps || next == s.currentStep {
		s.mu.Unlock()
		return
	}
	s.currentStep = next
	if next > s.highestStep {
		s.highestStep = next
	}
	s.mu.Unlock()

	s.notifier.Notify(Event{Type: EventScrollTop, Step: next})
}

// AdvanceFrom moves from step to the next one when the store is still on
// step and validate accepts the draft as it is now. The check and the move
// happen under one lock, so an edit or jump made while the caller was busy
// can't slip past validation. It returns the validation errors, if any.
func (s *Store) AdvanceFrom(step int, validate func(Draft) FieldErrors) (bool, FieldErrors) {
	s.mu.Lock()
	if s.currentStep != step || step >= s.totalSteps {
		s.mu.Unlock()
		return false, nil
	}
	if errs := validate(s.draft); len(errs) > 0 {
		s.mu.Unlock()
		return false, errs
	}
	s.currentStep = step + 1
	if s.currentStep > s.highestStep {
		s.highestStep = s.currentStep
	}
	next := s.currentStep
	s.mu.Unlock()

	s.notifier.Notify(Event{Type: EventScrollTop, Step: next})
	return true, nil
}

// ValidatedDraft returns a copy of the draft when the store is still on step
// and validate accepts it. ok is false when the user has left step.
func (s *Store) ValidatedDraft(step int, validate func(Draft) FieldErrors) (d Draft, errs FieldErrors, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentStep != step {
		return Draft{}, nil, false
	}
	if errs := validate(s.draft); len(errs) > 0 {
		return Draft{}, errs, true
	}
	return s.draft.Clone(), nil, true
}

// SetGeneratedDescription sets the estimate's generated description to
// describe(base, draft), computed from the estimate held at the time of the
// call. It does nothing and returns false when there is no estimate.
func (s *Store) SetGeneratedDescription(describe func(base string, d Draft) string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.APIResponse == nil {
		return false
	}
	s.draft.APIResponse.AIGeneratedDescription = describe(s.draft.APIResponse.Description, s.draft)
	return true
}

// ResetForm restores the defaults and returns to step 1. Estimate requests
// still in flight are invalidated.
func (s *Store) ResetForm() {
	s.mu.Lock()
	s.draft = NewDraft()
	s.currentStep = 1
	s.highestStep = 1
	s.completed = false
	s.estimateSeq++
	s.mu.Unlock()

	s.notifier.Notify(Event{Type: EventScrollTop, Step: 1})
}

// CompleteForm marks the form completed. It does not submit anything.
func (s *Store) CompleteForm() {
	s.mu.Lock()
	s.completed = true
	s.mu.Unlock()

	s.notifier.Notify(Event{Type: EventFormCompleted})
}
