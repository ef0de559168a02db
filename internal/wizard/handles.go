package wizard

// Each handle gives one screen read access to its own draft slice and a
// mutation callback that can only change that slice.

// BasicsHandle is the basics screen's view of the store
type BasicsHandle struct{ store *Store }

func (h BasicsHandle) Get() Basics { return h.store.Snapshot().Draft.Basics }

func (h BasicsHandle) Update(p BasicsPatch) { h.store.UpdateFormData(DraftPatch{Basics: &p}) }

// ExteriorHandle is the exterior screen's view of the store
type ExteriorHandle struct{ store *Store }

func (h ExteriorHandle) Get() Exterior { return h.store.Snapshot().Draft.Exterior }

func (h ExteriorHandle) Update(p ExteriorPatch) { h.store.UpdateFormData(DraftPatch{Exterior: &p}) }

// InteriorHandle is the interior screen's view of the store
type InteriorHandle struct{ store *Store }

func (h InteriorHandle) Get() Interior { return h.store.Snapshot().Draft.Interior }

func (h InteriorHandle) Update(p InteriorPatch) { h.store.UpdateFormData(DraftPatch{Interior: &p}) }

// OutdoorHandle is the outdoor screen's view of the store
type OutdoorHandle struct{ store *Store }

func (h OutdoorHandle) Get() Outdoor { return h.store.Snapshot().Draft.Outdoor }

func (h OutdoorHandle) Update(p OutdoorPatch) { h.store.UpdateFormData(DraftPatch{Outdoor: &p}) }

// SubmissionHandle is the submission screen's view of the store
type SubmissionHandle struct{ store *Store }

func (h SubmissionHandle) Get() SubmissionDetails { return h.store.Snapshot().Draft.Submission }

func (h SubmissionHandle) Update(p SubmissionPatch) {
	h.store.UpdateFormData(DraftPatch{Submission: &p})
}

// Handles bundles the slice handles of one store.
type Handles struct {
	Basics     BasicsHandle
	Exterior   ExteriorHandle
	Interior   InteriorHandle
	Outdoor    OutdoorHandle
	Submission SubmissionHandle
}

// NewHandles creates the slice handles of s
func NewHandles(s *Store) Handles {
	return Handles{
		Basics:     BasicsHandle{store: s},
		Exterior:   ExteriorHandle{store: s},
		Interior:   InteriorHandle{store: s},
		Outdoor:    OutdoorHandle{store: s},
		Submission: SubmissionHandle{store: s},
	}
}

// Apply routes each slice of patch through its own handle.
func (h Handles) Apply(patch DraftPatch) {
	if patch.Basics != nil {
		h.Basics.Update(*patch.Basics)
	}
	if patch.Exterior != nil {
		h.Exterior.Update(*patch.Exterior)
	}
	if patch.Interior != nil {
		h.Interior.Update(*patch.Interior)
	}
	if patch.Outdoor != nil {
		h.Outdoor.Update(*patch.Outdoor)
	}
	if patch.Submission != nil {
		h.Submission.Update(*patch.Submission)
	}
}
