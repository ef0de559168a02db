package wizard

import "sort"

// FieldErrors maps a draft field path (e.g. "basics.projectType") to a
// user-facing message.
type FieldErrors map[string]string

// Fields returns the failing field paths in stable order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Step is one wizard screen. Steps only read the draft; writes go through
// the store with a DraftPatch.
type Step interface {
	Number() int
	Name() string
	// Validate checks the step's own slice before the wizard advances.
	Validate(d Draft) FieldErrors
}

// Previewer is implemented by steps that derive a live description.
type Previewer interface {
	Preview(base string, d Draft) string
}

// estimateInput marks steps whose slice feeds the estimation service; the
// controller refreshes the estimate when such a step is completed.
type estimateInput interface {
	feedsEstimate()
}

// estimateSource is embedded by the steps that implement estimateInput.
type estimateSource struct{}

func (estimateSource) feedsEstimate() {}

// Steps returns the build-house wizard screens in order.
func Steps() []Step {
	return []Step{
		BasicsStep{},
		ExteriorStep{},
		InteriorStep{},
		OutdoorStep{},
		SummaryStep{},
		SubmissionStep{},
	}
}

func required(errs FieldErrors, field, value string) {
	if value == "" {
		errs[field] = "is required"
	}
}
