package wizard

// OutdoorStep collects cost optimizations and outdoor features.
type OutdoorStep struct{}

func (OutdoorStep) Number() int  { return StepOutdoor }
func (OutdoorStep) Name() string { return "Outdoor & Savings" }

func (OutdoorStep) Validate(d Draft) FieldErrors {
	errs := FieldErrors{}
	for _, o := range d.Outdoor.CostOptimizations {
		if o == "" {
			errs["outdoor.costOptimizations"] = "cannot contain empty entries"
			break
		}
	}
	return errs
}

// Preview appends the selected cost optimizations to base.
func (OutdoorStep) Preview(base string, d Draft) string {
	return DerivePreview(base, outdoorPreviewLabel, d.Outdoor.CostOptimizations)
}

// Candidates returns the strategies the user can choose from.
func (OutdoorStep) Candidates(d Draft) []string {
	return ExtractOptimizations(d.APIResponse)
}
