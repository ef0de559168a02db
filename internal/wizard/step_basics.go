package wizard

import "strings"

// BasicsStep collects the project classification.
type BasicsStep struct {
	estimateSource
}

func (BasicsStep) Number() int  { return StepBasics }
func (BasicsStep) Name() string { return "Basics" }

func (BasicsStep) Validate(d Draft) FieldErrors {
	b := d.Basics
	errs := FieldErrors{}
	required(errs, "basics.projectType", strings.TrimSpace(b.ProjectType))
	if b.SquareFootage <= 0 {
		errs["basics.squareFootage"] = "must be greater than zero"
	}
	if b.Stories < 1 {
		errs["basics.stories"] = "must be at least 1"
	}
	if b.Bedrooms < 0 {
		errs["basics.bedrooms"] = "cannot be negative"
	}
	if b.Bathrooms < 0 {
		errs["basics.bathrooms"] = "cannot be negative"
	}
	return errs
}
