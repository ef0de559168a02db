package wizard

import "strings"

// ExteriorStep collects style, roof, material, palette and garage.
type ExteriorStep struct {
	estimateSource
}

func (ExteriorStep) Number() int  { return StepExterior }
func (ExteriorStep) Name() string { return "Exterior" }

func (ExteriorStep) Validate(d Draft) FieldErrors {
	errs := FieldErrors{}
	required(errs, "exterior.style", strings.TrimSpace(d.Exterior.Style))
	return errs
}

// Preview lists the exterior selections after base.
func (ExteriorStep) Preview(base string, d Draft) string {
	e := d.Exterior
	return DerivePreview(base, exteriorPreviewLabel, []string{
		e.Style, e.RoofType, e.Material, e.ColorPalette, e.Garage,
	})
}
