package wizard

// InteriorStep collects layout, kitchen and special rooms.
type InteriorStep struct {
	estimateSource
}

func (InteriorStep) Number() int  { return StepInterior }
func (InteriorStep) Name() string { return "Interior" }

func (InteriorStep) Validate(d Draft) FieldErrors {
	errs := FieldErrors{}
	required(errs, "interior.kitchenStyle", d.Interior.KitchenStyle)
	for _, room := range d.Interior.SpecialRooms {
		if room == "" {
			errs["interior.specialRooms"] = "cannot contain empty entries"
			break
		}
	}
	return errs
}

// Preview lists the interior selections after base.
func (InteriorStep) Preview(base string, d Draft) string {
	return DerivePreview(base, interiorPreviewLabel, interiorSelections(d.Interior))
}

func interiorSelections(in Interior) []string {
	var picked []string
	if in.OpenFloorPlan {
		picked = append(picked, "open floor plan")
	}
	if in.KitchenStyle != "" {
		picked = append(picked, in.KitchenStyle+" kitchen")
	}
	picked = append(picked, in.SpecialRooms...)
	if in.Basement {
		picked = append(picked, "basement")
	}
	if in.HomeOffice {
		picked = append(picked, "home office")
	}
	return picked
}
