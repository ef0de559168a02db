package wizard

import (
	"fmt"
	"strconv"
	"strings"
)

// SummaryRow is one labelled line of the review screen.
type SummaryRow struct {
	Section string `json:"section"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

// SummaryStep shows the whole draft for review before submission.
type SummaryStep struct{}

func (SummaryStep) Number() int                  { return StepSummary }
func (SummaryStep) Name() string                 { return "Summary" }
func (SummaryStep) Validate(d Draft) FieldErrors { return FieldErrors{} }

// Rows flattens the draft and its estimate into review lines.
func (SummaryStep) Rows(d Draft) []SummaryRow {
	b, e, i, o := d.Basics, d.Exterior, d.Interior, d.Outdoor

	rows := []SummaryRow{
		{"Basics", "Project type", b.ProjectType},
		{"Basics", "Square footage", strconv.Itoa(b.SquareFootage)},
		{"Basics", "Stories", strconv.Itoa(b.Stories)},
		{"Basics", "Bedrooms", strconv.Itoa(b.Bedrooms)},
		{"Basics", "Bathrooms", strconv.Itoa(b.Bathrooms)},
		{"Exterior", "Style", e.Style},
		{"Exterior", "Roof", e.RoofType},
		{"Exterior", "Material", e.Material},
		{"Exterior", "Color palette", e.ColorPalette},
		{"Exterior", "Garage", e.Garage},
		{"Interior", "Open floor plan", yesNo(i.OpenFloorPlan)},
		{"Interior", "Kitchen", i.KitchenStyle},
		{"Interior", "Special rooms", strings.Join(i.SpecialRooms, ", ")},
		{"Interior", "Basement", yesNo(i.Basement)},
		{"Interior", "Home office", yesNo(i.HomeOffice)},
		{"Outdoor", "Cost optimizations", strings.Join(o.CostOptimizations, ", ")},
		{"Outdoor", "Landscaping", yesNo(o.Landscaping)},
		{"Outdoor", "Deck", yesNo(o.Deck)},
		{"Outdoor", "Pool", yesNo(o.Pool)},
	}

	if est := d.APIResponse; est != nil {
		rows = append(rows,
			SummaryRow{"Estimate", "Estimated cost", fmt.Sprintf("$%.2f", est.EstimatedCost)},
			SummaryRow{"Estimate", "Confidence", est.Confidence},
			SummaryRow{"Estimate", "Description", describe(est.Description, est.AIGeneratedDescription)},
		)
		if fa := est.FeasibilityAnalysis; fa != nil {
			rows = append(rows, SummaryRow{"Estimate", "Feasible", yesNo(fa.Feasible)})
		}
	}
	return rows
}

func describe(base, generated string) string {
	if generated != "" {
		return generated
	}
	return base
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
