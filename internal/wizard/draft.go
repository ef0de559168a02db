package wizard

import (
	"buildmarket/project-wizard/wizard-backend/internal/estimation"
)

// Step numbers of the build-house wizard.
const (
	StepBasics = iota + 1
	StepExterior
	StepInterior
	StepOutdoor
	StepSummary
	StepSubmission
)

// TotalSteps is the number of wizard screens.
const TotalSteps = StepSubmission

// Basics is the project classification slice.
type Basics struct {
	ProjectType   string `json:"projectType"`
	SquareFootage int    `json:"squareFootage"`
	Stories       int    `json:"stories"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
}

// Exterior holds the exterior choices
type Exterior struct {
	Style        string `json:"style"`
	RoofType     string `json:"roofType"`
	Material     string `json:"material"`
	ColorPalette string `json:"colorPalette"`
	Garage       string `json:"garage"`
}

// Interior holds the interior choices
type Interior struct {
	OpenFloorPlan bool     `json:"openFloorPlan"`
	KitchenStyle  string   `json:"kitchenStyle"`
	SpecialRooms  []string `json:"specialRooms"`
	Basement      bool     `json:"basement"`
	HomeOffice    bool     `json:"homeOffice"`
}

// Outdoor holds the outdoor and cost-optimization choices
type Outdoor struct {
	CostOptimizations []string `json:"costOptimizations"`
	Landscaping       bool     `json:"landscaping"`
	Deck              bool     `json:"deck"`
	Pool              bool     `json:"pool"`
}

// Attachment references a file uploaded elsewhere
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SubmissionDetails is the final step's slice
type SubmissionDetails struct {
	Title           string       `json:"title"`
	Timeline        string       `json:"timeline"`
	Notes           string       `json:"notes"`
	Attachments     []Attachment `json:"attachments"`
	Specializations []string     `json:"specializations"`
	Locations       []string     `json:"locations"`
}

// Draft is the single form-data object of a wizard session.
type Draft struct {
	Basics      Basics               `json:"basics"`
	Exterior    Exterior             `json:"exterior"`
	Interior    Interior             `json:"interior"`
	Outdoor     Outdoor              `json:"outdoor"`
	Submission  SubmissionDetails    `json:"submission"`
	APIResponse *estimation.Estimate `json:"apiResponse"`
}

// NewDraft returns a draft holding the initial defaults.
func NewDraft() Draft {
	return Draft{
		Basics: Basics{Stories: 1},
		Interior: Interior{
			SpecialRooms: []string{},
		},
		Outdoor: Outdoor{
			CostOptimizations: []string{},
		},
		Submission: SubmissionDetails{
			Attachments:     []Attachment{},
			Specializations: []string{},
			Locations:       []string{},
		},
	}
}

// Clone returns a deep copy of d.
func (d Draft) Clone() Draft {
	out := d
	out.Interior.SpecialRooms = cloneStrings(d.Interior.SpecialRooms)
	out.Outdoor.CostOptimizations = cloneStrings(d.Outdoor.CostOptimizations)
	out.Submission.Specializations = cloneStrings(d.Submission.Specializations)
	out.Submission.Locations = cloneStrings(d.Submission.Locations)
	if d.Submission.Attachments != nil {
		out.Submission.Attachments = append([]Attachment{}, d.Submission.Attachments...)
	}
	out.APIResponse = d.APIResponse.Clone()
	return out
}

// BaseDescription is the description of the last fetched estimate.
func (d Draft) BaseDescription() string {
	if d.APIResponse == nil {
		return ""
	}
	return d.APIResponse.Description
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

// BasicsPatch carries changed basics fields; nil means unchanged.
type BasicsPatch struct {
	ProjectType   *string `json:"projectType,omitempty"`
	SquareFootage *int    `json:"squareFootage,omitempty"`
	Stories       *int    `json:"stories,omitempty"`
	Bedrooms      *int    `json:"bedrooms,omitempty"`
	Bathrooms     *int    `json:"bathrooms,omitempty"`
}

func (p *BasicsPatch) apply(b *Basics) {
	setString(&b.ProjectType, p.ProjectType)
	setInt(&b.SquareFootage, p.SquareFootage)
	setInt(&b.Stories, p.Stories)
	setInt(&b.Bedrooms, p.Bedrooms)
	setInt(&b.Bathrooms, p.Bathrooms)
}

// ExteriorPatch carries changed exterior fields
type ExteriorPatch struct {
	Style        *string `json:"style,omitempty"`
	RoofType     *string `json:"roofType,omitempty"`
	Material     *string `json:"material,omitempty"`
	ColorPalette *string `json:"colorPalette,omitempty"`
	Garage       *string `json:"garage,omitempty"`
}

func (p *ExteriorPatch) apply(e *Exterior) {
	setString(&e.Style, p.Style)
	setString(&e.RoofType, p.RoofType)
	setString(&e.Material, p.Material)
	setString(&e.ColorPalette, p.ColorPalette)
	setString(&e.Garage, p.Garage)
}

// InteriorPatch carries changed interior fields. A non-nil SpecialRooms
// replaces the whole list; an empty non-nil list clears it.
type InteriorPatch struct {
	OpenFloorPlan *bool    `json:"openFloorPlan,omitempty"`
	KitchenStyle  *string  `json:"kitchenStyle,omitempty"`
	SpecialRooms  []string `json:"specialRooms,omitempty"`
	Basement      *bool    `json:"basement,omitempty"`
	HomeOffice    *bool    `json:"homeOffice,omitempty"`
}

func (p *InteriorPatch) apply(i *Interior) {
	setBool(&i.OpenFloorPlan, p.OpenFloorPlan)
	setString(&i.KitchenStyle, p.KitchenStyle)
	setStrings(&i.SpecialRooms, p.SpecialRooms)
	setBool(&i.Basement, p.Basement)
	setBool(&i.HomeOffice, p.HomeOffice)
}

// OutdoorPatch carries changed outdoor fields
type OutdoorPatch struct {
	CostOptimizations []string `json:"costOptimizations,omitempty"`
	Landscaping       *bool    `json:"landscaping,omitempty"`
	Deck              *bool    `json:"deck,omitempty"`
	Pool              *bool    `json:"pool,omitempty"`
}

func (p *OutdoorPatch) apply(o *Outdoor) {
	setStrings(&o.CostOptimizations, p.CostOptimizations)
	setBool(&o.Landscaping, p.Landscaping)
	setBool(&o.Deck, p.Deck)
	setBool(&o.Pool, p.Pool)
}

// SubmissionPatch carries changed submission fields
type SubmissionPatch struct {
	Title           *string      `json:"title,omitempty"`
	Timeline        *string      `json:"timeline,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	Specializations []string     `json:"specializations,omitempty"`
	Locations       []string     `json:"locations,omitempty"`
}

func (p *SubmissionPatch) apply(s *SubmissionDetails) {
	setString(&s.Title, p.Title)
	setString(&s.Timeline, p.Timeline)
	setString(&s.Notes, p.Notes)
	if p.Attachments != nil {
		s.Attachments = append([]Attachment{}, p.Attachments...)
	}
	setStrings(&s.Specializations, p.Specializations)
	setStrings(&s.Locations, p.Locations)
}

// DraftPatch is a partial draft. Only the slices and fields present are
// merged; the estimate slot is replaced through SetAPIResponse instead.
type DraftPatch struct {
	Basics     *BasicsPatch     `json:"basics,omitempty"`
	Exterior   *ExteriorPatch   `json:"exterior,omitempty"`
	Interior   *InteriorPatch   `json:"interior,omitempty"`
	Outdoor    *OutdoorPatch    `json:"outdoor,omitempty"`
	Submission *SubmissionPatch `json:"submission,omitempty"`
}

// Apply merges p into d.
func (p DraftPatch) Apply(d *Draft) {
	if p.Basics != nil {
		p.Basics.apply(&d.Basics)
	}
	if p.Exterior != nil {
		p.Exterior.apply(&d.Exterior)
	}
	if p.Interior != nil {
		p.Interior.apply(&d.Interior)
	}
	if p.Outdoor != nil {
		p.Outdoor.apply(&d.Outdoor)
	}
	if p.Submission != nil {
		p.Submission.apply(&d.Submission)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setStrings(dst *[]string, v []string) {
	if v != nil {
		*dst = append([]string{}, v...)
	}
}
