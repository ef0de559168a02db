package wizard

import (
	"strings"

	"buildmarket/project-wizard/wizard-backend/internal/projectapi"
)

// SubmissionStep collects the request details and hands the draft to the
// project API.
type SubmissionStep struct{}

func (SubmissionStep) Number() int  { return StepSubmission }
func (SubmissionStep) Name() string { return "Submit" }

func (SubmissionStep) Validate(d Draft) FieldErrors {
	s := d.Submission
	errs := FieldErrors{}
	required(errs, "submission.title", strings.TrimSpace(s.Title))
	if len(s.Locations) == 0 {
		errs["submission.locations"] = "select at least one location"
	}
	for _, a := range s.Attachments {
		if a.Name == "" || a.URL == "" {
			errs["submission.attachments"] = "every attachment needs a name and url"
			break
		}
	}
	return errs
}

// Request serializes the draft for the create-project endpoint.
func (SubmissionStep) Request(d Draft) projectapi.ProjectRequest {
	s := d.Submission
	req := projectapi.ProjectRequest{
		Title:           strings.TrimSpace(s.Title),
		Timeline:        s.Timeline,
		Notes:           s.Notes,
		Attachments:     make([]projectapi.Attachment, 0, len(s.Attachments)),
		Specializations: cloneStrings(s.Specializations),
		Locations:       cloneStrings(s.Locations),
		Draft:           d,
	}
	for _, a := range s.Attachments {
		req.Attachments = append(req.Attachments, projectapi.Attachment{Name: a.Name, URL: a.URL})
	}
	if est := d.APIResponse; est != nil {
		req.Description = describe(est.Description, est.AIGeneratedDescription)
		req.EstimatedCost = est.EstimatedCost
	}
	return req
}
