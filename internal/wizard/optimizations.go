package wizard

import (
	"encoding/json"
	"strings"

	"buildmarket/project-wizard/wizard-backend/internal/estimation"
)

// DefaultOptimizations is offered whenever nothing can be extracted from
// the estimate, so the user always has something actionable to pick.
var DefaultOptimizations = []string{
	"Use standard-sized windows and doors",
	"Choose a simple roofline",
	"Reduce interior walls with an open floor plan",
	"Select energy-efficient insulation",
	"Use locally sourced materials",
	"Install low-flow plumbing fixtures",
	"Choose laminate or vinyl flooring over hardwood",
	"Phase outdoor features after move-in",
}

// extractor reads candidate strings from one known shape of estimate field.
type extractor func(raw json.RawMessage) []string

// ExtractOptimizations returns the cost-optimization candidates found in
// estimate, or DefaultOptimizations when there are none. It never fails.
func ExtractOptimizations(estimate *estimation.Estimate) []string {
	if found := safeExtract(estimate); len(found) > 0 {
		return found
	}
	return append([]string{}, DefaultOptimizations...)
}

// safeExtract treats a panic in any extractor as an empty result.
func safeExtract(estimate *estimation.Estimate) (found []string) {
	defer func() {
		if recover() != nil {
			found = nil
		}
	}()
	return extractCandidates(estimate)
}

type source struct {
	raw     json.RawMessage
	extract extractor
}

func extractCandidates(estimate *estimation.Estimate) []string {
	if estimate == nil {
		return nil
	}

	sources := []source{
		{estimate.CostOptimizations, stringsFromArray},
		{estimate.Suggestions, stringsFromDescribed},
	}
	if fa := estimate.FeasibilityAnalysis; fa != nil {
		sources = append(sources,
			source{fa.Recommendations, stringsFromNested},
			source{fa.Issues, stringsFromNested},
		)
	}

	seen := make(map[string]bool)
	var out []string
	for _, src := range sources {
		if len(src.raw) == 0 {
			continue
		}
		for _, candidate := range src.extract(src.raw) {
			candidate = cleanCandidate(candidate)
			if candidate == "" || seen[candidate] {
				continue
			}
			seen[candidate] = true
			out = append(out, candidate)
		}
	}
	return out
}

func arrayItems(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// stringsFromArray reads the string elements of a JSON array and skips the rest.
func stringsFromArray(raw json.RawMessage) []string {
	var out []string
	for _, item := range arrayItems(raw) {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// stringsFromDescribed reads an array of objects carrying description-like
// fields, e.g. [{"description": "...", "extras": "..."}].
func stringsFromDescribed(raw json.RawMessage) []string {
	var out []string
	for _, item := range arrayItems(raw) {
		out = append(out, describedFields(item)...)
	}
	return out
}

// stringsFromNested reads feasibility recommendation/issue lists, whose
// elements are either plain strings or described objects.
func stringsFromNested(raw json.RawMessage) []string {
	var out []string
	for _, item := range arrayItems(raw) {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, describedFields(item)...)
	}
	return out
}

var describedKeys = []string{"description", "extras", "recommendation", "suggestion", "text"}

func describedFields(item json.RawMessage) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(item, &obj); err != nil {
		return nil
	}
	var out []string
	for _, key := range describedKeys {
		value, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// cleanCandidate strips surrounding space and a leading "- " bullet. A bare
// bullet is empty.
func cleanCandidate(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	s = strings.TrimPrefix(s, "- ")
	return strings.TrimSpace(s)
}
