package wizard

import "strings"

// Preview labels used by the steps that derive a live description.
const (
	exteriorPreviewLabel = "exterior features"
	interiorPreviewLabel = "interior features"
	outdoorPreviewLabel  = "cost optimizations"
)

// DerivePreview appends " with <label>: A, B" to base. With no selections
// it returns base unchanged. The result depends only on its arguments, so it
// can be recomputed at any time without drift.
func DerivePreview(base, label string, selections []string) string {
	picked := make([]string, 0, len(selections))
	for _, s := range selections {
		if s = strings.TrimSpace(s); s != "" {
			picked = append(picked, s)
		}
	}
	if len(picked) == 0 {
		return base
	}

	clause := "with " + label + ": " + strings.Join(picked, ", ")
	if base == "" {
		return clause
	}
	return base + " " + clause
}
