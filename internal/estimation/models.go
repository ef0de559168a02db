package estimation

import "encoding/json"

// Estimate is the structured result returned by the estimation service.
// The free-form lists are kept as raw JSON because the service does not
// guarantee their element shapes.
type Estimate struct {
	Description            string               `json:"description"`
	EstimatedCost          float64              `json:"estimatedCost"`
	Confidence             string               `json:"confidence,omitempty"`
	FeasibilityAnalysis    *FeasibilityAnalysis `json:"feasibilityAnalysis,omitempty"`
	CostOptimizations      json.RawMessage      `json:"costOptimizations,omitempty"`
	Suggestions            json.RawMessage      `json:"suggestions,omitempty"`
	AIGeneratedDescription string               `json:"aiGeneratedDescription,omitempty"`
}

// FeasibilityAnalysis is the feasibility block of an estimate
type FeasibilityAnalysis struct {
	Feasible        bool            `json:"feasible"`
	Recommendations json.RawMessage `json:"recommendations,omitempty"`
	Issues          json.RawMessage `json:"issues,omitempty"`
}

// Clone returns a copy that shares no mutable state with e.
func (e *Estimate) Clone() *Estimate {
	if e == nil {
		return nil
	}
	out := *e
	out.CostOptimizations = cloneRaw(e.CostOptimizations)
	out.Suggestions = cloneRaw(e.Suggestions)
	if e.FeasibilityAnalysis != nil {
		fa := *e.FeasibilityAnalysis
		fa.Recommendations = cloneRaw(fa.Recommendations)
		fa.Issues = cloneRaw(fa.Issues)
		out.FeasibilityAnalysis = &fa
	}
	return &out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

// Request is the payload sent to the estimation service. The slices are
// serialized as-is; their shape is owned by the caller.
type Request struct {
	Classification interface{} `json:"classification"`
	Exterior       interface{} `json:"exterior"`
	Interior       interface{} `json:"interior"`
}
