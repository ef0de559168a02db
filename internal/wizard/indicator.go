package wizard

// MarkerState is the display state of one step marker
type MarkerState string

const (
	MarkerCompleted MarkerState = "completed"
	MarkerActive    MarkerState = "active"
	MarkerLocked    MarkerState = "locked"
)

// Marker represents one step in the progress indicator
type Marker struct {
	Step      int         `json:"step"`
	Name      string      `json:"name"`
	State     MarkerState `json:"state"`
	Clickable bool        `json:"clickable"`
}

// Progress represents the overall wizard progress
type Progress struct {
	CurrentStep     int      `json:"current_step"`
	TotalSteps      int      `json:"total_steps"`
	PercentComplete float64  `json:"percent_complete"`
	Markers         []Marker `json:"markers"`
}

// Indicator renders one marker per step: steps before currentStep are
// completed, currentStep is active, later steps are locked.
func Indicator(currentStep, totalSteps int) []Marker {
	names := stepNames()
	markers := make([]Marker, 0, totalSteps)
	for n := 1; n <= totalSteps; n++ {
		m := Marker{Step: n, Name: names[n]}
		switch {
		case n < currentStep:
			m.State = MarkerCompleted
		case n == currentStep:
			m.State = MarkerActive
		default:
			m.State = MarkerLocked
		}
		m.Clickable = m.State != MarkerLocked
		markers = append(markers, m)
	}
	return markers
}

// NewProgress builds the indicator model for a state.
func NewProgress(st State) Progress {
	percent := 0.0
	if st.TotalSteps > 0 {
		percent = float64(st.CurrentStep-1) / float64(st.TotalSteps) * 100
	}
	if st.IsFormCompleted {
		percent = 100
	}
	return Progress{
		CurrentStep:     st.CurrentStep,
		TotalSteps:      st.TotalSteps,
		PercentComplete: percent,
		Markers:         Indicator(st.CurrentStep, st.TotalSteps),
	}
}

// Click jumps to the marker's step when it is clickable. Locked markers do nothing.
func Click(s *Store, m Marker) {
	if !m.Clickable {
		return
	}
	s.GoToStep(m.Step)
}

func stepNames() map[int]string {
	names := make(map[int]string, TotalSteps)
	for _, step := range Steps() {
		names[step.Number()] = step.Name()
	}
	return names
}
