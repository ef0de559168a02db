package wizard

// EventType names a view notification
type EventType string

const (
	EventScrollTop       EventType = "scroll_top"
	EventToast           EventType = "toast"
	EventEstimateUpdated EventType = "estimate_updated"
	EventFormCompleted   EventType = "form_completed"
)

// NoticeLevel is the severity of a toast
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient user-facing message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Event is pushed to the view of a session.
type Event struct {
	Type   EventType `json:"type"`
	Step   int       `json:"step,omitempty"`
	Notice *Notice   `json:"notice,omitempty"`
}

// Notifier receives view events. Implementations must not call back into
// the store synchronously.
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(event Event)

// Notify calls f(event)
func (f NotifierFunc) Notify(event Event) {
	f(event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
