package domain

// NotificationSeverity classifies a notification for the delivery layer.
type NotificationSeverity string

// Severity values. Milestone notifications from the progress engine are
// always success.
const (
	SeveritySuccess NotificationSeverity = "success"
	SeverityInfo    NotificationSeverity = "info"
	SeverityWarning NotificationSeverity = "warning"
)

// Notification is a delivery-agnostic milestone message produced by a state
// transition. The engine only emits these as intents; delivery is an
// external, fire-and-forget concern.
type Notification struct {
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Severity NotificationSeverity `json:"severity"`
}
