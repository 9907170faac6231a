package engine

const (
	EventTrolleyStateChanged EventType = iota + 1
	EventTrolleyError
	EventNotificationSent
	EventNotificationSuppressed
	EventTelemetryRecorded
	EventMessagingConnected
	EventMessagingDisconnected
)

// --- Event payloads ---

type TrolleyStateChangedEvent struct {
	Trolley  string `json:"trolley"`
	State    string `json:"state"`
	Location string `json:"location,omitempty"`
}

type TrolleyErrorEvent struct {
	Trolley string `json:"trolley"`
	Detail  string `json:"detail"`
}

type NotificationSentEvent struct {
	Order    string `json:"order"`
	Vehicle  string `json:"vehicle"`
	Customer string `json:"customer"`
	Arrival  bool   `json:"arrival"`
	Resends  int    `json:"resends"`
}

type NotificationSuppressedEvent struct {
	Order   string `json:"order"`
	Vehicle string `json:"vehicle"`
	Resends int    `json:"resends"`
}

// TelemetryRecordedEvent marks a record written through the web API.
type TelemetryRecordedEvent struct {
	Kind    string `json:"kind"` // "fix", "transit", "carriage", "delivery"
	Trolley string `json:"trolley,omitempty"`
	Actor   string `json:"actor,omitempty"`
}

type ConnectionEvent struct {
	Detail string `json:"detail"`
}
