package livestate

import "time"

// Movement states as reported on trolley snapshots.
const (
	StateUnknown = "unknown"
	StateMoving  = "moving"
	StateAtRest  = "at_rest"
)

// Snapshot is the last observed situation of one trolley, refreshed
// every poll cycle.
type Snapshot struct {
	Trolley          string    `json:"trolley"`
	State            string    `json:"state"`
	Location         string    `json:"location,omitempty"`    // at-rest location
	Origin           string    `json:"origin,omitempty"`      // current leg
	Destination      string    `json:"destination,omitempty"` // current leg
	FractionComplete float64   `json:"fraction_complete"`
	RemainingSeconds float64   `json:"remaining_seconds"`
	Orders           []string  `json:"orders,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}
