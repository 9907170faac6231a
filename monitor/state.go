package monitor

import (
	"errors"
	"fmt"
	"time"

	"supplytrack/telemetry"
)

// State is a trolley's movement state, derived each cycle from its most
// recent arrival/departure event.
type State int

const (
	StateUnknown State = iota
	StateMoving
	StateAtRest
)

func (s State) String() string {
	switch s {
	case StateMoving:
		return "moving"
	case StateAtRest:
		return "at_rest"
	default:
		return "unknown"
	}
}

// DwellSentinel is the dwell time assumed when no departure event is
// found in the lookback window: long enough that delivery resolution
// covers the whole plausible dwell.
const DwellSentinel = 1000 * time.Second

// StateMonitor derives movement state and dwell time from the transit
// event feed.
type StateMonitor struct {
	store    telemetry.Store
	lookback time.Duration
}

func NewStateMonitor(store telemetry.Store, lookback time.Duration) *StateMonitor {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &StateMonitor{store: store, lookback: lookback}
}

// Current returns the trolley's state and the event that produced it.
// With no event in the window the state is Unknown and the event nil.
func (m *StateMonitor) Current(trolley string) (State, *telemetry.TransitEvent, error) {
	event, err := m.store.LatestTransitEvent(trolley, m.lookback)
	if errors.Is(err, telemetry.ErrNoData) {
		return StateUnknown, nil, nil
	}
	if err != nil {
		return StateUnknown, nil, err
	}

	switch event.State {
	case telemetry.StateDeparted:
		return StateMoving, event, nil
	case telemetry.StateArrived:
		return StateAtRest, event, nil
	default:
		return StateUnknown, nil, fmt.Errorf("monitor: unrecognized transit state %q for %s", event.State, trolley)
	}
}

// Dwell returns how long the trolley has been at rest since its last
// departure, and the location that departure left from. With no
// departure on record the sentinel dwell and an empty location are
// returned.
func (m *StateMonitor) Dwell(trolley string) (time.Duration, string, error) {
	dep, err := m.store.LatestDeparture(trolley, m.lookback)
	if errors.Is(err, telemetry.ErrNoData) {
		return DwellSentinel, "", nil
	}
	if err != nil {
		return 0, "", err
	}
	return time.Since(dep.RecordedAt), dep.Location, nil
}
