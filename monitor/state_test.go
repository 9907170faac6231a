package monitor

import (
	"errors"
	"testing"
	"time"

	"supplytrack/telemetry"
)

func TestCurrentState(t *testing.T) {
	cases := []struct {
		name    string
		event   *telemetry.TransitEvent
		want    State
		wantErr bool
	}{
		{"departed", &telemetry.TransitEvent{Trolley: "trolley_1", State: telemetry.StateDeparted, Location: "Robot_Lab"}, StateMoving, false},
		{"arrived", &telemetry.TransitEvent{Trolley: "trolley_1", State: telemetry.StateArrived, Location: "Supplier"}, StateAtRest, false},
		{"no data", nil, StateUnknown, false},
		{"garbage state", &telemetry.TransitEvent{Trolley: "trolley_1", State: "sideways"}, StateUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMockStore()
			if tc.event != nil {
				store.transit["trolley_1"] = tc.event
			}
			sm := NewStateMonitor(store, time.Hour)

			state, event, err := sm.Current("trolley_1")
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if state != tc.want {
				t.Fatalf("state = %v, want %v", state, tc.want)
			}
			if tc.event == nil && event != nil {
				t.Fatal("expected nil event for unknown state")
			}
			if tc.event != nil && event.Location != tc.event.Location {
				t.Fatalf("event location = %q, want %q", event.Location, tc.event.Location)
			}
		})
	}
}

func TestDwell(t *testing.T) {
	store := newMockStore()
	store.departures["trolley_1"] = &telemetry.TransitEvent{
		Trolley:    "trolley_1",
		State:      telemetry.StateDeparted,
		Location:   "Design_Studio",
		RecordedAt: time.Now().Add(-5 * time.Minute),
	}
	sm := NewStateMonitor(store, time.Hour)

	dwell, from, err := sm.Dwell("trolley_1")
	if err != nil {
		t.Fatal(err)
	}
	if from != "Design_Studio" {
		t.Fatalf("departure location = %q, want Design_Studio", from)
	}
	if dwell < 5*time.Minute || dwell > 5*time.Minute+5*time.Second {
		t.Fatalf("dwell = %v, want about 5m", dwell)
	}
}

func TestDwellSentinel(t *testing.T) {
	sm := NewStateMonitor(newMockStore(), time.Hour)

	dwell, from, err := sm.Dwell("trolley_1")
	if err != nil {
		t.Fatal(err)
	}
	if dwell != DwellSentinel {
		t.Fatalf("dwell = %v, want sentinel %v", dwell, DwellSentinel)
	}
	if from != "" {
		t.Fatalf("departure location = %q, want empty", from)
	}
}

func TestCurrentPropagatesStoreError(t *testing.T) {
	store := newMockStore()
	store.transitErr = errors.New("connection refused")
	sm := NewStateMonitor(store, time.Hour)

	if _, _, err := sm.Current("trolley_1"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
