package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

// --- Mock bus ---

type published struct {
	topic   string
	payload []byte
}

type mockBus struct {
	sent []published
	fail bool
}

func (m *mockBus) Publish(topic string, payload []byte) error {
	if m.fail {
		return fmt.Errorf("mock: broker unavailable")
	}
	m.sent = append(m.sent, published{topic, payload})
	return nil
}

func (m *mockBus) topics() []string {
	out := make([]string, len(m.sent))
	for i, p := range m.sent {
		out[i] = p.topic
	}
	return out
}

func delayNotification() Notification {
	return Notification{
		Order:            "ORD-1",
		Vehicle:          "trolley_1",
		Supplier:         "Supplier",
		Customer:         "Robot_Lab",
		Remaining:        90 * time.Second,
		FractionComplete: 0.5,
	}
}

// --- Tests ---

func TestDispatchDelayTopics(t *testing.T) {
	bus := &mockBus{}
	d := NewDispatcher(bus, nil, "Robot_Lab")

	if err := d.Dispatch(delayNotification()); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := []string{
		"Tracking/delivery/delays/",
		"Robot_Lab/Tracking/delivery/delays/",
		"MES/purchase/Robot_Lab/update/",
	}
	got := bus.topics()
	if len(got) != len(want) {
		t.Fatalf("published to %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDispatchDelayPayload(t *testing.T) {
	bus := &mockBus{}
	d := NewDispatcher(bus, nil, "Robot_Lab")

	n := delayNotification()
	n.Remaining = 89*time.Second + 700*time.Millisecond
	n.FractionComplete = 0.50444
	if err := d.Dispatch(n); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(bus.sent[0].payload, &msg); err != nil {
		t.Fatalf("unmarshal delay: %v", err)
	}
	if msg["remaining_time"].(float64) != 90 {
		t.Errorf("remaining_time = %v, want 90 (rounded)", msg["remaining_time"])
	}
	if msg["percentage"].(float64) != 0.504 {
		t.Errorf("percentage = %v, want 0.504 (3 decimals)", msg["percentage"])
	}
	if msg["supplier"] != "Supplier" || msg["customer"] != "Robot_Lab" {
		t.Errorf("endpoints = %v/%v", msg["supplier"], msg["customer"])
	}
	if msg["vehicle"] != "trolley_1" || msg["order"] != "ORD-1" {
		t.Errorf("identity = %v/%v", msg["vehicle"], msg["order"])
	}
	ts, _ := msg["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}

	// The non-arrival milestone carries no status field.
	var mes map[string]any
	if err := json.Unmarshal(bus.sent[2].payload, &mes); err != nil {
		t.Fatalf("unmarshal milestone: %v", err)
	}
	if _, has := mes["status"]; has {
		t.Error("non-arrival milestone has status field")
	}
	due, _ := mes["due"].(string)
	if _, err := time.Parse("2006-01-02T15:04:05", due); err != nil {
		t.Errorf("due %q has wrong layout: %v", due, err)
	}
	if strings.ContainsAny(due, "Z+") {
		t.Errorf("due %q carries a zone suffix", due)
	}
}

func TestDispatchArrival(t *testing.T) {
	bus := &mockBus{}
	d := NewDispatcher(bus, nil, "Robot_Lab")

	err := d.Dispatch(Notification{
		Order:            "ORD-7",
		Vehicle:          "trolley_2",
		Supplier:         "Supplier",
		Customer:         "Robot_Lab",
		FractionComplete: 1,
		Arrival:          true,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := []string{
		"MES/purchase/Robot_Lab/update/",
		"Robot_Lab/MES/purchase/Robot_Lab/update/",
	}
	got := bus.topics()
	if len(got) != len(want) {
		t.Fatalf("published to %v, want exactly %v (no delay message)", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	var mes map[string]any
	if err := json.Unmarshal(bus.sent[0].payload, &mes); err != nil {
		t.Fatalf("unmarshal milestone: %v", err)
	}
	if mes["status"] != "completed" {
		t.Errorf("status = %v, want completed", mes["status"])
	}
	if mes["name"] != "ORD-7" {
		t.Errorf("name = %v, want ORD-7", mes["name"])
	}
}

func TestDedupSuppressesSixthIdenticalSend(t *testing.T) {
	bus := &mockBus{}
	d := NewDispatcher(bus, nil, "Robot_Lab")

	n := delayNotification()
	for i := 0; i < 5; i++ {
		before := len(bus.sent)
		if err := d.Dispatch(n); err != nil {
			t.Fatalf("Dispatch %d: %v", i+1, err)
		}
		if len(bus.sent) == before {
			t.Fatalf("send %d was suppressed early", i+1)
		}
	}

	before := len(bus.sent)
	if err := d.Dispatch(n); err != nil {
		t.Fatalf("Dispatch 6: %v", err)
	}
	if len(bus.sent) != before {
		t.Errorf("6th identical send was not suppressed")
	}

	recs := d.Records()
	if len(recs) != 1 || recs[0].Resends != MaxResends {
		t.Errorf("records = %+v, want one capped record", recs)
	}
}

func TestDedupResetOnChangedField(t *testing.T) {
	bus := &mockBus{}
	d := NewDispatcher(bus, nil, "Robot_Lab")

	n := delayNotification()
	for i := 0; i < 6; i++ {
		d.Dispatch(n)
	}
	suppressedAt := len(bus.sent)

	n.FractionComplete = 0.65
	n.Remaining = 60 * time.Second
	if err := d.Dispatch(n); err != nil {
		t.Fatalf("Dispatch changed: %v", err)
	}
	if len(bus.sent) == suppressedAt {
		t.Fatal("changed payload still suppressed")
	}

	recs := d.Records()
	if len(recs) != 1 || recs[0].Resends != 0 {
		t.Errorf("records = %+v, want counter reset to 0", recs)
	}
}

func TestBusFailureLeavesRecordUntouched(t *testing.T) {
	bus := &mockBus{}
	d := NewDispatcher(bus, nil, "Robot_Lab")

	n := delayNotification()
	if err := d.Dispatch(n); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	recsBefore := d.Records()

	bus.fail = true
	if err := d.Dispatch(n); err == nil {
		t.Fatal("Dispatch succeeded with failing bus")
	}

	recsAfter := d.Records()
	if len(recsAfter) != 1 || recsAfter[0].Resends != recsBefore[0].Resends {
		t.Errorf("record changed on bus failure: %+v -> %+v", recsBefore, recsAfter)
	}

	// Bus recovers; the retry counts as the repeat it is.
	bus.fail = false
	if err := d.Dispatch(n); err != nil {
		t.Fatalf("Dispatch after recovery: %v", err)
	}
}

func TestEvictStale(t *testing.T) {
	bus := &mockBus{}
	d := NewDispatcher(bus, nil, "Robot_Lab")

	d.Dispatch(delayNotification())
	n2 := delayNotification()
	n2.Order = "ORD-2"
	d.Dispatch(n2)

	d.mu.Lock()
	d.records["ORD-1"].UpdatedAt = time.Now().Add(-48 * time.Hour)
	d.mu.Unlock()

	if n := d.EvictStale(24 * time.Hour); n != 1 {
		t.Errorf("EvictStale = %d, want 1", n)
	}
	recs := d.Records()
	if len(recs) != 1 || recs[0].Order != "ORD-2" {
		t.Errorf("records after eviction = %+v", recs)
	}
}
