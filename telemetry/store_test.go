package telemetry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"supplytrack/config"
)

func testDB(t *testing.T) *SQLStore {
	t.Helper()
	db, err := Open(&config.TelemetryConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLatestFix(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	older := &Fix{RecordedAt: now.Add(-2 * time.Minute), Trolley: "trolley_1", Lat: 52.2091, Lon: 0.0871, Origin: "Supplier", Destination: "Robot_Lab"}
	newer := &Fix{RecordedAt: now.Add(-30 * time.Second), Trolley: "trolley_1", Lat: 52.2093, Lon: 0.0873, Origin: "Supplier", Destination: "Robot_Lab"}
	other := &Fix{RecordedAt: now, Trolley: "trolley_2", Lat: 52.2095, Lon: 0.0876, Origin: "Robot_Lab", Destination: "Supplier"}
	for _, f := range []*Fix{older, newer, other} {
		if err := db.RecordFix(f); err != nil {
			t.Fatalf("RecordFix: %v", err)
		}
	}

	got, err := db.LatestFix("trolley_1", 10*time.Minute)
	if err != nil {
		t.Fatalf("LatestFix: %v", err)
	}
	if got.Lat != newer.Lat || got.Destination != "Robot_Lab" {
		t.Errorf("LatestFix = %+v, want most recent trolley_1 fix", got)
	}
}

func TestLatestFixWindow(t *testing.T) {
	db := testDB(t)
	old := &Fix{RecordedAt: time.Now().Add(-time.Hour), Trolley: "trolley_1", Lat: 1, Lon: 1}
	if err := db.RecordFix(old); err != nil {
		t.Fatalf("RecordFix: %v", err)
	}

	if _, err := db.LatestFix("trolley_1", time.Minute); !errors.Is(err, ErrNoData) {
		t.Errorf("LatestFix outside window err = %v, want ErrNoData", err)
	}
	if _, err := db.LatestFix("trolley_1", 2*time.Hour); err != nil {
		t.Errorf("LatestFix inside window: %v", err)
	}
}

func TestCarriageLookups(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	links := []CarriageLink{
		{RecordedAt: now.Add(-time.Minute), Parent: "trolley_1", Child: "ORD-1"},
		{RecordedAt: now.Add(-time.Minute), Parent: "trolley_1", Child: "ORD-2"},
		{RecordedAt: now.Add(-30 * time.Second), Parent: "trolley_1", Child: "ORD-1"}, // duplicate link
		{RecordedAt: now.Add(-time.Minute), Parent: "trolley_2", Child: "ORD-3"},
	}
	for i := range links {
		if err := db.RecordCarriageLink(&links[i]); err != nil {
			t.Fatalf("RecordCarriageLink: %v", err)
		}
	}

	orders, err := db.CarriedOrders("trolley_1", time.Hour)
	if err != nil {
		t.Fatalf("CarriedOrders: %v", err)
	}
	if len(orders) != 2 || orders[0] != "ORD-1" || orders[1] != "ORD-2" {
		t.Errorf("CarriedOrders = %v, want [ORD-1 ORD-2]", orders)
	}

	parents, err := db.CarriersOf("ORD-3", time.Hour)
	if err != nil {
		t.Fatalf("CarriersOf: %v", err)
	}
	if len(parents) != 1 || parents[0] != "trolley_2" {
		t.Errorf("CarriersOf = %v, want [trolley_2]", parents)
	}

	if _, err := db.CarriedOrders("trolley_9", time.Hour); !errors.Is(err, ErrNoData) {
		t.Errorf("CarriedOrders(unknown) err = %v, want ErrNoData", err)
	}
}

func TestLatestDeliveriesLastPerOrder(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	records := []Delivery{
		{RecordedAt: now.Add(-3 * time.Minute), OrderID: "ORD-7", Supplier: "Supplier", Customer: "Robot_Lab", Vehicle: "trolley_2"},
		{RecordedAt: now.Add(-time.Minute), OrderID: "ORD-7", Supplier: "3D_Printing", Customer: "Robot_Lab", Vehicle: "trolley_2"},
		{RecordedAt: now.Add(-2 * time.Minute), OrderID: "ORD-8", Supplier: "Supplier", Customer: "Robot_Lab", Vehicle: "trolley_2"},
		{RecordedAt: now.Add(-time.Minute), OrderID: "ORD-9", Supplier: "Supplier", Customer: "Design_Studio", Vehicle: "trolley_2"}, // other customer
		{RecordedAt: now.Add(-time.Minute), OrderID: "ORD-10", Supplier: "Supplier", Customer: "Robot_Lab", Vehicle: "trolley_1"},    // other vehicle
	}
	for i := range records {
		if err := db.RecordDelivery(&records[i]); err != nil {
			t.Fatalf("RecordDelivery: %v", err)
		}
	}

	got, err := db.LatestDeliveries("trolley_2", "Robot_Lab", time.Hour)
	if err != nil {
		t.Fatalf("LatestDeliveries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LatestDeliveries = %d records, want 2", len(got))
	}
	byOrder := make(map[string]Delivery)
	for _, d := range got {
		byOrder[d.OrderID] = d
	}
	if byOrder["ORD-7"].Supplier != "3D_Printing" {
		t.Errorf("ORD-7 supplier = %q, want last-by-time 3D_Printing", byOrder["ORD-7"].Supplier)
	}
	if byOrder["ORD-8"].Supplier != "Supplier" {
		t.Errorf("ORD-8 supplier = %q, want Supplier", byOrder["ORD-8"].Supplier)
	}
}

func TestTransitEventQueries(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	events := []TransitEvent{
		{RecordedAt: now.Add(-10 * time.Minute), Trolley: "trolley_1", State: StateDeparted, Location: "Supplier"},
		{RecordedAt: now.Add(-5 * time.Minute), Trolley: "trolley_1", State: StateArrived, Location: "Robot_Lab"},
	}
	for i := range events {
		if err := db.RecordTransitEvent(&events[i]); err != nil {
			t.Fatalf("RecordTransitEvent: %v", err)
		}
	}

	latest, err := db.LatestTransitEvent("trolley_1", time.Hour)
	if err != nil {
		t.Fatalf("LatestTransitEvent: %v", err)
	}
	if latest.State != StateArrived || latest.Location != "Robot_Lab" {
		t.Errorf("latest = %+v, want arrival at Robot_Lab", latest)
	}

	dep, err := db.LatestDeparture("trolley_1", time.Hour)
	if err != nil {
		t.Fatalf("LatestDeparture: %v", err)
	}
	if dep.State != StateDeparted || dep.Location != "Supplier" {
		t.Errorf("departure = %+v, want departure from Supplier", dep)
	}

	if _, err := db.LatestTransitEvent("trolley_9", time.Hour); !errors.Is(err, ErrNoData) {
		t.Errorf("LatestTransitEvent(unknown) err = %v, want ErrNoData", err)
	}
}

func TestRecordTransitEventBadState(t *testing.T) {
	db := testDB(t)
	err := db.RecordTransitEvent(&TransitEvent{RecordedAt: time.Now(), Trolley: "trolley_1", State: "sideways", Location: "Supplier"})
	if err == nil {
		t.Error("RecordTransitEvent accepted bad state")
	}
}

func TestOperators(t *testing.T) {
	db := testDB(t)

	exists, err := db.OperatorExists()
	if err != nil {
		t.Fatalf("OperatorExists: %v", err)
	}
	if exists {
		t.Error("OperatorExists = true on fresh db")
	}

	if err := db.CreateOperator("admin", "hash"); err != nil {
		t.Fatalf("CreateOperator: %v", err)
	}
	op, err := db.GetOperator("admin")
	if err != nil {
		t.Fatalf("GetOperator: %v", err)
	}
	if op.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q", op.PasswordHash)
	}
}
