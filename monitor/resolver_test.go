package monitor

import (
	"testing"
	"time"

	"supplytrack/telemetry"
)

func TestOutboundOrdersDirect(t *testing.T) {
	store := newMockStore()
	store.carried["trolley_1"] = []string{"order-7", "order-9"}
	r := NewResolver(store, "order-1")

	orders, err := r.OutboundOrders("trolley_1", 60*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 || orders[0] != "order-7" || orders[1] != "order-9" {
		t.Fatalf("orders = %v", orders)
	}
	if want := 60*time.Second + carriageMargin; store.lastCarriageWindow != want {
		t.Fatalf("carriage window = %v, want %v", store.lastCarriageWindow, want)
	}
}

func TestOutboundOrdersReverseFallback(t *testing.T) {
	store := newMockStore()
	store.carriers["order-1"] = []string{"order-3"}
	r := NewResolver(store, "order-1")

	orders, err := r.OutboundOrders("trolley_1", 60*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0] != "order-3" {
		t.Fatalf("orders = %v, want fallback result", orders)
	}
}

func TestOutboundOrdersNothingFound(t *testing.T) {
	r := NewResolver(newMockStore(), "order-1")

	orders, err := r.OutboundOrders("trolley_1", 60*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if orders != nil {
		t.Fatalf("orders = %v, want nil", orders)
	}
}

func TestInboundDeliveries(t *testing.T) {
	store := newMockStore()
	store.deliveries["trolley_1"] = []telemetry.Delivery{
		{OrderID: "order-4", Supplier: "Supplier", Customer: "Robot_Lab", Vehicle: "trolley_1"},
	}
	r := NewResolver(store, "order-1")

	deliveries, err := r.InboundDeliveries("trolley_1", "Robot_Lab", 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(deliveries) != 1 || deliveries[0].OrderID != "order-4" {
		t.Fatalf("deliveries = %v", deliveries)
	}
	if want := 30*time.Second + deliveryMargin; store.lastDeliveryWindow != want {
		t.Fatalf("delivery window = %v, want %v", store.lastDeliveryWindow, want)
	}
}

func TestInboundDeliveriesEmpty(t *testing.T) {
	r := NewResolver(newMockStore(), "order-1")

	deliveries, err := r.InboundDeliveries("trolley_1", "Robot_Lab", 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if deliveries != nil {
		t.Fatalf("deliveries = %v, want nil", deliveries)
	}
}
