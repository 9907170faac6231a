// Package telemetry is the query surface over the facility telemetry
// feed: position fixes, arrival/departure events, carriage
// associations, and delivery records. The monitor consumes it through
// the Store interface; SQLStore is the bundled implementation.
package telemetry

import (
	"errors"
	"time"
)

// ErrNoData is returned when a query matches no rows inside its
// lookback window. Callers treat it as "nothing to do this cycle".
var ErrNoData = errors.New("telemetry: no data in window")

// Transit event states as recorded by the dock sensors.
const (
	StateDeparted = "out"
	StateArrived  = "in"
)

// Fix is one GPS position sample for a trolley, with the origin and
// destination the trolley reported for its current leg.
type Fix struct {
	RecordedAt  time.Time `json:"recorded_at"`
	Trolley     string    `json:"trolley"`
	Lat         float64   `json:"latitude"`
	Lon         float64   `json:"longitude"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
}

// TransitEvent is one discrete departure ("out") or arrival ("in")
// event for a trolley at a location.
type TransitEvent struct {
	RecordedAt time.Time `json:"recorded_at"`
	Trolley    string    `json:"trolley"`
	State      string    `json:"state"`
	Location   string    `json:"location"`
}

// CarriageLink associates an order (child) with the trolley carrying it
// (parent).
type CarriageLink struct {
	RecordedAt time.Time `json:"recorded_at"`
	Parent     string    `json:"parent"`
	Child      string    `json:"child"`
}

// Delivery is one delivery record: an order handed over by a vehicle to
// a customer location, sourced from a supplier location.
type Delivery struct {
	RecordedAt time.Time `json:"recorded_at"`
	OrderID    string    `json:"order"`
	Supplier   string    `json:"supplier"`
	Customer   string    `json:"customer"`
	Vehicle    string    `json:"vehicle"`
}

// Store is the read surface the monitor needs. Every method scopes its
// query to "now minus lookback"; an empty result is ErrNoData.
type Store interface {
	// LatestFix returns the most recent position fix for a trolley.
	LatestFix(trolley string, lookback time.Duration) (*Fix, error)

	// CarriedOrders returns the distinct order ids linked to a trolley
	// via parent->child carriage records.
	CarriedOrders(trolley string, lookback time.Duration) ([]string, error)

	// CarriersOf is the reverse association: distinct parents linked to
	// an order via child->parent records.
	CarriersOf(order string, lookback time.Duration) ([]string, error)

	// LatestDeliveries returns the most recent delivery record per
	// order for a (vehicle, customer) pair, last-by-time wins.
	LatestDeliveries(vehicle, customer string, lookback time.Duration) ([]Delivery, error)

	// LatestTransitEvent returns the most recent arrival/departure
	// event for a trolley.
	LatestTransitEvent(trolley string, lookback time.Duration) (*TransitEvent, error)

	// LatestDeparture returns the most recent departure event for a
	// trolley.
	LatestDeparture(trolley string, lookback time.Duration) (*TransitEvent, error)
}
