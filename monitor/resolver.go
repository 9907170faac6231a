package monitor

import (
	"errors"
	"time"

	"supplytrack/telemetry"
)

// Safety margins added to resolution lookback windows to tolerate clock
// and telemetry skew between collectors.
const (
	carriageMargin = 750 * time.Second
	deliveryMargin = 100 * time.Second
)

// Resolver determines which orders a trolley's current activity
// concerns, from carriage associations and delivery records.
type Resolver struct {
	store        telemetry.Store
	currentOrder string
}

func NewResolver(store telemetry.Store, currentOrder string) *Resolver {
	return &Resolver{store: store, currentOrder: currentOrder}
}

// OutboundOrders returns the orders carried by a trolley on its current
// leg. The direct parent->child association is tried first; when it is
// empty, the reverse child->parent lookup for the configured current
// order serves as fallback. Duplicates are removed by the store.
func (r *Resolver) OutboundOrders(trolley string, elapsed time.Duration) ([]string, error) {
	window := elapsed + carriageMargin

	orders, err := r.store.CarriedOrders(trolley, window)
	if err == nil {
		return orders, nil
	}
	if !errors.Is(err, telemetry.ErrNoData) {
		return nil, err
	}

	orders, err = r.store.CarriersOf(r.currentOrder, window)
	if errors.Is(err, telemetry.ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// InboundDeliveries returns the latest delivery record per order for a
// trolley delivering to the local facility within the elapsed window.
func (r *Resolver) InboundDeliveries(trolley, customer string, elapsed time.Duration) ([]telemetry.Delivery, error) {
	deliveries, err := r.store.LatestDeliveries(trolley, customer, elapsed+deliveryMargin)
	if errors.Is(err, telemetry.ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}
