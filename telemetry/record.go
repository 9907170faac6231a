package telemetry

import "fmt"

// Write side. The production feed lands through external collectors;
// these methods back the commissioning endpoints and tests.

func (db *SQLStore) RecordFix(f *Fix) error {
	_, err := db.Exec(db.Q(`INSERT INTO position_fixes (recorded_at, trolley, latitude, longitude, origin, destination)
		VALUES (?, ?, ?, ?, ?, ?)`),
		fmtTime(f.RecordedAt), f.Trolley, f.Lat, f.Lon, f.Origin, f.Destination)
	if err != nil {
		return fmt.Errorf("record fix: %w", err)
	}
	return nil
}

func (db *SQLStore) RecordTransitEvent(e *TransitEvent) error {
	if e.State != StateArrived && e.State != StateDeparted {
		return fmt.Errorf("record transit event: bad state %q", e.State)
	}
	_, err := db.Exec(db.Q(`INSERT INTO transit_events (recorded_at, trolley, state, location)
		VALUES (?, ?, ?, ?)`),
		fmtTime(e.RecordedAt), e.Trolley, e.State, e.Location)
	if err != nil {
		return fmt.Errorf("record transit event: %w", err)
	}
	return nil
}

func (db *SQLStore) RecordCarriageLink(l *CarriageLink) error {
	_, err := db.Exec(db.Q(`INSERT INTO carriage_links (recorded_at, parent, child)
		VALUES (?, ?, ?)`),
		fmtTime(l.RecordedAt), l.Parent, l.Child)
	if err != nil {
		return fmt.Errorf("record carriage link: %w", err)
	}
	return nil
}

func (db *SQLStore) RecordDelivery(d *Delivery) error {
	_, err := db.Exec(db.Q(`INSERT INTO delivery_records (recorded_at, order_id, supplier, customer, vehicle)
		VALUES (?, ?, ?, ?, ?)`),
		fmtTime(d.RecordedAt), d.OrderID, d.Supplier, d.Customer, d.Vehicle)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}
