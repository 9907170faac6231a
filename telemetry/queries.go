package telemetry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (db *SQLStore) LatestFix(trolley string, lookback time.Duration) (*Fix, error) {
	cutoff := fmtTime(time.Now().Add(-lookback))
	row := db.QueryRow(db.Q(`SELECT recorded_at, trolley, latitude, longitude, origin, destination
		FROM position_fixes WHERE trolley=? AND recorded_at>=?
		ORDER BY recorded_at DESC, id DESC LIMIT 1`), trolley, cutoff)

	var f Fix
	var recordedAt any
	err := row.Scan(&recordedAt, &f.Trolley, &f.Lat, &f.Lon, &f.Origin, &f.Destination)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("latest fix for %s: %w", trolley, err)
	}
	f.RecordedAt = parseTime(recordedAt)
	return &f, nil
}

func (db *SQLStore) CarriedOrders(trolley string, lookback time.Duration) ([]string, error) {
	return db.distinctLinks(`SELECT DISTINCT child FROM carriage_links WHERE parent=? AND recorded_at>=? ORDER BY child`, trolley, lookback)
}

func (db *SQLStore) CarriersOf(order string, lookback time.Duration) ([]string, error) {
	return db.distinctLinks(`SELECT DISTINCT parent FROM carriage_links WHERE child=? AND recorded_at>=? ORDER BY parent`, order, lookback)
}

func (db *SQLStore) distinctLinks(query, key string, lookback time.Duration) ([]string, error) {
	cutoff := fmtTime(time.Now().Add(-lookback))
	rows, err := db.Query(db.Q(query), key, cutoff)
	if err != nil {
		return nil, fmt.Errorf("carriage links for %s: %w", key, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func (db *SQLStore) LatestDeliveries(vehicle, customer string, lookback time.Duration) ([]Delivery, error) {
	cutoff := fmtTime(time.Now().Add(-lookback))
	rows, err := db.Query(db.Q(`SELECT recorded_at, order_id, supplier, customer, vehicle
		FROM delivery_records WHERE vehicle=? AND customer=? AND recorded_at>=?
		ORDER BY recorded_at ASC, id ASC`), vehicle, customer, cutoff)
	if err != nil {
		return nil, fmt.Errorf("deliveries for %s at %s: %w", vehicle, customer, err)
	}
	defer rows.Close()

	// Last record per order wins; rows arrive oldest first.
	latest := make(map[string]Delivery)
	var order []string
	for rows.Next() {
		var d Delivery
		var recordedAt any
		if err := rows.Scan(&recordedAt, &d.OrderID, &d.Supplier, &d.Customer, &d.Vehicle); err != nil {
			return nil, err
		}
		d.RecordedAt = parseTime(recordedAt)
		if _, seen := latest[d.OrderID]; !seen {
			order = append(order, d.OrderID)
		}
		latest[d.OrderID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, ErrNoData
	}

	out := make([]Delivery, 0, len(latest))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

func (db *SQLStore) LatestTransitEvent(trolley string, lookback time.Duration) (*TransitEvent, error) {
	return db.latestTransit(`SELECT recorded_at, trolley, state, location FROM transit_events
		WHERE trolley=? AND recorded_at>=? ORDER BY recorded_at DESC, id DESC LIMIT 1`, trolley, lookback)
}

func (db *SQLStore) LatestDeparture(trolley string, lookback time.Duration) (*TransitEvent, error) {
	return db.latestTransit(`SELECT recorded_at, trolley, state, location FROM transit_events
		WHERE trolley=? AND state='out' AND recorded_at>=? ORDER BY recorded_at DESC, id DESC LIMIT 1`, trolley, lookback)
}

func (db *SQLStore) latestTransit(query, trolley string, lookback time.Duration) (*TransitEvent, error) {
	cutoff := fmtTime(time.Now().Add(-lookback))
	row := db.QueryRow(db.Q(query), trolley, cutoff)

	var e TransitEvent
	var recordedAt any
	err := row.Scan(&recordedAt, &e.Trolley, &e.State, &e.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("transit event for %s: %w", trolley, err)
	}
	e.RecordedAt = parseTime(recordedAt)
	return &e, nil
}
