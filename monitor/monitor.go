// Package monitor drives the poll cycle: per trolley it derives the
// movement state, computes leg progress, resolves the affected orders,
// and hands notifications to the dispatcher. One trolley's failure
// never stops the loop or touches the other trolleys.
package monitor

import (
	"errors"
	"log"
	"time"

	"supplytrack/geo"
	"supplytrack/livestate"
	"supplytrack/notify"
	"supplytrack/refdata"
	"supplytrack/telemetry"
)

// NotificationSink is the dispatcher capability the monitor needs.
type NotificationSink interface {
	Dispatch(n notify.Notification) error
	EvictStale(maxAge time.Duration) int
}

// Emitter receives cycle outcomes for the event stream. May be nil.
type Emitter interface {
	EmitTrolleyState(trolley, state, location string)
	EmitTrolleyError(trolley string, detail string)
}

type Config struct {
	Store         telemetry.Store
	Refdata       *refdata.Table
	Dispatcher    NotificationSink
	Live          *livestate.Manager // optional
	Emitter       Emitter            // optional
	Site          string
	Trolleys      []string
	PollInterval  time.Duration
	EventLookback time.Duration
}

type Monitor struct {
	store      telemetry.Store
	ref        *refdata.Table
	dispatcher NotificationSink
	live       *livestate.Manager
	emitter    Emitter
	site       string
	trolleys   []string
	interval   time.Duration
	lookback   time.Duration

	states   *StateMonitor
	resolver *Resolver

	// Orders last resolved outbound per trolley, confirmed as arrived
	// once the trolley comes to rest away from the local facility.
	lastOutbound map[string][]string

	stopChan chan struct{}
}

func New(cfg Config, currentOrder string) *Monitor {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	lookback := cfg.EventLookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &Monitor{
		store:        cfg.Store,
		ref:          cfg.Refdata,
		dispatcher:   cfg.Dispatcher,
		live:         cfg.Live,
		emitter:      cfg.Emitter,
		site:         cfg.Site,
		trolleys:     cfg.Trolleys,
		interval:     interval,
		lookback:     lookback,
		states:       NewStateMonitor(cfg.Store, lookback),
		resolver:     NewResolver(cfg.Store, currentOrder),
		lastOutbound: make(map[string][]string),
		stopChan:     make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.run()
}

func (m *Monitor) Stop() {
	select {
	case m.stopChan <- struct{}{}:
	default:
	}
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.Cycle()
		}
	}
}

// Cycle processes every configured trolley once.
func (m *Monitor) Cycle() {
	for _, trolley := range m.trolleys {
		m.runTrolley(trolley)
	}
	m.dispatcher.EvictStale(m.lookback)
}

// runTrolley is the per-trolley isolation boundary: errors and panics
// are logged here and abort only this trolley's iteration.
func (m *Monitor) runTrolley(trolley string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("monitor: trolley %s: panic: %v", trolley, r)
			if m.emitter != nil {
				m.emitter.EmitTrolleyError(trolley, "panic during processing")
			}
		}
	}()

	if err := m.processTrolley(trolley); err != nil {
		log.Printf("monitor: trolley %s: %v", trolley, err)
		if m.emitter != nil {
			m.emitter.EmitTrolleyError(trolley, err.Error())
		}
	}
}

func (m *Monitor) processTrolley(trolley string) error {
	state, event, err := m.states.Current(trolley)
	if err != nil {
		return err
	}
	if state == StateUnknown {
		log.Printf("monitor: no data for trolley %s", trolley)
		m.updateLive(livestate.Snapshot{Trolley: trolley, State: livestate.StateUnknown})
		m.emitState(trolley, state, "")
		return nil
	}

	elapsed := time.Since(event.RecordedAt)

	switch state {
	case StateMoving:
		return m.processMoving(trolley, event, elapsed)
	case StateAtRest:
		return m.processAtRest(trolley, event)
	}
	return nil
}

func (m *Monitor) processMoving(trolley string, event *telemetry.TransitEvent, elapsed time.Duration) error {
	fix, err := m.store.LatestFix(trolley, elapsed)
	if errors.Is(err, telemetry.ErrNoData) {
		log.Printf("monitor: trolley %s moving but no fix in window", trolley)
		return nil
	}
	if err != nil {
		return err
	}

	origin, err := m.ref.Resolve(event.Location)
	if err != nil {
		return err
	}
	destination, err := m.ref.Resolve(fix.Destination)
	if err != nil {
		return err
	}

	originCoord, err := m.ref.Coord(origin)
	if err != nil {
		return err
	}
	destCoord, err := m.ref.Coord(destination)
	if err != nil {
		return err
	}

	prog, err := geo.LegProgress(originCoord, destCoord, geo.Coord{Lat: fix.Lat, Lon: fix.Lon})
	if err != nil {
		return err
	}
	planned, err := m.ref.LegDuration(origin, destination)
	if err != nil {
		return err
	}
	remaining := time.Duration(geo.RemainingTime(planned.Seconds(), prog) * float64(time.Second))

	m.emitState(trolley, StateMoving, origin)

	var notified []string
	if origin == m.site {
		orders, err := m.resolver.OutboundOrders(trolley, elapsed)
		if err != nil {
			return err
		}
		for _, order := range orders {
			m.dispatchQuiet(notify.Notification{
				Order:            order,
				Vehicle:          trolley,
				Supplier:         origin,
				Customer:         destination,
				Remaining:        remaining,
				FractionComplete: prog.FractionComplete,
			})
		}
		if len(orders) > 0 {
			m.lastOutbound[trolley] = orders
		}
		notified = orders
	}

	if destination == m.site {
		deliveries, err := m.resolver.InboundDeliveries(trolley, m.site, elapsed)
		if err != nil {
			return err
		}
		for _, d := range deliveries {
			m.dispatchQuiet(notify.Notification{
				Order:            d.OrderID,
				Vehicle:          trolley,
				Supplier:         d.Supplier,
				Customer:         destination,
				Remaining:        remaining,
				FractionComplete: prog.FractionComplete,
			})
			notified = append(notified, d.OrderID)
		}
	}

	m.updateLive(livestate.Snapshot{
		Trolley:          trolley,
		State:            livestate.StateMoving,
		Origin:           origin,
		Destination:      destination,
		FractionComplete: prog.FractionComplete,
		RemainingSeconds: remaining.Seconds(),
		Orders:           notified,
	})
	return nil
}

func (m *Monitor) processAtRest(trolley string, event *telemetry.TransitEvent) error {
	restLoc, err := m.ref.Resolve(event.Location)
	if err != nil {
		return err
	}

	dwell, departedFrom, err := m.states.Dwell(trolley)
	if err != nil {
		return err
	}

	m.emitState(trolley, StateAtRest, restLoc)

	var delivered []string
	switch {
	case restLoc == m.site:
		deliveries, err := m.resolver.InboundDeliveries(trolley, m.site, dwell)
		if err != nil {
			return err
		}
		for _, d := range deliveries {
			if m.dispatchQuiet(notify.Notification{
				Order:            d.OrderID,
				Vehicle:          trolley,
				Supplier:         d.Supplier,
				Customer:         restLoc,
				FractionComplete: 1,
				Arrival:          true,
			}) {
				delivered = append(delivered, d.OrderID)
			}
		}

	case departedFrom != "":
		from, err := m.ref.Resolve(departedFrom)
		if err != nil {
			return err
		}
		if from != m.site {
			break
		}
		// The trolley left here and is now at rest elsewhere: confirm
		// the orders it carried out as arrived.
		confirmed := true
		for _, order := range m.lastOutbound[trolley] {
			if !m.dispatchQuiet(notify.Notification{
				Order:            order,
				Vehicle:          trolley,
				Supplier:         from,
				Customer:         restLoc,
				FractionComplete: 1,
				Arrival:          true,
			}) {
				confirmed = false
				continue
			}
			delivered = append(delivered, order)
		}
		if confirmed {
			delete(m.lastOutbound, trolley)
		}
	}

	m.updateLive(livestate.Snapshot{
		Trolley:          trolley,
		State:            livestate.StateAtRest,
		Location:         restLoc,
		FractionComplete: 1,
		Orders:           delivered,
	})
	return nil
}

// dispatchQuiet sends one notification, logging bus failures without
// failing the trolley's cycle: the dispatcher's record is untouched on
// failure and the next cycle retries.
func (m *Monitor) dispatchQuiet(n notify.Notification) bool {
	if err := m.dispatcher.Dispatch(n); err != nil {
		log.Printf("monitor: dispatch order %s: %v", n.Order, err)
		return false
	}
	return true
}

func (m *Monitor) updateLive(s livestate.Snapshot) {
	if m.live != nil {
		m.live.Update(s)
	}
}

func (m *Monitor) emitState(trolley string, state State, location string) {
	if m.emitter != nil {
		m.emitter.EmitTrolleyState(trolley, state.String(), location)
	}
}
