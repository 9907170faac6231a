// Package notify composes delay and milestone messages for resolved
// order events, deduplicates repeated sends per order, and publishes
// them on the facility message bus.
package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxResends is the cap on consecutive identical notifications per
// order. Once reached, sends are suppressed until the normalized
// payload changes.
const MaxResends = 5

// Publisher is the message-bus capability the dispatcher needs.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Emitter receives dispatch outcomes. May be nil.
type Emitter interface {
	EmitNotificationSent(order, vehicle, customer string, arrival bool, resends int)
	EmitNotificationSuppressed(order, vehicle string, resends int)
}

// Record is the per-order dedup state.
type Record struct {
	ID        string    `json:"id"`
	Order     string    `json:"order"`
	Key       string    `json:"-"`
	Resends   int       `json:"resends"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Dispatcher struct {
	bus     Publisher
	emitter Emitter
	site    string

	mu      sync.Mutex
	records map[string]*Record
}

func NewDispatcher(bus Publisher, emitter Emitter, site string) *Dispatcher {
	return &Dispatcher{
		bus:     bus,
		emitter: emitter,
		site:    site,
		records: make(map[string]*Record),
	}
}

// Dispatch publishes the messages for one notification, subject to
// dedup suppression. A bus failure leaves the dedup record untouched so
// the next cycle retries.
//
// A delay notification publishes the delay message to the local and
// customer-scoped tracking topics plus a plain milestone to the local
// MES topic. An arrival publishes a completed milestone to the local
// and customer-scoped MES topics and no delay message.
func (d *Dispatcher) Dispatch(n Notification) error {
	key := n.dedupKey()

	d.mu.Lock()
	rec := d.records[n.Order]
	resends := 0
	if rec != nil && rec.Key == key {
		resends = rec.Resends + 1
	}
	if resends >= MaxResends {
		rec.Resends = MaxResends
		rec.UpdatedAt = time.Now()
		d.mu.Unlock()
		log.Printf("notify: suppressing repeat notification for order %s (vehicle %s)", n.Order, n.Vehicle)
		if d.emitter != nil {
			d.emitter.EmitNotificationSuppressed(n.Order, n.Vehicle, MaxResends)
		}
		return nil
	}
	d.mu.Unlock()

	if err := d.publish(n); err != nil {
		log.Printf("notify: publish for order %s failed: %v", n.Order, err)
		return err
	}

	d.mu.Lock()
	if rec != nil && rec.Key == key {
		rec.Resends = resends
		rec.UpdatedAt = time.Now()
	} else {
		d.records[n.Order] = &Record{
			ID:        uuid.New().String(),
			Order:     n.Order,
			Key:       key,
			Resends:   0,
			UpdatedAt: time.Now(),
		}
	}
	d.mu.Unlock()

	if d.emitter != nil {
		d.emitter.EmitNotificationSent(n.Order, n.Vehicle, n.Customer, n.Arrival, resends)
	}
	return nil
}

func (d *Dispatcher) publish(n Notification) error {
	now := time.Now().UTC()
	due := now.Add(n.Remaining)

	milestone := milestoneMessage{
		Name:     n.Order,
		Customer: n.Customer,
		Due:      due.Format(mesDueLayout),
	}

	if n.Arrival {
		milestone.Status = "completed"
		data, err := json.Marshal(milestone)
		if err != nil {
			return fmt.Errorf("encode milestone: %w", err)
		}
		for _, topic := range []string{mesTopic(d.site), customerMESTopic(n.Customer, d.site)} {
			if err := d.bus.Publish(topic, data); err != nil {
				return fmt.Errorf("publish %s: %w", topic, err)
			}
		}
		return nil
	}

	delay := delayMessage{
		RemainingTime: roundSeconds(n.Remaining),
		Supplier:      n.Supplier,
		Customer:      n.Customer,
		Percentage:    roundFraction(n.FractionComplete),
		Timestamp:     due.Format(time.RFC3339),
		Vehicle:       n.Vehicle,
		Order:         n.Order,
	}
	delayData, err := json.Marshal(delay)
	if err != nil {
		return fmt.Errorf("encode delay: %w", err)
	}
	for _, topic := range []string{delayTopic, customerDelayTopic(n.Customer)} {
		if err := d.bus.Publish(topic, delayData); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}

	milestoneData, err := json.Marshal(milestone)
	if err != nil {
		return fmt.Errorf("encode milestone: %w", err)
	}
	if err := d.bus.Publish(mesTopic(d.site), milestoneData); err != nil {
		return fmt.Errorf("publish %s: %w", mesTopic(d.site), err)
	}
	return nil
}

// Records returns a snapshot of the dedup records, most recent first.
func (d *Dispatcher) Records() []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		out = append(out, *r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].UpdatedAt.After(out[j-1].UpdatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Evict drops the dedup record for an order.
func (d *Dispatcher) Evict(order string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.records, order)
}

// EvictStale drops records not updated within maxAge. Delivered orders
// stop being dispatched, so their records age out here and the map
// stays bounded by recently active orders.
func (d *Dispatcher) EvictStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	d.mu.Lock()
	defer d.mu.Unlock()
	evicted := 0
	for order, rec := range d.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(d.records, order)
			evicted++
		}
	}
	return evicted
}
