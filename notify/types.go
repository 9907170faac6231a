package notify

import (
	"fmt"
	"math"
	"time"
)

// Notification is one resolved order event ready for dispatch: either a
// delay update for an order in transit, or an arrival confirmation.
type Notification struct {
	Order            string
	Vehicle          string
	Supplier         string
	Customer         string
	Remaining        time.Duration
	FractionComplete float64
	Arrival          bool
}

// delayMessage is the tracking-consumer payload. Field names are fixed
// by the downstream contract.
type delayMessage struct {
	RemainingTime int64   `json:"remaining_time"`
	Supplier      string  `json:"supplier"`
	Customer      string  `json:"customer"`
	Percentage    float64 `json:"percentage"`
	Timestamp     string  `json:"timestamp"`
	Vehicle       string  `json:"vehicle"`
	Order         string  `json:"order"`
}

// milestoneMessage is the MES payload. Due carries second precision and
// no zone suffix; Status is set only on arrivals.
type milestoneMessage struct {
	Name     string `json:"name"`
	Customer string `json:"customer"`
	Due      string `json:"due"`
	Status   string `json:"status,omitempty"`
}

const (
	delayTopic   = "Tracking/delivery/delays/"
	mesDueLayout = "2006-01-02T15:04:05"
)

func customerDelayTopic(customer string) string {
	return customer + "/" + delayTopic
}

func mesTopic(site string) string {
	return fmt.Sprintf("MES/purchase/%s/update/", site)
}

func customerMESTopic(customer, site string) string {
	return customer + "/" + mesTopic(site)
}

func roundSeconds(d time.Duration) int64 {
	return int64(math.Round(d.Seconds()))
}

func roundFraction(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// dedupKey is the normalized identity of a notification: every delay
// field except the timestamp.
func (n Notification) dedupKey() string {
	return fmt.Sprintf("%d|%s|%s|%.3f|%s|%s|%t",
		roundSeconds(n.Remaining), n.Supplier, n.Customer,
		roundFraction(n.FractionComplete), n.Vehicle, n.Order, n.Arrival)
}
