package www

import (
	"encoding/json"
	"net/http"
	"time"

	"supplytrack/telemetry"
)

// Telemetry injection endpoints. In production the collectors write
// straight to the database; these exist for commissioning a new site
// and for exercising the pipeline from the bench.

func (h *Handlers) apiRecordFix(w http.ResponseWriter, r *http.Request) {
	var fix telemetry.Fix
	if err := json.NewDecoder(r.Body).Decode(&fix); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if fix.Trolley == "" || fix.Destination == "" {
		h.jsonError(w, "trolley and destination required", http.StatusBadRequest)
		return
	}
	if fix.RecordedAt.IsZero() {
		fix.RecordedAt = time.Now().UTC()
	}
	if err := h.engine.Store().RecordFix(&fix); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.RecordTelemetry("fix", fix.Trolley, h.getUsername(r))
	h.jsonOK(w, fix)
}

func (h *Handlers) apiRecordTransitEvent(w http.ResponseWriter, r *http.Request) {
	var event telemetry.TransitEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if event.Trolley == "" || event.Location == "" {
		h.jsonError(w, "trolley and location required", http.StatusBadRequest)
		return
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC()
	}
	if err := h.engine.Store().RecordTransitEvent(&event); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.engine.RecordTelemetry("transit", event.Trolley, h.getUsername(r))
	h.jsonOK(w, event)
}

func (h *Handlers) apiRecordCarriageLink(w http.ResponseWriter, r *http.Request) {
	var link telemetry.CarriageLink
	if err := json.NewDecoder(r.Body).Decode(&link); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if link.Parent == "" || link.Child == "" {
		h.jsonError(w, "parent and child required", http.StatusBadRequest)
		return
	}
	if link.RecordedAt.IsZero() {
		link.RecordedAt = time.Now().UTC()
	}
	if err := h.engine.Store().RecordCarriageLink(&link); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.RecordTelemetry("carriage", link.Parent, h.getUsername(r))
	h.jsonOK(w, link)
}

func (h *Handlers) apiRecordDelivery(w http.ResponseWriter, r *http.Request) {
	var d telemetry.Delivery
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if d.OrderID == "" || d.Vehicle == "" || d.Customer == "" {
		h.jsonError(w, "order, vehicle and customer required", http.StatusBadRequest)
		return
	}
	if d.RecordedAt.IsZero() {
		d.RecordedAt = time.Now().UTC()
	}
	if err := h.engine.Store().RecordDelivery(&d); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.RecordTelemetry("delivery", d.Vehicle, h.getUsername(r))
	h.jsonOK(w, d)
}
