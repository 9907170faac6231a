package www

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"supplytrack/config"
)

func (h *Handlers) apiGetConfig(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.AppConfig())
}

func (h *Handlers) apiSaveSiteConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string   `json:"name"`
		Trolleys      []string `json:"trolleys"`
		CurrentOrder  string   `json:"current_order"`
		PollInterval  string   `json:"poll_interval"`
		EventLookback string   `json:"event_lookback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	cfg.Lock()
	if req.Name != "" {
		cfg.Site.Name = req.Name
	}
	if len(req.Trolleys) > 0 {
		cfg.Site.Trolleys = req.Trolleys
	}
	if req.CurrentOrder != "" {
		cfg.Site.CurrentOrder = req.CurrentOrder
	}
	if d, err := time.ParseDuration(req.PollInterval); err == nil && d > 0 {
		cfg.Site.PollInterval = d
	}
	if d, err := time.ParseDuration(req.EventLookback); err == nil && d > 0 {
		cfg.Site.EventLookback = d
	}
	cfg.Unlock()

	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		log.Printf("www: config save error: %v", err)
		h.jsonError(w, "failed to save: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Site changes take effect on restart: the monitor loop holds its
	// trolley list and interval for its lifetime.
	log.Printf("www: site config saved by %s", h.getUsername(r))
	h.jsonOK(w, map[string]string{"saved": "site", "note": "restart required for trolley and interval changes"})
}

func (h *Handlers) apiSaveMessagingConfig(w http.ResponseWriter, r *http.Request) {
	var req config.MessagingConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Backend != "mqtt" && req.Backend != "kafka" {
		h.jsonError(w, "backend must be mqtt or kafka", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	cfg.Lock()
	cfg.Messaging = req
	cfg.Unlock()

	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		log.Printf("www: config save error: %v", err)
		h.jsonError(w, "failed to save: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.engine.ReconfigureMessaging()

	log.Printf("www: messaging config saved by %s", h.getUsername(r))
	h.jsonOK(w, map[string]string{"saved": "messaging"})
}
