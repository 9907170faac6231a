package www

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) apiHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, map[string]any{
		"status":      "ok",
		"site":        h.engine.AppConfig().Site.Name,
		"messaging":   h.engine.MsgClient().IsConnected(),
		"sse_clients": h.eventHub.ClientCount(),
	})
}

func (h *Handlers) apiListTrolleys(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Live().All())
}

func (h *Handlers) apiGetTrolley(w http.ResponseWriter, r *http.Request) {
	trolley := chi.URLParam(r, "trolley")
	snap := h.engine.Live().Get(trolley)
	if snap == nil {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, snap)
}

func (h *Handlers) apiListNotifications(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Dispatcher().Records())
}

func (h *Handlers) apiListLocations(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.AppConfig().LocationSpecs())
}

func (h *Handlers) apiEvictNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order string `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == "" {
		h.jsonError(w, "order required", http.StatusBadRequest)
		return
	}
	h.engine.Dispatcher().Evict(req.Order)
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
