// Package www serves the operator console API: live trolley state,
// notification records, telemetry injection for commissioning, and a
// server-sent event stream of engine activity.
package www

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"supplytrack/engine"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.Store())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	// Session
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/api/session", h.apiSession)

	// Read API
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealth)
		r.Get("/trolleys", h.apiListTrolleys)
		r.Get("/trolleys/{trolley}", h.apiGetTrolley)
		r.Get("/notifications", h.apiListNotifications)
		r.Get("/locations", h.apiListLocations)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/api/config", h.apiGetConfig)
		r.Post("/api/config/site", h.apiSaveSiteConfig)
		r.Post("/api/config/messaging", h.apiSaveMessagingConfig)
		r.Post("/api/notifications/evict", h.apiEvictNotification)
		// Telemetry injection for commissioning and bench testing
		r.Post("/api/telemetry/fix", h.apiRecordFix)
		r.Post("/api/telemetry/transit", h.apiRecordTransitEvent)
		r.Post("/api/telemetry/carriage", h.apiRecordCarriageLink)
		r.Post("/api/telemetry/delivery", h.apiRecordDelivery)
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	op, err := h.engine.Store().GetOperator(creds.Username)
	if err != nil || !checkPassword(op.PasswordHash, creds.Password) {
		h.jsonError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["username"] = creds.Username
	if err := session.Save(r, w); err != nil {
		log.Printf("www: session save error: %v", err)
	}

	h.jsonOK(w, map[string]string{"username": creds.Username})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Values["username"] = ""
	session.Save(r, w)
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiSession(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, map[string]any{
		"authenticated": h.isAuthenticated(r),
		"username":      h.getUsername(r),
	})
}
