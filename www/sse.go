package www

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"supplytrack/engine"
)

type SSEEvent struct {
	Event string
	Data  string
}

type EventHub struct {
	mu        sync.RWMutex
	clients   map[chan SSEEvent]struct{}
	broadcast chan SSEEvent
	stopChan  chan struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients:   make(map[chan SSEEvent]struct{}),
		broadcast: make(chan SSEEvent, 256),
		stopChan:  make(chan struct{}),
	}
}

func (h *EventHub) Start() {
	go h.run()
}

func (h *EventHub) Stop() {
	select {
	case h.stopChan <- struct{}{}:
	default:
	}
}

func (h *EventHub) run() {
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case evt := <-h.broadcast:
			h.mu.RLock()
			for ch := range h.clients {
				select {
				case ch <- evt:
				default:
					// drop if full
				}
			}
			h.mu.RUnlock()
		case <-keepalive.C:
			h.mu.RLock()
			for ch := range h.clients {
				select {
				case ch <- SSEEvent{Event: "keepalive", Data: "ping"}:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *EventHub) Broadcast(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("sse: marshal %s event: %v", event, err)
		return
	}
	select {
	case h.broadcast <- SSEEvent{Event: event, Data: string(data)}:
	default:
	}
}

func (h *EventHub) AddClient() chan SSEEvent {
	ch := make(chan SSEEvent, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) RemoveClient(ch chan SSEEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SetupEngineListeners wires engine events to SSE broadcasts.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) {
	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("trolley-update", evt.Payload.(engine.TrolleyStateChangedEvent))
	}, engine.EventTrolleyStateChanged)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("trolley-error", evt.Payload.(engine.TrolleyErrorEvent))
	}, engine.EventTrolleyError)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("notification", evt.Payload.(engine.NotificationSentEvent))
	}, engine.EventNotificationSent)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("notification-suppressed", evt.Payload.(engine.NotificationSuppressedEvent))
	}, engine.EventNotificationSuppressed)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("telemetry", evt.Payload.(engine.TelemetryRecordedEvent))
	}, engine.EventTelemetryRecorded)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", map[string]string{"messaging": "connected"})
	}, engine.EventMessagingConnected)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", map[string]string{"messaging": "disconnected"})
	}, engine.EventMessagingDisconnected)
}

// SSEHandler serves the SSE endpoint.
func (h *EventHub) SSEHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.AddClient()
	defer h.RemoveClient(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, evt.Data); err != nil {
				log.Printf("sse: write error: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}
