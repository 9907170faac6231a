// Package engine assembles the tracking pipeline: the telemetry store,
// the monitor loop, the notification dispatcher, and the event bus that
// the web layer subscribes to.
package engine

import (
	"log"
	"time"

	"supplytrack/config"
	"supplytrack/livestate"
	"supplytrack/messaging"
	"supplytrack/monitor"
	"supplytrack/notify"
	"supplytrack/refdata"
	"supplytrack/telemetry"
)

type LogFunc func(format string, args ...any)

type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	Store      *telemetry.SQLStore
	Refdata    *refdata.Table
	Live       *livestate.Manager
	MsgClient  *messaging.Client
	LogFunc    LogFunc
	Debug      bool
}

type Engine struct {
	cfg        *config.Config
	configPath string
	store      *telemetry.SQLStore
	ref        *refdata.Table
	live       *livestate.Manager
	msgClient  *messaging.Client
	dispatcher *notify.Dispatcher
	monitor    *monitor.Monitor
	Events     *EventBus
	logFn      LogFunc

	stopChan     chan struct{}
	msgConnected bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		store:      c.Store,
		ref:        c.Refdata,
		live:       c.Live,
		msgClient:  c.MsgClient,
		Events:     NewEventBus(),
		logFn:      logFn,
		stopChan:   make(chan struct{}),
	}
}

func (e *Engine) Start() {
	ne := &notifyEmitter{bus: e.Events}
	me := &monitorEmitter{bus: e.Events, last: make(map[string]string)}

	e.dispatcher = notify.NewDispatcher(e.msgClient, ne, e.cfg.Site.Name)

	e.monitor = monitor.New(monitor.Config{
		Store:         e.store,
		Refdata:       e.ref,
		Dispatcher:    e.dispatcher,
		Live:          e.live,
		Emitter:       me,
		Site:          e.cfg.Site.Name,
		Trolleys:      e.cfg.Site.Trolleys,
		PollInterval:  e.cfg.Site.PollInterval,
		EventLookback: e.cfg.Site.EventLookback,
	}, e.cfg.Site.CurrentOrder)

	e.wireEventHandlers()

	e.checkConnectionStatus()
	go e.connectionHealthLoop()

	e.monitor.Start()

	e.logFn("engine: started, polling %d trolleys", len(e.cfg.Site.Trolleys))
}

func (e *Engine) Stop() {
	select {
	case e.stopChan <- struct{}{}:
	default:
	}
	if e.monitor != nil {
		e.monitor.Stop()
	}
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) Store() *telemetry.SQLStore    { return e.store }
func (e *Engine) AppConfig() *config.Config     { return e.cfg }
func (e *Engine) ConfigPath() string            { return e.configPath }
func (e *Engine) Dispatcher() *notify.Dispatcher { return e.dispatcher }
func (e *Engine) Live() *livestate.Manager      { return e.live }
func (e *Engine) Refdata() *refdata.Table       { return e.ref }
func (e *Engine) MsgClient() *messaging.Client  { return e.msgClient }

func (e *Engine) wireEventHandlers() {
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(TrolleyStateChangedEvent)
		e.logFn("engine: trolley %s now %s at %q", ev.Trolley, ev.State, ev.Location)
	}, EventTrolleyStateChanged)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(NotificationSentEvent)
		kind := "delay"
		if ev.Arrival {
			kind = "arrival"
		}
		e.logFn("engine: %s notification for order %s via %s (send %d)", kind, ev.Order, ev.Vehicle, ev.Resends+1)
	}, EventNotificationSent)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(NotificationSuppressedEvent)
		e.logFn("engine: order %s on %s reached resend cap, suppressing", ev.Order, ev.Vehicle)
	}, EventNotificationSuppressed)
}

func (e *Engine) checkConnectionStatus() {
	if e.msgClient.IsConnected() {
		if !e.msgConnected {
			e.msgConnected = true
			e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "messaging connected"}})
		}
	} else {
		if e.msgConnected {
			e.msgConnected = false
			e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
		}
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}

// RecordTelemetry announces a record written through the web API so
// stream subscribers see injected data immediately.
func (e *Engine) RecordTelemetry(kind, trolley, actor string) {
	e.Events.Emit(Event{Type: EventTelemetryRecorded, Payload: TelemetryRecordedEvent{
		Kind:    kind,
		Trolley: trolley,
		Actor:   actor,
	}})
}

// ReconfigureMessaging reconnects messaging with current config.
func (e *Engine) ReconfigureMessaging() {
	if err := e.msgClient.Reconfigure(&e.cfg.Messaging); err != nil {
		e.logFn("engine: messaging reconfigure error: %v", err)
	} else {
		e.logFn("engine: messaging reconfigured")
	}
	e.checkConnectionStatus()
}
