package engine

// notifyEmitter bridges the dispatcher's emitter interface to the EventBus.
type notifyEmitter struct {
	bus *EventBus
}

func (e *notifyEmitter) EmitNotificationSent(order, vehicle, customer string, arrival bool, resends int) {
	e.bus.Emit(Event{Type: EventNotificationSent, Payload: NotificationSentEvent{
		Order:    order,
		Vehicle:  vehicle,
		Customer: customer,
		Arrival:  arrival,
		Resends:  resends,
	}})
}

func (e *notifyEmitter) EmitNotificationSuppressed(order, vehicle string, resends int) {
	e.bus.Emit(Event{Type: EventNotificationSuppressed, Payload: NotificationSuppressedEvent{
		Order:   order,
		Vehicle: vehicle,
		Resends: resends,
	}})
}

// monitorEmitter bridges the monitor's cycle outcomes to the EventBus.
// State events are emitted only on change to keep the stream quiet
// between transitions.
type monitorEmitter struct {
	bus  *EventBus
	last map[string]string
}

func (e *monitorEmitter) EmitTrolleyState(trolley, state, location string) {
	key := state + "@" + location
	if e.last[trolley] == key {
		return
	}
	e.last[trolley] = key
	e.bus.Emit(Event{Type: EventTrolleyStateChanged, Payload: TrolleyStateChangedEvent{
		Trolley:  trolley,
		State:    state,
		Location: location,
	}})
}

func (e *monitorEmitter) EmitTrolleyError(trolley string, detail string) {
	e.bus.Emit(Event{Type: EventTrolleyError, Payload: TrolleyErrorEvent{
		Trolley: trolley,
		Detail:  detail,
	}})
}
