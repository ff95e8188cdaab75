// Package mediator routes events to handlers by the event's static type.
// Each event type is dispatched by its own signal, so handlers may subscribe,
// unsubscribe and publish further events while a publication is running.
package mediator

import (
	"reflect"

	"github.com/VladislavSG/signal/disposable"
	"github.com/VladislavSG/signal/signals"
)

// EventHandler handles an event of type E.
type EventHandler[S, E any] = func(session S, event E) error

type envelope[S, E any] struct {
	session S
	event   E
}

type closer interface {
	Close()
}

type MediatorImp[S any] struct {
	signals map[reflect.Type]closer
}

func NewMediator[S any]() *MediatorImp[S] {
	return &MediatorImp[S]{
		signals: make(map[reflect.Type]closer),
	}
}

func signalFor[S, E any](m *MediatorImp[S]) *signals.SignalImp[envelope[S, E]] {
	eventType := reflect.TypeFor[E]()
	if s, ok := m.signals[eventType]; ok {
		return s.(*signals.SignalImp[envelope[S, E]])
	}
	s := signals.NewSignal[envelope[S, E]]()
	m.signals[eventType] = s
	return s
}

// Subscribe subscribes a typed event handler for events of type E. Handlers
// subscribed during a publication of E do not receive that publication.
func Subscribe[S, E any](m *MediatorImp[S], handler EventHandler[S, E]) disposable.Disposable {
	return signalFor[S, E](m).Connect(func(e envelope[S, E]) error {
		return handler(e.session, e.event)
	})
}

// Publish publishes an event to all subscribers of E, stopping at the first
// handler error. Dispatch uses the static type E: an event held in an
// interface reaches the subscribers of that interface type only.
func Publish[S, E any](m *MediatorImp[S], session S, event E) error {
	s, ok := m.signals[reflect.TypeFor[E]()]
	if !ok {
		return nil
	}
	return s.(*signals.SignalImp[envelope[S, E]]).Notify(envelope[S, E]{session: session, event: event})
}

// Close drops every subscription and stops publications in progress after
// the running handler returns.
func (m *MediatorImp[S]) Close() {
	for eventType, s := range m.signals {
		s.Close()
		delete(m.signals, eventType)
	}
}
