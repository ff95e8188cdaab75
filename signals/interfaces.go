package signals

import (
	"github.com/VladislavSG/signal/disposable"
)

// Observer receives events. A non-nil error stops the dispatch that invoked it
// and is returned from Notify.
type Observer[E any] func(E) error

type Signal[E any] interface {
	Attach(observer Observer[E]) disposable.Disposable
	Notify(event E) error
}
