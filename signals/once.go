package signals

import (
	"github.com/VladislavSG/signal/disposable"
)

// Once attaches an observer that is invoked at most one time. The
// subscription is dropped before the observer runs, so a reentrant Notify from
// inside the observer does not invoke it again.
func Once[E any](s Signal[E], observer Observer[E]) disposable.Disposable {
	var d disposable.Disposable
	fired := false
	d = s.Attach(func(event E) error {
		if fired {
			return nil
		}
		fired = true
		d.Dispose()
		return observer(event)
	})
	return d
}
