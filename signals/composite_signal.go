package signals

import (
	"github.com/VladislavSG/signal/disposable"
)

// CompositeSignalImp fans Attach and Notify out to its delegates in order.
type CompositeSignalImp[E any] struct {
	delegates []Signal[E]
}

func NewCompositeSignal[E any](delegates ...Signal[E]) *CompositeSignalImp[E] {
	return &CompositeSignalImp[E]{delegates: delegates}
}

func (s *CompositeSignalImp[E]) Attach(observer Observer[E]) disposable.Disposable {
	disposables := make([]disposable.Disposable, 0, len(s.delegates))
	for _, delegate := range s.delegates {
		disposables = append(disposables, delegate.Attach(observer))
	}
	return disposable.NewCompositeDisposable(disposables...)
}

func (s *CompositeSignalImp[E]) Notify(event E) error {
	for _, delegate := range s.delegates {
		if err := delegate.Notify(event); err != nil {
			return err
		}
	}
	return nil
}
