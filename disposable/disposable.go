package disposable

type Disposable interface {
	Dispose()
}

// DisposableImp runs its callback on the first Dispose call only.
type DisposableImp struct {
	callback func()
	disposed bool
}

func NewDisposable(callback func()) *DisposableImp {
	return &DisposableImp{callback: callback}
}

func (d *DisposableImp) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.callback()
}

// CompositeDisposable disposes its delegates in reverse order of addition.
type CompositeDisposable struct {
	delegates []Disposable
}

func NewCompositeDisposable(delegates ...Disposable) *CompositeDisposable {
	return &CompositeDisposable{delegates: delegates}
}

func (d *CompositeDisposable) Add(delegates ...Disposable) {
	d.delegates = append(d.delegates, delegates...)
}

func (d *CompositeDisposable) Dispose() {
	delegates := d.delegates
	d.delegates = nil
	for i := len(delegates) - 1; i >= 0; i-- {
		delegates[i].Dispose()
	}
}
