package signals

type disposableFunc struct {
	dispose  func()
	disposed bool
}

func NewDisposable(dispose func()) Disposable {
	return &disposableFunc{dispose: dispose}
}

func (d *disposableFunc) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.dispose()
}

type compositeDisposable struct {
	delegates []Disposable
}

func NewCompositeDisposable(delegates ...Disposable) Disposable {
	return &compositeDisposable{delegates: delegates}
}

func (d *compositeDisposable) Dispose() {
	for _, delegate := range d.delegates {
		delegate.Dispose()
	}
}
