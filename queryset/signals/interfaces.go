package signals

// Observer receives events published through a Signal.
type Observer[E any] func(E)

// Disposable undoes an attachment. Dispose is idempotent.
type Disposable interface {
	Dispose()
}

type Signal[E any] interface {
	Attach(observer Observer[E], observerID ...any) Disposable
	Detach(observer Observer[E], observerID ...any)
	Notify(event E)
}
