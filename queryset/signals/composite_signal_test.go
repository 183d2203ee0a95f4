package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositeSignal_AttachPropagatesToAllDelegates(t *testing.T) {
	s1 := NewSignal[queryEvent]()
	s2 := NewSignal[queryEvent]()
	composite := NewCompositeSignal[queryEvent](s1, s2)
	callCount := 0
	composite.Attach(func(e queryEvent) { callCount++ }, "obs")
	s1.Notify(queryEvent{})
	s2.Notify(queryEvent{})
	assert.Equal(t, 2, callCount)
}

func TestCompositeSignal_DetachPropagatesToAllDelegates(t *testing.T) {
	s1 := NewSignal[queryEvent]()
	s2 := NewSignal[queryEvent]()
	composite := NewCompositeSignal[queryEvent](s1, s2)
	called := false
	observer := Observer[queryEvent](func(e queryEvent) { called = true })
	composite.Attach(observer, "obs")
	composite.Detach(observer, "obs")
	s1.Notify(queryEvent{})
	s2.Notify(queryEvent{})
	assert.False(t, called)
}

func TestCompositeSignal_NotifyPropagatesToAllDelegates(t *testing.T) {
	s1 := NewSignal[queryEvent]()
	s2 := NewSignal[queryEvent]()
	composite := NewCompositeSignal[queryEvent](s1, s2)
	callCount := 0
	composite.Attach(func(e queryEvent) { callCount++ }, "obs")
	composite.Notify(queryEvent{})
	assert.Equal(t, 2, callCount)
}

func TestCompositeSignal_DisposableDetachesFromAllDelegates(t *testing.T) {
	s1 := NewSignal[queryEvent]()
	s2 := NewSignal[queryEvent]()
	composite := NewCompositeSignal[queryEvent](s1, s2)
	called := false
	d := composite.Attach(func(e queryEvent) { called = true }, "obs")
	d.Dispose()
	s1.Notify(queryEvent{})
	s2.Notify(queryEvent{})
	assert.False(t, called)
}

func TestCompositeSignal_NotifyNoDelegates(t *testing.T) {
	composite := NewCompositeSignal[queryEvent]()
	composite.Notify(queryEvent{}) // should not panic
}

func TestCompositeSignal_AttachWithoutID(t *testing.T) {
	s1 := NewSignal[queryEvent]()
	s2 := NewSignal[queryEvent]()
	composite := NewCompositeSignal[queryEvent](s1, s2)
	callCount := 0
	observer := Observer[queryEvent](func(e queryEvent) { callCount++ })
	composite.Attach(observer)
	composite.Notify(queryEvent{})
	assert.Equal(t, 2, callCount)
}
