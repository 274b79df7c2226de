package track

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// binder resolves the accessor a continuous track writes through.
type binder[T curve.Value[T]] func(env *Env) (actor.Binding[T], error)

// valueInstance drives a binding from a curve. It backs every continuous track except move.
type valueInstance[T curve.Value[T]] struct {
	instance
	track   Track
	curve   *curve.Curve[T]
	bind    binder[T]
	release func()

	b     actor.Binding[T]
	saved T
}

func newValueInstance[T curve.Value[T]](t Track, c *curve.Curve[T], bind binder[T]) *valueInstance[T] {
	return &valueInstance[T]{track: t, curve: c, bind: bind}
}

func (vi *valueInstance[T]) Track() Track { return vi.track }

func (vi *valueInstance[T]) Init(env *Env, pos float64) error {
	vi.begin(env, pos)
	b, err := vi.bind(env)
	if err != nil {
		return err
	}
	if !b.Usable() {
		return env.missing(vi.track, "binding not usable")
	}
	vi.b = b
	vi.saved = b.Get()
	vi.bound = true
	return nil
}

func (vi *valueInstance[T]) Update(pos float64, jump bool) {
	vi.last = pos
	if !vi.bound || !vi.b.Usable() {
		return
	}
	vi.b.Set(vi.curve.Eval(pos, vi.saved))
}

func (vi *valueInstance[T]) Restore() {
	if vi.bound && vi.b.Usable() {
		vi.b.Set(vi.saved)
	}
}

func (vi *valueInstance[T]) Term() {
	if !vi.track.Base().PersistPastEnd {
		vi.Restore()
	}
	if vi.release != nil {
		vi.release()
		vi.release = nil
	}
	vi.bound = false
}

// current returns the live bound value, used to seed new keys.
func (vi *valueInstance[T]) current() (T, bool) {
	if vi == nil || !vi.bound || !vi.b.Usable() {
		var zero T
		return zero, false
	}
	return vi.b.Get(), true
}

// seed picks the value a new key at t starts with.
func seed[T curve.Value[T]](c *curve.Curve[T], t float64, inst Instance) T {
	if vi, ok := inst.(*valueInstance[T]); ok {
		if v, ok := vi.current(); ok {
			return v
		}
	}
	var zero T
	return c.Eval(t, zero)
}

// scalar adapts a float64 binding to the curve's Scalar type.
func scalar(b actor.Binding[float64]) actor.Binding[curve.Scalar] {
	if b.Get == nil || b.Set == nil {
		return actor.Binding[curve.Scalar]{}
	}
	return actor.Binding[curve.Scalar]{
		Get:   func() curve.Scalar { return curve.Scalar(b.Get()) },
		Set:   func(v curve.Scalar) { b.Set(float64(v)) },
		Valid: b.Valid,
	}
}
