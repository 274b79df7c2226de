package scene

import (
	"slices"

	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// World binds objects to group names and resolves their properties and capabilities.
// It is not safe for concurrent use; each playback session gets its own world.
type World struct {
	objects  []*Object
	bindings map[string][]*Object
	dilation float64
}

func NewWorld() *World {
	return &World{bindings: map[string][]*Object{}, dilation: 1}
}

// Spawn creates an object and adds it to the world.
func (w *World) Spawn(name string) *Object {
	o := NewObject(name)
	w.objects = append(w.objects, o)
	return o
}

// Find returns the first live object called name.
func (w *World) Find(name string) *Object {
	for _, o := range w.objects {
		if o.name == name && o.Valid() {
			return o
		}
	}
	return nil
}

// Objects returns every object in spawn order.
func (w *World) Objects() []*Object { return w.objects }

// Bind appends objects to group's binding list.
func (w *World) Bind(group string, objs ...*Object) {
	w.bindings[group] = append(w.bindings[group], objs...)
}

// Unbind drops every binding of group.
func (w *World) Unbind(group string) { delete(w.bindings, group) }

// Bound returns the objects bound to group, live or not.
func (w *World) Bound(group string) []*Object { return w.bindings[group] }

// Groups returns the bound group names, sorted.
func (w *World) Groups() []string {
	out := make([]string, 0, len(w.bindings))
	for g := range w.bindings {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

func (w *World) GroupActors(group string) []actor.Actor {
	objs := w.bindings[group]
	out := make([]actor.Actor, 0, len(objs))
	for _, o := range objs {
		out = append(out, o)
	}
	return out
}

func (w *World) TimeDilation() float64     { return w.dilation }
func (w *World) SetTimeDilation(d float64) { w.dilation = d }

func object(a actor.Actor) (*Object, bool) {
	o, ok := a.(*Object)
	return o, ok && o.Valid()
}

// field builds a binding over one entry of a property table.
func field[T any](o *Object, table map[string]T, name string) (actor.Binding[T], bool) {
	if _, ok := table[name]; !ok {
		return actor.Binding[T]{}, false
	}
	return actor.Binding[T]{
		Get:   func() T { return table[name] },
		Set:   func(v T) { table[name] = v },
		Valid: o.Valid,
	}, true
}

func (w *World) FloatProperty(a actor.Actor, name string) (actor.Binding[float64], bool) {
	o, ok := object(a)
	if !ok {
		return actor.Binding[float64]{}, false
	}
	return field(o, o.Floats, name)
}

func (w *World) VectorProperty(a actor.Actor, name string) (actor.Binding[curve.Vector], bool) {
	o, ok := object(a)
	if !ok {
		return actor.Binding[curve.Vector]{}, false
	}
	return field(o, o.Vectors, name)
}

func (w *World) ColorProperty(a actor.Actor, name string) (actor.Binding[curve.Color], bool) {
	o, ok := object(a)
	if !ok {
		return actor.Binding[curve.Color]{}, false
	}
	return field(o, o.Colors, name)
}

func (w *World) BoolProperty(a actor.Actor, name string) (actor.Binding[bool], bool) {
	o, ok := object(a)
	if !ok {
		return actor.Binding[bool]{}, false
	}
	return field(o, o.Bools, name)
}

func (w *World) Materials(a actor.Actor, slots []int) []actor.Material {
	o, ok := object(a)
	if !ok {
		return nil
	}
	var out []actor.Material
	if len(slots) == 0 {
		for _, m := range o.Materials {
			out = append(out, newOverride(m))
		}
		return out
	}
	for _, i := range slots {
		if i >= 0 && i < len(o.Materials) {
			out = append(out, newOverride(o.Materials[i]))
		}
	}
	return out
}

func (w *World) Emitter(a actor.Actor) (actor.Emitter, bool) {
	o, ok := object(a)
	if !ok || o.Emitter == nil {
		return nil, false
	}
	return o.Emitter, true
}

func (w *World) Replayer(a actor.Actor) (actor.Replayer, bool) {
	o, ok := object(a)
	if !ok || o.Replayer == nil {
		return nil, false
	}
	return o.Replayer, true
}

func (w *World) Animator(a actor.Actor) (actor.Animator, bool) {
	o, ok := object(a)
	if !ok || o.Animator == nil {
		return nil, false
	}
	return o.Animator, true
}

func (w *World) Controller(a actor.Actor) (actor.Controller, bool) {
	o, ok := object(a)
	if !ok || o.Controller == nil {
		return nil, false
	}
	return o.Controller, true
}
