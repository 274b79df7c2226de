// Package scene is an in-memory world of bound objects: named properties, attachment,
// material slots and the capabilities tracks drive.
package scene

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// Object is a bound object. Attached objects store their transform relative to the parent.
type Object struct {
	name      string
	local     curve.Transform
	parent    *Object
	hidden    bool
	destroyed bool

	Floats  map[string]float64
	Vectors map[string]curve.Vector
	Colors  map[string]curve.Color
	Bools   map[string]bool

	Materials []*Material

	Emitter    actor.Emitter
	Replayer   actor.Replayer
	Animator   actor.Animator
	Controller actor.Controller
}

// NewObject returns an object with empty property tables.
func NewObject(name string) *Object {
	return &Object{
		name:    name,
		Floats:  map[string]float64{},
		Vectors: map[string]curve.Vector{},
		Colors:  map[string]curve.Color{},
		Bools:   map[string]bool{},
	}
}

func (o *Object) Name() string { return o.name }
func (o *Object) Valid() bool  { return o != nil && !o.destroyed }

// Destroy invalidates the object. Bindings to it stop applying.
func (o *Object) Destroy() { o.destroyed = true }

func (o *Object) Transform() curve.Transform {
	if o.parent != nil {
		return curve.Compose(o.parent.Transform(), o.local)
	}
	return o.local
}

func (o *Object) SetTransform(world curve.Transform) {
	if o.parent != nil {
		o.local = curve.Relative(o.parent.Transform(), world)
		return
	}
	o.local = world
}

func (o *Object) AttachParent() actor.Actor {
	if o.parent == nil {
		return nil
	}
	return o.parent
}

// AttachTo attaches o to parent keeping its world transform. A nil parent detaches.
func (o *Object) AttachTo(parent *Object) {
	world := o.Transform()
	o.parent = parent
	o.SetTransform(world)
}

// Depth is the length of the attachment chain above o.
func (o *Object) Depth() int {
	d := 0
	for p := o.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func (o *Object) Hidden() bool     { return o.hidden }
func (o *Object) SetHidden(h bool) { o.hidden = h }

// Material is one material slot with its base parameters.
type Material struct {
	Name    string
	Scalars map[string]float64
	Vectors map[string]curve.Color

	overrides int
}

func NewMaterial(name string) *Material {
	return &Material{Name: name, Scalars: map[string]float64{}, Vectors: map[string]curve.Color{}}
}

// Overridden reports whether a session currently holds an override on m.
func (m *Material) Overridden() bool { return m.overrides > 0 }

// override writes through to its material and puts the original values back on Release.
type override struct {
	m       *Material
	scalars map[string]*float64
	vectors map[string]*curve.Color
	done    bool
}

func newOverride(m *Material) *override {
	m.overrides++
	return &override{m: m, scalars: map[string]*float64{}, vectors: map[string]*curve.Color{}}
}

func (ov *override) ScalarParam(name string) (float64, bool) {
	v, ok := ov.m.Scalars[name]
	return v, ok
}

func (ov *override) SetScalarParam(name string, v float64) {
	if ov.done {
		return
	}
	if _, seen := ov.scalars[name]; !seen {
		if old, ok := ov.m.Scalars[name]; ok {
			ov.scalars[name] = &old
		} else {
			ov.scalars[name] = nil
		}
	}
	ov.m.Scalars[name] = v
}

func (ov *override) VectorParam(name string) (curve.Color, bool) {
	v, ok := ov.m.Vectors[name]
	return v, ok
}

func (ov *override) SetVectorParam(name string, v curve.Color) {
	if ov.done {
		return
	}
	if _, seen := ov.vectors[name]; !seen {
		if old, ok := ov.m.Vectors[name]; ok {
			ov.vectors[name] = &old
		} else {
			ov.vectors[name] = nil
		}
	}
	ov.m.Vectors[name] = v
}

func (ov *override) Release() {
	if ov.done {
		return
	}
	for name, old := range ov.scalars {
		if old == nil {
			delete(ov.m.Scalars, name)
		} else {
			ov.m.Scalars[name] = *old
		}
	}
	for name, old := range ov.vectors {
		if old == nil {
			delete(ov.m.Vectors, name)
		} else {
			ov.m.Vectors[name] = *old
		}
	}
	ov.m.overrides--
	ov.done = true
}
