// Package actor describes the objects a sequence drives and the subsystems it triggers.
// Everything here is implemented outside the playback core.
package actor

import (
	"github.com/ivlev/matinee/internal/curve"
)

// Actor is a bound object. It may disappear at any time, callers check Valid before use.
type Actor interface {
	Name() string
	Valid() bool

	Transform() curve.Transform
	SetTransform(curve.Transform)

	// AttachParent returns the actor this one rides on, or nil.
	AttachParent() Actor

	Hidden() bool
	SetHidden(bool)
}

// Binding is a resolved read/write accessor for one property of a bound object.
type Binding[T any] struct {
	Get   func() T
	Set   func(T)
	Valid func() bool
}

// Usable reports whether the binding is complete and its owner still exists.
func (b Binding[T]) Usable() bool {
	return b.Get != nil && b.Set != nil && (b.Valid == nil || b.Valid())
}

// Resolver locates named properties and capabilities on a bound object.
type Resolver interface {
	FloatProperty(a Actor, name string) (Binding[float64], bool)
	VectorProperty(a Actor, name string) (Binding[curve.Vector], bool)
	ColorProperty(a Actor, name string) (Binding[curve.Color], bool)
	BoolProperty(a Actor, name string) (Binding[bool], bool)

	// Materials returns the material slots of a, filtered by index when slots is non-empty.
	Materials(a Actor, slots []int) []Material
	Emitter(a Actor) (Emitter, bool)
	Replayer(a Actor) (Replayer, bool)
	Animator(a Actor) (Animator, bool)
	Controller(a Actor) (Controller, bool)
}

// Directory finds the live bound objects of a group for the current session.
type Directory interface {
	GroupActors(group string) []Actor
}

// First returns the first valid actor bound to group.
func First(d Directory, group string) Actor {
	if d == nil {
		return nil
	}
	for _, a := range d.GroupActors(group) {
		if a != nil && a.Valid() {
			return a
		}
	}
	return nil
}

// Material is one material slot that can take a parameter override for the session.
type Material interface {
	ScalarParam(name string) (float64, bool)
	SetScalarParam(name string, v float64)
	VectorParam(name string) (curve.Color, bool)
	SetVectorParam(name string, v curve.Color)
	// Release drops the override and restores the original material.
	Release()
}

// Emitter is a toggleable effect (particle system, light).
type Emitter interface {
	Active() bool
	SetActive(bool)
	Trigger()
}

// Replayer plays back recorded particle clips.
type Replayer interface {
	StartReplay(clip int)
	StopReplay()
	Replaying() bool
}

// Animator blends animation sequences into named slots.
type Animator interface {
	AnimLength(anim string) (float64, bool)
	SlotWeight(slot string) float64
	SetSlotWeight(slot string, w float64)
	// SetAnimPosition poses slot at pos in anim. When fireNotifies is set the animator fires the
	// notifies between the previous and the new position.
	SetAnimPosition(slot, anim string, pos float64, looping, fireNotifies bool)
}

// Controller owns the view target of a player.
type Controller interface {
	ViewTarget() Actor
	SetViewTarget(target Actor, blend float64)
	Fade() (amount float64, color curve.Color)
	SetFade(amount float64, color curve.Color)
}
