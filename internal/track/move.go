package track

import (
	"fmt"

	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// MoveFrame is the space move keys are expressed in.
type MoveFrame int

const (
	// FrameWorld keys are world transforms, or parent-relative when the actor is attached.
	FrameWorld MoveFrame = iota
	// FrameRelativeToInitial keys are offsets from the transform the actor had at init.
	FrameRelativeToInitial
)

func (f MoveFrame) String() string {
	if f == FrameRelativeToInitial {
		return "relative-to-initial"
	}
	return "world"
}

func (f MoveFrame) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *MoveFrame) UnmarshalText(b []byte) error {
	switch string(b) {
	case "world", "":
		*f = FrameWorld
	case "relative-to-initial":
		*f = FrameRelativeToInitial
	default:
		return fmt.Errorf("unknown move frame %q", string(b))
	}
	return nil
}

// MoveAxes are the six single-axis sub-curves of a split move track.
type MoveAxes struct {
	X     curve.Curve[curve.Scalar] `yaml:"x"`
	Y     curve.Curve[curve.Scalar] `yaml:"y"`
	Z     curve.Curve[curve.Scalar] `yaml:"z"`
	Pitch curve.Curve[curve.Scalar] `yaml:"pitch"`
	Yaw   curve.Curve[curve.Scalar] `yaml:"yaw"`
	Roll  curve.Curve[curve.Scalar] `yaml:"roll"`
}

// All returns the sub-curves in X, Y, Z, pitch, yaw, roll order.
func (a *MoveAxes) All() [6]*curve.Curve[curve.Scalar] {
	return [6]*curve.Curve[curve.Scalar]{&a.X, &a.Y, &a.Z, &a.Pitch, &a.Yaw, &a.Roll}
}

// MoveTrack animates an actor's transform.
type MoveTrack struct {
	Common                       `yaml:",inline"`
	curve.Curve[curve.Transform] `yaml:",inline"`
	Frame                        MoveFrame `yaml:"frame,omitempty"`
	// Axes replaces the combined keys once the track is split.
	Axes *MoveAxes `yaml:"axes,omitempty"`
}

func (t *MoveTrack) Kind() Kind { return KindMove }

func (t *MoveTrack) Normalize() {
	t.Curve.Normalize()
	if t.Axes != nil {
		for _, c := range t.Axes.All() {
			c.Normalize()
		}
	}
}

// Split moves the combined keys into six per-axis curves. Lookup references travel with
// each key so every axis keeps reading the same group.
func (t *MoveTrack) Split() {
	if t.Axes != nil {
		return
	}
	axes := &MoveAxes{}
	all := axes.All()
	for _, k := range t.Keys {
		for axis, c := range all {
			v := component(k.Value, axis)
			i := c.AddKey(k.Time, curve.Scalar(v), k.Mode)
			c.Keys[i].Ref = k.Ref
		}
	}
	for _, c := range all {
		c.Tension = t.Tension
		c.AutoTangents()
	}
	t.Axes = axes
	t.Keys = nil
}

// Eval returns the keyed transform at pos. Lookup keys read live transforms through live;
// def fills axes without keys.
func (t *MoveTrack) Eval(pos float64, def curve.Transform, live curve.Live[curve.Transform]) curve.Transform {
	if t.Axes == nil {
		return t.Curve.EvalWith(pos, def, live)
	}
	var out [6]float64
	for axis, c := range t.Axes.All() {
		out[axis] = float64(c.EvalWith(pos, curve.Scalar(component(def, axis)), axisLive(live, axis)))
	}
	return curve.Transform{
		Position: curve.Vector{X: out[0], Y: out[1], Z: out[2]},
		Rotation: curve.Vector{X: out[3], Y: out[4], Z: out[5]},
	}
}

// Len counts the track's keys. Split tracks keep the six axis curves index-aligned, so the
// X curve speaks for all of them.
func (t *MoveTrack) Len() int {
	if t.Axes != nil {
		return t.Axes.X.Len()
	}
	return t.Curve.Len()
}

func (t *MoveTrack) KeyTime(i int) float64 {
	if t.Axes != nil {
		return t.Axes.X.KeyTime(i)
	}
	return t.Curve.KeyTime(i)
}

// SetKeyTime moves key i on every axis and returns its new index.
func (t *MoveTrack) SetKeyTime(i int, at float64) int {
	if t.Axes == nil {
		return t.Curve.SetKeyTime(i, at)
	}
	idx := -1
	for _, c := range t.Axes.All() {
		idx = c.SetKeyTime(i, at)
	}
	return idx
}

func (t *MoveTrack) RemoveKey(i int) {
	if t.Axes == nil {
		t.Curve.RemoveKey(i)
		return
	}
	for _, c := range t.Axes.All() {
		c.RemoveKey(i)
	}
}

// Aligned reports whether every axis curve has the same key times.
func (a *MoveAxes) Aligned() bool {
	all := a.All()
	for _, c := range all[1:] {
		if c.Len() != all[0].Len() {
			return false
		}
		for i := range c.Keys {
			if c.Keys[i].Time != all[0].Keys[i].Time {
				return false
			}
		}
	}
	return true
}

func (t *MoveTrack) AddKey(at float64, inst Instance) int {
	v := t.Eval(at, curve.Transform{}, nil)
	if mi, ok := inst.(*moveInstance); ok && mi.bound && mi.env.actorValid() {
		v = mi.keySpace(mi.env.Actor.Transform())
	}
	if t.Axes != nil {
		idx := 0
		for axis, c := range t.Axes.All() {
			idx = c.AddKey(at, curve.Scalar(component(v, axis)), curve.Cubic)
		}
		return idx
	}
	return t.Curve.AddKey(at, v, curve.Cubic)
}

func (t *MoveTrack) NewInstance() Instance { return &moveInstance{track: t} }

func component(tr curve.Transform, axis int) float64 {
	if axis < 3 {
		return tr.Position.Component(axis)
	}
	return tr.Rotation.Component(axis - 3)
}

func axisLive(live curve.Live[curve.Transform], axis int) curve.Live[curve.Scalar] {
	if live == nil {
		return nil
	}
	return func(k *curve.Key[curve.Scalar]) (curve.Scalar, bool) {
		v, ok := live(&curve.Key[curve.Transform]{Time: k.Time, Ref: k.Ref})
		if !ok {
			return 0, false
		}
		return curve.Scalar(component(v, axis)), true
	}
}

type moveInstance struct {
	instance
	track *MoveTrack
	// initial is the actor's transform at init, parent-relative when attached.
	initial curve.Transform
}

func (mi *moveInstance) Track() Track { return mi.track }

func (mi *moveInstance) Init(env *Env, pos float64) error {
	mi.begin(env, pos)
	if !env.actorValid() {
		return env.missing(mi.track, "no bound object")
	}
	mi.initial = mi.local(env.Actor.Transform())
	mi.bound = true
	return nil
}

func (mi *moveInstance) parent() actor.Actor {
	if p := mi.env.Actor.AttachParent(); p != nil && p.Valid() {
		return p
	}
	return nil
}

// local converts a world transform into the actor's attachment space.
func (mi *moveInstance) local(world curve.Transform) curve.Transform {
	if p := mi.parent(); p != nil {
		return curve.Relative(p.Transform(), world)
	}
	return world
}

// keySpace converts a world transform into the space the track's keys live in.
func (mi *moveInstance) keySpace(world curve.Transform) curve.Transform {
	l := mi.local(world)
	if mi.track.Frame == FrameRelativeToInitial {
		return curve.Relative(mi.initial, l)
	}
	return l
}

// world converts a keyed transform back to world space using the parent's current transform.
func (mi *moveInstance) world(keyed curve.Transform) curve.Transform {
	l := keyed
	if mi.track.Frame == FrameRelativeToInitial {
		l = curve.Compose(mi.initial, keyed)
	}
	if p := mi.parent(); p != nil {
		return curve.Compose(p.Transform(), l)
	}
	return l
}

// lookup reads the live transform of the group a key references.
func (mi *moveInstance) lookup(k *curve.Key[curve.Transform]) (curve.Transform, bool) {
	a := actor.First(mi.env.Directory, k.Ref)
	if a == nil {
		mi.env.logf("move track on %q: lookup %q: %v", mi.env.Group, k.Ref, ErrStaleReference)
		return curve.Transform{}, false
	}
	return mi.keySpace(a.Transform()), true
}

func (mi *moveInstance) Update(pos float64, jump bool) {
	mi.last = pos
	if !mi.bound || !mi.env.actorValid() {
		return
	}
	def := curve.Transform{}
	if mi.track.Frame == FrameWorld {
		def = mi.initial
	}
	keyed := mi.track.Eval(pos, def, mi.lookup)
	mi.env.Actor.SetTransform(mi.world(keyed))
}

func (mi *moveInstance) Restore() {
	if !mi.bound || !mi.env.actorValid() {
		return
	}
	l := mi.initial
	if p := mi.parent(); p != nil {
		mi.env.Actor.SetTransform(curve.Compose(p.Transform(), l))
		return
	}
	mi.env.Actor.SetTransform(l)
}

func (mi *moveInstance) Term() {
	if !mi.track.PersistPastEnd {
		mi.Restore()
	}
	mi.bound = false
}
