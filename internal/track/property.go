package track

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// FloatPropertyTrack drives a named float property.
type FloatPropertyTrack struct {
	Common                    `yaml:",inline"`
	Property                  string `yaml:"property"`
	curve.Curve[curve.Scalar] `yaml:",inline"`
}

func (t *FloatPropertyTrack) Kind() Kind { return KindFloatProperty }

func (t *FloatPropertyTrack) AddKey(at float64, inst Instance) int {
	return t.Curve.AddKey(at, seed(&t.Curve, at, inst), curve.Cubic)
}

func (t *FloatPropertyTrack) NewInstance() Instance {
	return newValueInstance(t, &t.Curve, func(env *Env) (actor.Binding[curve.Scalar], error) {
		if !env.actorValid() || env.Resolver == nil {
			return actor.Binding[curve.Scalar]{}, env.missing(t, "no bound object")
		}
		b, ok := env.Resolver.FloatProperty(env.Actor, t.Property)
		if !ok {
			return actor.Binding[curve.Scalar]{}, env.missing(t, "property "+t.Property)
		}
		return scalar(b), nil
	})
}

// VectorPropertyTrack drives a named vector property.
type VectorPropertyTrack struct {
	Common                    `yaml:",inline"`
	Property                  string `yaml:"property"`
	curve.Curve[curve.Vector] `yaml:",inline"`
}

func (t *VectorPropertyTrack) Kind() Kind { return KindVectorProperty }

func (t *VectorPropertyTrack) AddKey(at float64, inst Instance) int {
	return t.Curve.AddKey(at, seed(&t.Curve, at, inst), curve.Cubic)
}

func (t *VectorPropertyTrack) NewInstance() Instance {
	return newValueInstance(t, &t.Curve, func(env *Env) (actor.Binding[curve.Vector], error) {
		if !env.actorValid() || env.Resolver == nil {
			return actor.Binding[curve.Vector]{}, env.missing(t, "no bound object")
		}
		b, ok := env.Resolver.VectorProperty(env.Actor, t.Property)
		if !ok {
			return b, env.missing(t, "property "+t.Property)
		}
		return b, nil
	})
}

// ColorPropertyTrack drives a named color property.
type ColorPropertyTrack struct {
	Common                   `yaml:",inline"`
	Property                 string `yaml:"property"`
	curve.Curve[curve.Color] `yaml:",inline"`
}

func (t *ColorPropertyTrack) Kind() Kind { return KindColorProperty }

func (t *ColorPropertyTrack) AddKey(at float64, inst Instance) int {
	return t.Curve.AddKey(at, seed(&t.Curve, at, inst), curve.Cubic)
}

func (t *ColorPropertyTrack) NewInstance() Instance {
	return newValueInstance(t, &t.Curve, func(env *Env) (actor.Binding[curve.Color], error) {
		if !env.actorValid() || env.Resolver == nil {
			return actor.Binding[curve.Color]{}, env.missing(t, "no bound object")
		}
		b, ok := env.Resolver.ColorProperty(env.Actor, t.Property)
		if !ok {
			return b, env.missing(t, "property "+t.Property)
		}
		return b, nil
	})
}

// BoolKey sets a bool property from its time on.
type BoolKey struct {
	Stamp `yaml:",inline"`
	Value bool `yaml:"value"`
}

// BoolPropertyTrack steps a named bool property. Before the first key the saved value holds.
type BoolPropertyTrack struct {
	Common                      `yaml:",inline"`
	Property                    string `yaml:"property"`
	Timeline[BoolKey, *BoolKey] `yaml:",inline"`
}

func (t *BoolPropertyTrack) Kind() Kind { return KindBoolProperty }

func (t *BoolPropertyTrack) AddKey(at float64, inst Instance) int {
	v := false
	if bi, ok := inst.(*boolInstance); ok && bi.bound && bi.b.Usable() {
		v = bi.b.Get()
	} else if i := t.Before(at); i >= 0 {
		v = t.Keys[i].Value
	}
	return t.Insert(BoolKey{Stamp: Stamp{Time: at}, Value: v})
}

// ValueAt is the value in effect at pos given the value before the first key.
func (t *BoolPropertyTrack) ValueAt(pos float64, initial bool) bool {
	if i := t.Before(pos); i >= 0 {
		return t.Keys[i].Value
	}
	return initial
}

func (t *BoolPropertyTrack) NewInstance() Instance { return &boolInstance{track: t} }

type boolInstance struct {
	instance
	track *BoolPropertyTrack
	b     actor.Binding[bool]
	saved bool
}

func (bi *boolInstance) Track() Track { return bi.track }

func (bi *boolInstance) Init(env *Env, pos float64) error {
	bi.begin(env, pos)
	if !env.actorValid() || env.Resolver == nil {
		return env.missing(bi.track, "no bound object")
	}
	b, ok := env.Resolver.BoolProperty(env.Actor, bi.track.Property)
	if !ok || !b.Usable() {
		return env.missing(bi.track, "property "+bi.track.Property)
	}
	bi.b = b
	bi.saved = b.Get()
	bi.bound = true
	return nil
}

func (bi *boolInstance) Update(pos float64, jump bool) {
	bi.last = pos
	if !bi.bound || !bi.b.Usable() {
		return
	}
	bi.b.Set(bi.track.ValueAt(pos, bi.saved))
}

func (bi *boolInstance) Restore() {
	if bi.bound && bi.b.Usable() {
		bi.b.Set(bi.saved)
	}
}

func (bi *boolInstance) Term() {
	if !bi.track.PersistPastEnd {
		bi.Restore()
	}
	bi.bound = false
}
