package track

import (
	"math"

	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// AnimKey plays an animation sequence into the track's slot from its time on.
type AnimKey struct {
	Stamp       `yaml:",inline"`
	Anim        string  `yaml:"anim"`
	StartOffset float64 `yaml:"start-offset,omitempty"`
	EndOffset   float64 `yaml:"end-offset,omitempty"`
	Rate        float64 `yaml:"rate"`
	Looping     bool    `yaml:"looping,omitempty"`
	Reverse     bool    `yaml:"reverse,omitempty"`
}

// Position maps time elapsed since the key into the animation. length <= 0 means unknown.
func (k AnimKey) Position(elapsed, length float64) float64 {
	rate := k.Rate
	if rate == 0 {
		rate = 1
	}
	p := math.Max(elapsed, 0) * rate
	if length <= 0 {
		return k.StartOffset + p
	}
	start, end := k.StartOffset, length-k.EndOffset
	span := end - start
	if span <= 0 {
		return start
	}
	if k.Looping {
		p = math.Mod(p, span)
	} else if p > span {
		p = span
	}
	if k.Reverse {
		return end - p
	}
	return start + p
}

// AnimControlTrack poses an animation slot and drives its blend weight.
type AnimControlTrack struct {
	Common                      `yaml:",inline"`
	Slot                        string `yaml:"slot"`
	Weight                      curve.Curve[curve.Scalar] `yaml:"weight,omitempty"`
	Timeline[AnimKey, *AnimKey] `yaml:",inline"`
}

func (t *AnimControlTrack) Kind() Kind { return KindAnimControl }

func (t *AnimControlTrack) Normalize() {
	t.Timeline.Normalize()
	t.Weight.Normalize()
}

func (t *AnimControlTrack) AddKey(at float64, inst Instance) int {
	k := AnimKey{Stamp: Stamp{Time: at}, Rate: 1}
	if i := t.Before(at); i >= 0 {
		k.Anim = t.Keys[i].Anim
	}
	return t.Insert(k)
}

// Active returns the key driving the slot at pos, or -1.
func (t *AnimControlTrack) Active(pos float64) int { return t.Before(pos) }

func (t *AnimControlTrack) NewInstance() Instance { return &animInstance{track: t} }

type animInstance struct {
	instance
	track *AnimControlTrack
	anim  actor.Animator
	saved float64
}

func (ai *animInstance) Track() Track { return ai.track }

func (ai *animInstance) Init(env *Env, pos float64) error {
	ai.begin(env, pos)
	if !env.actorValid() || env.Resolver == nil {
		return env.missing(ai.track, "no bound object")
	}
	an, ok := env.Resolver.Animator(env.Actor)
	if !ok {
		return env.missing(ai.track, "no animator")
	}
	ai.anim = an
	ai.saved = an.SlotWeight(ai.track.Slot)
	ai.bound = true
	return nil
}

func (ai *animInstance) Update(pos float64, jump bool) {
	span := Traverse(ai.last, pos, ai.env.Session.Length)
	ai.last = pos
	if !ai.bound || !ai.env.actorValid() {
		return
	}
	t := ai.track
	ai.anim.SetSlotWeight(t.Slot, float64(t.Weight.Eval(pos, 1)))

	i := t.Active(pos)
	if i < 0 {
		return
	}
	k := t.Keys[i]
	length, _ := ai.anim.AnimLength(k.Anim)
	// notifies only on forward, continuous progress
	notify := !jump && span.Moved && span.Forward
	ai.anim.SetAnimPosition(t.Slot, k.Anim, k.Position(pos-k.Time, length), k.Looping, notify)
}

func (ai *animInstance) Restore() {
	if ai.bound && ai.env.actorValid() {
		ai.anim.SetSlotWeight(ai.track.Slot, ai.saved)
	}
}

func (ai *animInstance) Term() {
	if !ai.track.PersistPastEnd {
		ai.Restore()
	}
	ai.bound = false
}
