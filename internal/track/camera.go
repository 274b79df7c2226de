package track

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// FadeTrack fades the bound controller's screen to Color. 0 is clear, 1 is fully faded.
type FadeTrack struct {
	Common                    `yaml:",inline"`
	Color                     curve.Color `yaml:"color"`
	curve.Curve[curve.Scalar] `yaml:",inline"`
}

func (t *FadeTrack) Kind() Kind { return KindFade }

func (t *FadeTrack) AddKey(at float64, inst Instance) int {
	return t.Curve.AddKey(at, seed(&t.Curve, at, inst), curve.Linear)
}

func (t *FadeTrack) NewInstance() Instance {
	return newValueInstance(t, &t.Curve, func(env *Env) (actor.Binding[curve.Scalar], error) {
		ctrl, err := controller(env, t)
		if err != nil {
			return actor.Binding[curve.Scalar]{}, err
		}
		return actor.Binding[curve.Scalar]{
			Get: func() curve.Scalar {
				amount, _ := ctrl.Fade()
				return curve.Scalar(amount)
			},
			Set:   func(v curve.Scalar) { ctrl.SetFade(float64(v), t.Color) },
			Valid: env.actorValid,
		}, nil
	})
}

// SlomoTrack drives the world's time dilation.
type SlomoTrack struct {
	Common                    `yaml:",inline"`
	curve.Curve[curve.Scalar] `yaml:",inline"`
}

// minDilation keeps the world from stalling completely.
const minDilation = 0.0001

func (t *SlomoTrack) Kind() Kind { return KindSlomo }

func (t *SlomoTrack) AddKey(at float64, inst Instance) int {
	v := seed(&t.Curve, at, inst)
	if v <= 0 {
		v = 1
	}
	return t.Curve.AddKey(at, v, curve.Linear)
}

func (t *SlomoTrack) NewInstance() Instance {
	return newValueInstance(t, &t.Curve, func(env *Env) (actor.Binding[curve.Scalar], error) {
		if env.World == nil {
			return actor.Binding[curve.Scalar]{}, env.missing(t, "no world")
		}
		w := env.World
		return actor.Binding[curve.Scalar]{
			Get: func() curve.Scalar { return curve.Scalar(w.TimeDilation()) },
			Set: func(v curve.Scalar) { w.SetTimeDilation(max(float64(v), minDilation)) },
		}, nil
	})
}

func controller(env *Env, t Track) (actor.Controller, error) {
	if !env.actorValid() || env.Resolver == nil {
		return nil, env.missing(t, "no bound object")
	}
	ctrl, ok := env.Resolver.Controller(env.Actor)
	if !ok {
		return nil, env.missing(t, "no controller")
	}
	return ctrl, nil
}

// CutKey switches the view to Target's bound object, blending over Transition seconds.
type CutKey struct {
	Stamp      `yaml:",inline"`
	Target     string  `yaml:"target"`
	Transition float64 `yaml:"transition,omitempty"`
}

// Cut is the resolved camera state at a point in time.
type Cut struct {
	Group      string
	Transition float64
	// Index of the cut key, -1 before the first cut.
	Index int
	Time  float64
}

// DirectorTrack switches the view target between groups over time.
type DirectorTrack struct {
	Common                    `yaml:",inline"`
	Timeline[CutKey, *CutKey] `yaml:",inline"`
}

func (t *DirectorTrack) Kind() Kind { return KindDirector }

func (t *DirectorTrack) AddKey(at float64, inst Instance) int {
	k := CutKey{Stamp: Stamp{Time: at}}
	if i := t.Before(at); i >= 0 {
		k.Transition = t.Keys[i].Transition
	}
	return t.Insert(k)
}

// CutAt resolves the group that owns the view at pos. Before the first cut, or for a cut
// without a target, that is self.
func (t *DirectorTrack) CutAt(pos float64, self string) Cut {
	i := t.Before(pos)
	if i < 0 {
		return Cut{Group: self, Index: -1}
	}
	k := t.Keys[i]
	c := Cut{Group: k.Target, Transition: k.Transition, Index: i, Time: k.Time}
	if c.Group == "" {
		c.Group = self
	}
	return c
}

func (t *DirectorTrack) NewInstance() Instance { return &directorInstance{track: t} }

type directorInstance struct {
	instance
	track *DirectorTrack
	ctrl  actor.Controller
	saved actor.Actor
}

func (di *directorInstance) Track() Track { return di.track }

func (di *directorInstance) Init(env *Env, pos float64) error {
	di.begin(env, pos)
	ctrl, err := controller(env, di.track)
	if err != nil {
		return err
	}
	di.ctrl = ctrl
	di.saved = ctrl.ViewTarget()
	di.bound = true
	return nil
}

func (di *directorInstance) Update(pos float64, jump bool) {
	di.last = pos
	if !di.bound || !di.env.actorValid() {
		return
	}
	cut := di.track.CutAt(pos, di.env.Group)

	var target actor.Actor
	if cut.Group == di.env.Group {
		target = di.saved
	} else {
		target = actor.First(di.env.Directory, cut.Group)
	}
	if target == nil || !target.Valid() {
		di.env.logf("director track: cut to %q: %v", cut.Group, ErrStaleReference)
		return
	}
	if di.ctrl.ViewTarget() == target {
		return
	}
	blend := cut.Transition
	if jump {
		blend = 0
	}
	di.ctrl.SetViewTarget(target, blend)
}

func (di *directorInstance) Restore() {
	if !di.bound || !di.env.actorValid() {
		return
	}
	if di.saved != nil && di.saved.Valid() && di.ctrl.ViewTarget() != di.saved {
		di.ctrl.SetViewTarget(di.saved, 0)
	}
}

func (di *directorInstance) Term() {
	di.Restore()
	di.bound = false
}
