package track

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// FloatMaterialParamTrack drives a scalar material parameter on some or all material slots.
type FloatMaterialParamTrack struct {
	Common                    `yaml:",inline"`
	Param                     string `yaml:"param"`
	Slots                     []int  `yaml:"slots,omitempty"`
	curve.Curve[curve.Scalar] `yaml:",inline"`
}

func (t *FloatMaterialParamTrack) Kind() Kind { return KindFloatMaterialParam }

// AddKey seeds parameter keys from the curve itself, not from the material.
func (t *FloatMaterialParamTrack) AddKey(at float64, inst Instance) int {
	return t.Curve.AddKey(at, t.Curve.Eval(at, 0), curve.Cubic)
}

func (t *FloatMaterialParamTrack) NewInstance() Instance {
	vi := newValueInstance[curve.Scalar](t, &t.Curve, nil)
	vi.bind = func(env *Env) (actor.Binding[curve.Scalar], error) {
		mats, err := overrides(env, t, t.Slots)
		if err != nil {
			return actor.Binding[curve.Scalar]{}, err
		}
		vi.release = releaser(mats)
		return actor.Binding[curve.Scalar]{
			Get: func() curve.Scalar {
				v, _ := mats[0].ScalarParam(t.Param)
				return curve.Scalar(v)
			},
			Set: func(v curve.Scalar) {
				for _, m := range mats {
					m.SetScalarParam(t.Param, float64(v))
				}
			},
		}, nil
	}
	return vi
}

// VectorMaterialParamTrack drives a vector (color) material parameter.
type VectorMaterialParamTrack struct {
	Common                   `yaml:",inline"`
	Param                    string `yaml:"param"`
	Slots                    []int  `yaml:"slots,omitempty"`
	curve.Curve[curve.Color] `yaml:",inline"`
}

func (t *VectorMaterialParamTrack) Kind() Kind { return KindVectorMaterialParam }

func (t *VectorMaterialParamTrack) AddKey(at float64, inst Instance) int {
	return t.Curve.AddKey(at, t.Curve.Eval(at, curve.Color{}), curve.Cubic)
}

func (t *VectorMaterialParamTrack) NewInstance() Instance {
	vi := newValueInstance[curve.Color](t, &t.Curve, nil)
	vi.bind = func(env *Env) (actor.Binding[curve.Color], error) {
		mats, err := overrides(env, t, t.Slots)
		if err != nil {
			return actor.Binding[curve.Color]{}, err
		}
		vi.release = releaser(mats)
		return actor.Binding[curve.Color]{
			Get: func() curve.Color {
				v, _ := mats[0].VectorParam(t.Param)
				return v
			},
			Set: func(v curve.Color) {
				for _, m := range mats {
					m.SetVectorParam(t.Param, v)
				}
			},
		}, nil
	}
	return vi
}

// overrides creates the session's material overrides on the bound object.
func overrides(env *Env, t Track, slots []int) ([]actor.Material, error) {
	if !env.actorValid() || env.Resolver == nil {
		return nil, env.missing(t, "no bound object")
	}
	mats := env.Resolver.Materials(env.Actor, slots)
	if len(mats) == 0 {
		return nil, env.missing(t, "no materials")
	}
	return mats, nil
}

func releaser(mats []actor.Material) func() {
	return func() {
		for _, m := range mats {
			m.Release()
		}
	}
}
