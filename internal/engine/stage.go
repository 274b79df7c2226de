package engine

import (
	"fmt"
	"slices"

	"github.com/ivlev/matinee/internal/curve"
	"github.com/ivlev/matinee/internal/director"
	"github.com/ivlev/matinee/internal/effects"
	"github.com/ivlev/matinee/internal/scene"
	"github.com/ivlev/matinee/internal/sequence"
	"github.com/ivlev/matinee/internal/track"
)

// Stage is a world populated for one sequence: an object per bindable group with every
// property, material slot and capability its tracks drive.
type Stage struct {
	World  *scene.World
	Camera *director.Camera
	Mixer  *effects.Mixer
}

// NewStage spawns and binds one object per bindable group. Properties start at the value
// their curve has at time zero so restoring after playback is observable. The director
// group's object carries the camera.
func NewStage(seq *sequence.Sequence) *Stage {
	st := &Stage{World: scene.NewWorld(), Mixer: effects.NewMixer()}

	for _, g := range seq.Groups {
		if !g.Bindable() {
			continue
		}
		o := st.World.Spawn(g.Name)
		if g.Kind == sequence.KindDirector {
			st.Camera = director.NewCamera(o)
			o.Controller = st.Camera
		}
		for _, tr := range g.Tracks {
			furnish(o, tr, seq.Length)
		}
		st.World.Bind(g.Name, o)
	}

	if st.Camera == nil {
		st.Camera = director.NewCamera(nil)
	}
	return st
}

func furnish(o *scene.Object, tr track.Track, length float64) {
	switch t := tr.(type) {
	case *track.MoveTrack:
		if t.Frame == track.FrameWorld && t.Len() > 0 {
			o.SetTransform(t.Eval(0, curve.Transform{}, nil))
		}
	case *track.FloatPropertyTrack:
		o.Floats[t.Property] = t.Curve.Eval(0, 0).Float()
	case *track.VectorPropertyTrack:
		o.Vectors[t.Property] = t.Curve.Eval(0, curve.Vector{})
	case *track.ColorPropertyTrack:
		o.Colors[t.Property] = t.Curve.Eval(0, curve.Color{})
	case *track.BoolPropertyTrack:
		o.Bools[t.Property] = false
	case *track.FloatMaterialParamTrack:
		for _, m := range slots(o, t.Slots) {
			if _, ok := m.Scalars[t.Param]; !ok {
				m.Scalars[t.Param] = t.Curve.Eval(0, 0).Float()
			}
		}
	case *track.VectorMaterialParamTrack:
		for _, m := range slots(o, t.Slots) {
			if _, ok := m.Vectors[t.Param]; !ok {
				m.Vectors[t.Param] = t.Curve.Eval(0, curve.Color{})
			}
		}
	case *track.ToggleTrack:
		if o.Emitter == nil {
			o.Emitter = effects.NewEmitter(o.Name(), false)
		}
	case *track.ParticleReplayTrack:
		var clips []int
		for _, k := range t.Keys {
			clips = append(clips, k.Clip)
		}
		o.Replayer = effects.NewReplayer(clips...)
	case *track.AnimControlTrack:
		an, ok := o.Animator.(*effects.Animator)
		if !ok {
			an = effects.NewAnimator(nil)
			o.Animator = an
		}
		for i, k := range t.Keys {
			end := length
			if i+1 < len(t.Keys) {
				end = t.Keys[i+1].Time
			}
			// an animation plays at least until the next key takes over
			if span := (end - k.Time) * max(k.Rate, 1); span > an.Library[k.Anim].Length {
				an.Library[k.Anim] = effects.Anim{Length: span}
			}
		}
	}
}

// slots returns the materials a track addresses, creating missing slots. No slots means
// every slot, and an object with no materials gets one.
func slots(o *scene.Object, want []int) []*scene.Material {
	need := 1
	if len(want) > 0 {
		need = slices.Max(want) + 1
	}
	for len(o.Materials) < need {
		o.Materials = append(o.Materials, scene.NewMaterial(fmt.Sprintf("%s_mat%d", o.Name(), len(o.Materials))))
	}
	if len(want) == 0 {
		return o.Materials
	}
	var out []*scene.Material
	for _, i := range want {
		if i >= 0 {
			out = append(out, o.Materials[i])
		}
	}
	return out
}
