package track_test

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
	"github.com/ivlev/matinee/internal/scene"
	"github.com/ivlev/matinee/internal/track"
)

// recorder collects fired event names.
type recorder struct {
	names []string
	fn    func(actor.Notification)
}

func (r *recorder) Notify(n actor.Notification) {
	r.names = append(r.names, n.Name)
	if r.fn != nil {
		r.fn(n)
	}
}

func newEnv(w *scene.World, group string, obj *scene.Object, length float64) *track.Env {
	env := &track.Env{
		Group:     group,
		Resolver:  w,
		Directory: w,
		World:     w,
		Notifier:  &recorder{},
		Session:   track.Session{ID: "test", Sequence: "test", Length: length},
	}
	if obj != nil {
		env.Actor = obj
	}
	return env
}

// ticks returns positions from 0 to length in steps of dt, ending exactly on length.
func ticks(length, dt float64) []float64 {
	out := []float64{0}
	for p := 0.0; p < length; {
		p = min(p+dt, length)
		out = append(out, p)
	}
	return out
}

func reversed(ps []float64) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[len(ps)-1-i] = p
	}
	return out
}

// play initialises inst at the first position and updates it through the rest.
func play(inst track.Instance, env *track.Env, positions []float64) error {
	if err := inst.Init(env, positions[0]); err != nil {
		return err
	}
	for _, p := range positions[1:] {
		inst.Update(p, false)
	}
	return nil
}

// camera is a minimal view controller.
type camera struct {
	target actor.Actor
	blends []float64
	fade   float64
	color  curve.Color
}

func (c *camera) ViewTarget() actor.Actor { return c.target }

func (c *camera) SetViewTarget(target actor.Actor, blend float64) {
	c.target = target
	c.blends = append(c.blends, blend)
}

func (c *camera) Fade() (float64, curve.Color) { return c.fade, c.color }

func (c *camera) SetFade(amount float64, color curve.Color) { c.fade, c.color = amount, color }
