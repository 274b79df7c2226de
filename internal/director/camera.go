package director

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// Camera is a view controller. A view target change with a blend time eases the point of
// view from the previous target to the new one.
type Camera struct {
	target actor.Actor
	// from is the point of view a running transition started at.
	from     curve.Transform
	blending bool
	// blend is the length of the running transition, elapsed how far into it we are.
	blend   float64
	elapsed float64

	fade      float64
	fadeColor curve.Color

	// Switches counts view target changes.
	Switches int
}

// NewCamera returns a camera looking through initial, which may be nil.
func NewCamera(initial actor.Actor) *Camera {
	return &Camera{target: initial}
}

func (c *Camera) ViewTarget() actor.Actor { return c.target }

func (c *Camera) SetViewTarget(target actor.Actor, blend float64) {
	if target == c.target {
		return
	}
	c.Switches++
	// start from wherever the view is, even mid-transition
	c.from = c.POV()
	c.blending = blend > 0 && c.target != nil && c.target.Valid()
	c.target = target
	c.blend = blend
	c.elapsed = 0
}

func (c *Camera) Fade() (float64, curve.Color) { return c.fade, c.fadeColor }

func (c *Camera) SetFade(amount float64, color curve.Color) {
	c.fade, c.fadeColor = amount, color
}

// Blending reports whether a transition is running.
func (c *Camera) Blending() bool {
	return c.blending && c.elapsed < c.blend
}

// Advance moves the running transition forward by dt seconds.
func (c *Camera) Advance(dt float64) {
	if !c.Blending() {
		return
	}
	c.elapsed += dt
	if c.elapsed >= c.blend {
		c.blending = false
	}
}

// Alpha is the eased progress of the running transition, 1 when none is running.
func (c *Camera) Alpha() float64 {
	if !c.Blending() {
		return 1
	}
	return curve.EaseInOutCubic(c.elapsed / c.blend)
}

// POV is the current point of view.
func (c *Camera) POV() curve.Transform {
	var to curve.Transform
	if c.target != nil && c.target.Valid() {
		to = c.target.Transform()
	}
	if !c.Blending() {
		return to
	}
	return curve.Lerp(c.from, to, c.Alpha())
}
