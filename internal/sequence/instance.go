package sequence

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/track"
)

// maxAttachDepth bounds attachment walks so a cyclic chain cannot hang playback.
const maxAttachDepth = 64

// GroupInstance binds a group to one object for one session. Instances are index-aligned
// with the group's tracks.
type GroupInstance struct {
	Group     *Group
	Env       *track.Env
	Instances []track.Instance
	// Errs holds the binding error of each track that became a no-op.
	Errs []error

	done bool
}

// NewGroupInstance binds every track of g through env at pos. A track that cannot bind stays
// in place as a no-op instance.
func NewGroupInstance(g *Group, env track.Env, pos float64) *GroupInstance {
	e := env
	e.Group = g.Name
	gi := &GroupInstance{Group: g, Env: &e, Instances: make([]track.Instance, len(g.Tracks))}
	for i, tr := range g.Tracks {
		inst := tr.NewInstance()
		if err := inst.Init(gi.Env, pos); err != nil {
			gi.Errs = append(gi.Errs, err)
		}
		gi.Instances[i] = inst
	}
	return gi
}

// Actor returns the bound object, or nil.
func (gi *GroupInstance) Actor() actor.Actor { return gi.Env.Actor }

// Live reports whether the instance has not been terminated.
func (gi *GroupInstance) Live() bool { return !gi.done }

// Depth is the length of the bound object's attachment chain.
func (gi *GroupInstance) Depth() int {
	a := gi.Env.Actor
	if a == nil || !a.Valid() {
		return 0
	}
	d := 0
	for p := a.AttachParent(); p != nil && d < maxAttachDepth; p = p.AttachParent() {
		d++
	}
	return d
}

// Update moves every track to pos in declaration order. Disabled tracks restore their saved
// state and follow the position silently, so re-enabling one does not replay what it missed.
// Updating stops as soon as the instance is terminated from a callback.
func (gi *GroupInstance) Update(pos float64, jump bool) {
	s := gi.Env.Session
	for i, tr := range gi.Group.Tracks {
		if gi.done {
			return
		}
		inst := gi.Instances[i]
		if track.Enabled(tr, s) {
			inst.Update(pos, jump)
		} else {
			inst.Restore()
			inst.Skip(pos)
		}
	}
}

// Restore puts every track's saved state back.
func (gi *GroupInstance) Restore() {
	for _, inst := range gi.Instances {
		if gi.done {
			return
		}
		inst.Restore()
	}
}

// Term terminates the track instances in creation order. Calling it again is a no-op.
func (gi *GroupInstance) Term() {
	if gi.done {
		return
	}
	gi.done = true
	for _, inst := range gi.Instances {
		inst.Term()
	}
}

// Instance returns the instance of the first track of kind k, or nil.
func (gi *GroupInstance) Instance(k track.Kind) track.Instance {
	for i, tr := range gi.Group.Tracks {
		if tr.Kind() == k {
			return gi.Instances[i]
		}
	}
	return nil
}
