// Package director resolves which group owns the view over time and blends the view between
// camera targets. It also precomputes camera cut locations for streaming hints.
package director

import (
	"slices"
	"sort"

	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
	"github.com/ivlev/matinee/internal/sequence"
	"github.com/ivlev/matinee/internal/track"
)

// Director answers camera questions about one sequence.
type Director struct {
	Seq *sequence.Sequence
	// Window is the default look-ahead used by Upcoming, in seconds.
	Window float64
}

// New creates a Director with a two second look-ahead window.
func New(seq *sequence.Sequence) *Director {
	return &Director{
		Seq:    seq,
		Window: 2.0,
	}
}

// name returns the director group's name, or "" when the sequence has none.
func (d *Director) name() string {
	if g := d.Seq.DirectorGroup(); g != nil {
		return g.Name
	}
	return ""
}

// CutAt returns the cut active at t. Before the first cut the director group keeps the view.
func (d *Director) CutAt(t float64) track.Cut {
	dt := d.Seq.DirectorTrack()
	if dt == nil {
		return track.Cut{Group: d.name(), Index: -1}
	}
	return dt.CutAt(t, d.name())
}

// Cuts returns every cut in time order.
func (d *Director) Cuts() []track.Cut {
	dt := d.Seq.DirectorTrack()
	if dt == nil {
		return nil
	}
	cuts := make([]track.Cut, 0, dt.Len())
	for i := range dt.Keys {
		cuts = append(cuts, dt.CutAt(dt.KeyTime(i), d.name()))
	}
	// keys sharing a time resolve to the last one
	return slices.CompactFunc(cuts, func(a, b track.Cut) bool { return a.Index == b.Index })
}

// Upcoming returns the precomputed cuts within the director's window after t.
func (d *Director) Upcoming(cuts []CameraCutInfo, t float64) []CameraCutInfo {
	return LookAhead(cuts, t, d.Window)
}

// CameraCuts precomputes the world location of the camera at every cut. The location comes
// from the target group's move track when it has one, otherwise from its bound object.
// Cuts to groups that resolve to nothing are skipped.
func CameraCuts(seq *sequence.Sequence, dir actor.Directory) []CameraCutInfo {
	d := New(seq)
	var out []CameraCutInfo
	for _, c := range d.Cuts() {
		loc, ok := cutLocation(seq, dir, c)
		if !ok {
			continue
		}
		out = append(out, CameraCutInfo{Time: c.Time, Group: c.Group, Location: loc})
	}
	return out
}

func cutLocation(seq *sequence.Sequence, dir actor.Directory, c track.Cut) (curve.Vector, bool) {
	var bound actor.Actor
	if dir != nil {
		bound = actor.First(dir, c.Group)
	}

	g := seq.Group(c.Group)
	var mt *track.MoveTrack
	if g != nil {
		mt, _ = g.Find(track.KindMove).(*track.MoveTrack)
	}
	if mt == nil || (mt.Len() == 0 && mt.Axes == nil) {
		if bound == nil {
			return curve.Vector{}, false
		}
		return bound.Transform().Position, true
	}

	// keys live in the target's attachment space, like a playing move track
	var initial, parent curve.Transform
	attached := false
	if bound != nil {
		initial = bound.Transform()
		if p := bound.AttachParent(); p != nil && p.Valid() {
			parent, attached = p.Transform(), true
			initial = curve.Relative(parent, initial)
		}
	}
	live := func(k *curve.Key[curve.Transform]) (curve.Transform, bool) {
		if dir == nil {
			return curve.Transform{}, false
		}
		a := actor.First(dir, k.Ref)
		if a == nil {
			return curve.Transform{}, false
		}
		if attached {
			return curve.Relative(parent, a.Transform()), true
		}
		return a.Transform(), true
	}

	def := initial
	if mt.Frame == track.FrameRelativeToInitial {
		def = curve.Transform{}
	}
	keyed := mt.Eval(c.Time, def, live)
	if mt.Frame == track.FrameRelativeToInitial {
		keyed = curve.Compose(initial, keyed)
	}
	if attached {
		keyed = curve.Compose(parent, keyed)
	}
	return keyed.Position, true
}

// LookAhead returns the cuts with t < Time <= t+window. cuts must be sorted by time.
func LookAhead(cuts []CameraCutInfo, t, window float64) []CameraCutInfo {
	lo := sort.Search(len(cuts), func(i int) bool { return cuts[i].Time > t })
	hi := sort.Search(len(cuts), func(i int) bool { return cuts[i].Time > t+window })
	return cuts[lo:hi]
}
