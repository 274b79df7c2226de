package effects

import (
	"github.com/ivlev/matinee/internal/track"
)

// AnimNotify is a named marker inside an animation.
type AnimNotify struct {
	Time float64 `yaml:"time"`
	Name string  `yaml:"name"`
}

// Anim describes one animation sequence.
type Anim struct {
	Length   float64      `yaml:"length"`
	Notifies []AnimNotify `yaml:"notifies,omitempty"`
}

// SlotState is what an animation slot currently shows.
type SlotState struct {
	Anim     string
	Position float64
	Weight   float64
	Looping  bool
}

// Animator blends animations into named slots and fires their notifies.
type Animator struct {
	Library map[string]Anim
	// OnNotify receives every fired notify. Fired keeps their names in order as well.
	OnNotify func(slot string, n AnimNotify)
	Fired    []string

	slots map[string]*SlotState
}

// NewAnimator creates an animator over lib.
func NewAnimator(lib map[string]Anim) *Animator {
	if lib == nil {
		lib = map[string]Anim{}
	}
	return &Animator{Library: lib, slots: map[string]*SlotState{}}
}

func (a *Animator) slot(name string) *SlotState {
	s, ok := a.slots[name]
	if !ok {
		s = &SlotState{}
		a.slots[name] = s
	}
	return s
}

// Slot returns a copy of the slot state.
func (a *Animator) Slot(name string) SlotState { return *a.slot(name) }

func (a *Animator) AnimLength(anim string) (float64, bool) {
	an, ok := a.Library[anim]
	return an.Length, ok
}

func (a *Animator) SlotWeight(slot string) float64 { return a.slot(slot).Weight }

func (a *Animator) SetSlotWeight(slot string, w float64) { a.slot(slot).Weight = w }

func (a *Animator) SetAnimPosition(slot, anim string, pos float64, looping, fireNotifies bool) {
	s := a.slot(slot)
	prev, same := s.Position, s.Anim == anim
	s.Anim, s.Position, s.Looping = anim, pos, looping
	if !fireNotifies || !same {
		return
	}
	an, ok := a.Library[anim]
	if !ok {
		return
	}
	if looping && pos < prev {
		// wrapped around the end of the loop
		a.fire(slot, an, track.Traverse(prev, an.Length, an.Length))
		a.fire(slot, an, track.Traverse(0, pos, an.Length))
		return
	}
	if pos > prev {
		a.fire(slot, an, track.Traverse(prev, pos, an.Length))
	}
}

func (a *Animator) fire(slot string, an Anim, span track.Span) {
	for _, n := range an.Notifies {
		if !span.Contains(n.Time) {
			continue
		}
		a.Fired = append(a.Fired, n.Name)
		if a.OnNotify != nil {
			a.OnNotify(slot, n)
		}
	}
}
