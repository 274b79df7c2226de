package track

import (
	"fmt"

	"github.com/ivlev/matinee/internal/actor"
)

// ToggleAction is what a toggle key does to its emitter.
type ToggleAction int

const (
	ToggleOn ToggleAction = iota
	ToggleOff
	// ToggleTrigger fires a one-shot cue and carries no state.
	ToggleTrigger
)

var toggleNames = map[ToggleAction]string{ToggleOn: "on", ToggleOff: "off", ToggleTrigger: "trigger"}

func (a ToggleAction) String() string               { return toggleNames[a] }
func (a ToggleAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ToggleAction) UnmarshalText(b []byte) error {
	for k, v := range toggleNames {
		if v == string(b) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown toggle action %q", string(b))
}

type ToggleKey struct {
	Stamp  `yaml:",inline"`
	Action ToggleAction `yaml:"action"`
}

// ToggleTrack switches an emitter on and off and fires its trigger cues.
type ToggleTrack struct {
	Common                          `yaml:",inline"`
	Timeline[ToggleKey, *ToggleKey] `yaml:",inline"`
	// FireOnJump lets forward jumps fire trigger keys, subject to the session's
	// PlayTriggersWhenJumping policy.
	FireOnJump bool `yaml:"fire-on-jump,omitempty"`
}

func (t *ToggleTrack) Kind() Kind { return KindToggle }

func (t *ToggleTrack) AddKey(at float64, inst Instance) int {
	action := ToggleOn
	if ti, ok := inst.(*toggleInstance); ok && ti.bound && !ti.em.Active() {
		action = ToggleOff
	}
	return t.Insert(ToggleKey{Stamp: Stamp{Time: at}, Action: action})
}

// StateAt folds every state key before limit onto initial.
func (t *ToggleTrack) StateAt(limit float64, initial bool) bool {
	on := initial
	for _, k := range t.Keys {
		if k.Time >= limit {
			break
		}
		switch k.Action {
		case ToggleOn:
			on = true
		case ToggleOff:
			on = false
		}
	}
	return on
}

func (t *ToggleTrack) NewInstance() Instance { return &toggleInstance{track: t} }

type toggleInstance struct {
	instance
	track *ToggleTrack
	em    actor.Emitter
	saved bool
}

func (ti *toggleInstance) Track() Track { return ti.track }

func (ti *toggleInstance) Init(env *Env, pos float64) error {
	ti.begin(env, pos)
	if !env.actorValid() || env.Resolver == nil {
		return env.missing(ti.track, "no bound object")
	}
	em, ok := env.Resolver.Emitter(env.Actor)
	if !ok {
		return env.missing(ti.track, "no emitter")
	}
	ti.em = em
	ti.saved = em.Active()
	ti.bound = true
	return nil
}

func (ti *toggleInstance) Update(pos float64, jump bool) {
	length := ti.env.Session.Length
	span := Traverse(ti.last, pos, length)
	ti.last = pos
	if !ti.bound || !ti.env.actorValid() {
		return
	}

	crossed := ti.track.Crossed(span)
	fireTriggers := !jump ||
		(ti.track.FireOnJump && span.Forward && ti.env.Session.PlayTriggersWhenJumping)
	if fireTriggers {
		for _, i := range crossed {
			if ti.track.Keys[i].Action != ToggleTrigger {
				continue
			}
			ti.em.Trigger()
			if !ti.bound {
				return
			}
		}
	}

	// state follows the timeline on jumps and whenever a state key was crossed
	stateChanged := jump
	for _, i := range crossed {
		if ti.track.Keys[i].Action != ToggleTrigger {
			stateChanged = true
		}
	}
	if !stateChanged {
		return
	}
	want := ti.track.StateAt(StateLimit(pos, length, span.Forward), ti.saved)
	if ti.em.Active() != want {
		ti.em.SetActive(want)
	}
}

func (ti *toggleInstance) Restore() {
	if ti.bound && ti.env.actorValid() && ti.em.Active() != ti.saved {
		ti.em.SetActive(ti.saved)
	}
}

func (ti *toggleInstance) Term() {
	if !ti.track.PersistPastEnd {
		ti.Restore()
	}
	ti.bound = false
}

// VisibilityAction is what a visibility key does to its actor.
type VisibilityAction int

const (
	Show VisibilityAction = iota
	Hide
	ToggleVisibility
)

var visibilityNames = map[VisibilityAction]string{Show: "show", Hide: "hide", ToggleVisibility: "toggle"}

func (a VisibilityAction) String() string               { return visibilityNames[a] }
func (a VisibilityAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *VisibilityAction) UnmarshalText(b []byte) error {
	for k, v := range visibilityNames {
		if v == string(b) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown visibility action %q", string(b))
}

type VisibilityKey struct {
	Stamp     `yaml:",inline"`
	Action    VisibilityAction `yaml:"action"`
	Condition Condition        `yaml:"condition,omitempty"`
}

// VisibilityTrack shows and hides its actor.
type VisibilityTrack struct {
	Common                                  `yaml:",inline"`
	Timeline[VisibilityKey, *VisibilityKey] `yaml:",inline"`
	// FireOnJump lets forward jumps apply the toggle keys they cross. Show and hide keys
	// resync on every jump.
	FireOnJump bool `yaml:"fire-on-jump,omitempty"`
}

func (t *VisibilityTrack) Kind() Kind { return KindVisibility }

func (t *VisibilityTrack) AddKey(at float64, inst Instance) int {
	action := Hide
	if vi, ok := inst.(*visibilityInstance); ok && vi.bound && vi.env.actorValid() && vi.env.Actor.Hidden() {
		action = Show
	}
	return t.Insert(VisibilityKey{Stamp: Stamp{Time: at}, Action: action})
}

// HiddenAt folds every applicable key before limit onto initial.
func (t *VisibilityTrack) HiddenAt(limit float64, initial, condition bool) bool {
	return t.fold(limit, initial, condition, Span{})
}

// fold is HiddenAt leaving out the toggle keys inside skip.
func (t *VisibilityTrack) fold(limit float64, initial, condition bool, skip Span) bool {
	hidden := initial
	for _, k := range t.Keys {
		if k.Time >= limit {
			break
		}
		if !k.Condition.Holds(condition) {
			continue
		}
		if k.Action == ToggleVisibility && skip.Contains(k.Time) {
			continue
		}
		switch k.Action {
		case Show:
			hidden = false
		case Hide:
			hidden = true
		case ToggleVisibility:
			hidden = !hidden
		}
	}
	return hidden
}

func (t *VisibilityTrack) NewInstance() Instance { return &visibilityInstance{track: t} }

type visibilityInstance struct {
	instance
	track *VisibilityTrack
	saved bool
}

func (vi *visibilityInstance) Track() Track { return vi.track }

func (vi *visibilityInstance) Init(env *Env, pos float64) error {
	vi.begin(env, pos)
	if !env.actorValid() {
		return env.missing(vi.track, "no bound object")
	}
	vi.saved = env.Actor.Hidden()
	vi.bound = true
	return nil
}

func (vi *visibilityInstance) Update(pos float64, jump bool) {
	length := vi.env.Session.Length
	span := Traverse(vi.last, pos, length)
	vi.last = pos
	if !vi.bound || !vi.env.actorValid() {
		return
	}
	if !jump && len(vi.track.Crossed(span)) == 0 {
		return
	}
	var skip Span
	if jump && !(vi.track.FireOnJump && span.Forward) {
		skip = span
	}
	a := vi.env.Actor
	want := vi.track.fold(StateLimit(pos, length, span.Forward), vi.saved, vi.env.Session.ConditionEnabled, skip)
	if a.Hidden() != want {
		a.SetHidden(want)
	}
}

func (vi *visibilityInstance) Restore() {
	if vi.bound && vi.env.actorValid() && vi.env.Actor.Hidden() != vi.saved {
		vi.env.Actor.SetHidden(vi.saved)
	}
}

func (vi *visibilityInstance) Term() {
	if !vi.track.PersistPastEnd {
		vi.Restore()
	}
	vi.bound = false
}

// EventKey fires a named notification.
type EventKey struct {
	Stamp `yaml:",inline"`
	Name  string `yaml:"name"`
}

// EventTrack fires named notifications when playback crosses its keys.
type EventTrack struct {
	Common                        `yaml:",inline"`
	Timeline[EventKey, *EventKey] `yaml:",inline"`
	FireForwards                  bool `yaml:"fire-forwards"`
	FireBackwards                 bool `yaml:"fire-backwards"`
	FireOnJump                    bool `yaml:"fire-on-jump,omitempty"`
}

// NewEventTrack returns an event track that fires in both directions.
func NewEventTrack() *EventTrack {
	return &EventTrack{FireForwards: true, FireBackwards: true}
}

func (t *EventTrack) Kind() Kind { return KindEvent }

func (t *EventTrack) AddKey(at float64, inst Instance) int {
	return t.Insert(EventKey{Stamp: Stamp{Time: at}, Name: fmt.Sprintf("Event%d", t.Len())})
}

// Names returns the event names in key order.
func (t *EventTrack) Names() []string {
	out := make([]string, 0, len(t.Keys))
	for _, k := range t.Keys {
		out = append(out, k.Name)
	}
	return out
}

func (t *EventTrack) NewInstance() Instance { return &eventInstance{track: t} }

type eventInstance struct {
	instance
	track *EventTrack
}

func (ei *eventInstance) Track() Track { return ei.track }

func (ei *eventInstance) Init(env *Env, pos float64) error {
	ei.begin(env, pos)
	if env.Notifier == nil {
		return env.missing(ei.track, "no notifier")
	}
	ei.bound = true
	return nil
}

func (ei *eventInstance) Update(pos float64, jump bool) {
	span := Traverse(ei.last, pos, ei.env.Session.Length)
	ei.last = pos
	if !ei.bound || !span.Moved {
		return
	}
	t := ei.track
	switch {
	case jump && !(t.FireOnJump && span.Forward):
		return
	case span.Forward && !t.FireForwards:
		return
	case !span.Forward && !t.FireBackwards:
		return
	}

	s := ei.env.Session
	for _, i := range t.Crossed(span) {
		k := t.Keys[i]
		ei.env.Notifier.Notify(actor.Notification{
			Kind:     actor.EventFired,
			Session:  s.ID,
			Sequence: s.Sequence,
			Group:    ei.env.Group,
			Name:     k.Name,
			Time:     k.Time,
		})
		// the notifier may have stopped playback
		if !ei.bound {
			return
		}
	}
}

func (ei *eventInstance) Restore() {}

func (ei *eventInstance) Term() { ei.bound = false }
