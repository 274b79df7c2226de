// Package track implements every keyframed channel a group can carry and the per-binding
// runtime state that applies it to a bound object.
package track

import (
	"errors"
	"fmt"
	"log"

	"github.com/ivlev/matinee/internal/actor"
)

var (
	// ErrMissingBinding means the bound object has no matching property or capability.
	// The instance stays a no-op for the session.
	ErrMissingBinding = errors.New("missing binding")
	// ErrStaleReference means a referenced group or object is gone for this frame.
	ErrStaleReference = errors.New("stale reference")
)

// Kind identifies a track variant.
type Kind int

const (
	KindMove Kind = iota
	KindFloatProperty
	KindVectorProperty
	KindBoolProperty
	KindColorProperty
	KindToggle
	KindEvent
	KindVisibility
	KindSound
	KindAnimControl
	KindParticleReplay
	KindFloatMaterialParam
	KindVectorMaterialParam
	KindAudioMaster
	KindFade
	KindSlomo
	KindDirector
)

var kindNames = []string{
	KindMove:                "move",
	KindFloatProperty:       "float-property",
	KindVectorProperty:      "vector-property",
	KindBoolProperty:        "bool-property",
	KindColorProperty:       "color-property",
	KindToggle:              "toggle",
	KindEvent:               "event",
	KindVisibility:          "visibility",
	KindSound:               "sound",
	KindAnimControl:         "anim-control",
	KindParticleReplay:      "particle-replay",
	KindFloatMaterialParam:  "float-material-param",
	KindVectorMaterialParam: "vector-material-param",
	KindAudioMaster:         "audio-master",
	KindFade:                "fade",
	KindSlomo:               "slomo",
	KindDirector:            "director",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind maps a persisted kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown track kind %q", s)
}

// New returns an empty track of kind k with its defaults applied.
func New(k Kind) (Track, error) {
	switch k {
	case KindMove:
		return &MoveTrack{}, nil
	case KindFloatProperty:
		return &FloatPropertyTrack{}, nil
	case KindVectorProperty:
		return &VectorPropertyTrack{}, nil
	case KindBoolProperty:
		return &BoolPropertyTrack{}, nil
	case KindColorProperty:
		return &ColorPropertyTrack{}, nil
	case KindToggle:
		return &ToggleTrack{}, nil
	case KindEvent:
		return NewEventTrack(), nil
	case KindVisibility:
		return &VisibilityTrack{}, nil
	case KindSound:
		return &SoundTrack{}, nil
	case KindAnimControl:
		return &AnimControlTrack{Slot: "default"}, nil
	case KindParticleReplay:
		return &ParticleReplayTrack{}, nil
	case KindFloatMaterialParam:
		return &FloatMaterialParamTrack{}, nil
	case KindVectorMaterialParam:
		return &VectorMaterialParamTrack{}, nil
	case KindAudioMaster:
		return &AudioMasterTrack{}, nil
	case KindFade:
		return &FadeTrack{}, nil
	case KindSlomo:
		return &SlomoTrack{}, nil
	case KindDirector:
		return &DirectorTrack{}, nil
	}
	return nil, fmt.Errorf("unknown track kind %d", int(k))
}

// Condition gates a track on a session-wide flag.
type Condition int

const (
	Always Condition = iota
	WhenConditionEnabled
	WhenConditionDisabled
)

var conditionNames = map[Condition]string{
	Always:                "always",
	WhenConditionEnabled:  "condition-enabled",
	WhenConditionDisabled: "condition-disabled",
}

func (c Condition) String() string { return conditionNames[c] }

func (c Condition) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Condition) UnmarshalText(b []byte) error {
	for k, v := range conditionNames {
		if v == string(b) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown condition %q", string(b))
}

// Holds reports whether c is satisfied for a session with the given condition flag.
func (c Condition) Holds(enabled bool) bool {
	switch c {
	case WhenConditionEnabled:
		return enabled
	case WhenConditionDisabled:
		return !enabled
	}
	return true
}

// Common is the configuration shared by all tracks.
type Common struct {
	Title     string    `yaml:"title,omitempty"`
	Disabled  bool      `yaml:"disabled,omitempty"`
	Condition Condition `yaml:"condition,omitempty"`
	// PersistPastEnd leaves the applied value in place when the instance terminates.
	PersistPastEnd bool `yaml:"persist,omitempty"`
}

func (c *Common) Base() *Common { return c }

func (c *Common) sealed() {}

// Track is a typed keyframed channel. The variant set is closed: only this package
// provides implementations.
type Track interface {
	Kind() Kind
	Base() *Common

	Len() int
	KeyTime(i int) float64
	// SetKeyTime moves key i and returns its new index.
	SetKeyTime(i int, t float64) int
	RemoveKey(i int)
	// AddKey inserts a key at t seeded from inst's bound object (or from the track's own
	// value at t when inst is nil or unbound) and returns its index.
	AddKey(t float64, inst Instance) int
	// Normalize restores key order after decoding.
	Normalize()

	NewInstance() Instance

	sealed()
}

// Enabled is false when the track is switched off or its condition does not hold.
func Enabled(t Track, s Session) bool {
	c := t.Base()
	return !c.Disabled && c.Condition.Holds(s.ConditionEnabled)
}

// Sorted reports whether t's keys are non-decreasing by time.
func Sorted(t Track) bool {
	for i := 1; i < t.Len(); i++ {
		if t.KeyTime(i) < t.KeyTime(i-1) {
			return false
		}
	}
	return true
}

// Session is the playback-wide state every instance sees.
type Session struct {
	ID       string
	Sequence string
	Length   float64
	// ConditionEnabled drives Condition gating on tracks and keys.
	ConditionEnabled bool
	// PlayTriggersWhenJumping lets trigger actions fire on jumps for tracks that fire on jumps.
	PlayTriggersWhenJumping bool
	// Diagnostics logs binding failures instead of dropping them silently.
	Diagnostics bool
}

// Env is what an instance binds against.
type Env struct {
	Group     string
	Actor     actor.Actor
	Resolver  actor.Resolver
	Directory actor.Directory
	Notifier  actor.Notifier
	Audio     actor.AudioSystem
	World     actor.World
	Session   Session
}

func (e *Env) logf(format string, args ...any) {
	if e.Session.Diagnostics {
		log.Printf("[!] "+format, args...)
	}
}

func (e *Env) missing(t Track, what string) error {
	err := fmt.Errorf("%s track on %q: %s: %w", t.Kind(), e.Group, what, ErrMissingBinding)
	e.logf("%v", err)
	return err
}

// actorValid reports whether the instance's bound object still exists.
func (e *Env) actorValid() bool {
	return e.Actor != nil && e.Actor.Valid()
}

// Instance is the runtime state of one track for one bound object.
type Instance interface {
	Track() Track
	// Init binds and saves the pre-playback state. On error the instance is a no-op.
	Init(env *Env, pos float64) error
	Update(pos float64, jump bool)
	// Restore puts the saved state back without ending the session.
	Restore()
	// Skip moves the instance to pos without applying anything, so nothing crossed on the
	// way fires later.
	Skip(pos float64)
	// Term restores (unless the track persists) and releases everything the instance owns.
	Term()
	Bound() bool
	LastPosition() float64
}

type instance struct {
	env   *Env
	last  float64
	bound bool
}

func (b *instance) Bound() bool           { return b.bound }
func (b *instance) LastPosition() float64 { return b.last }
func (b *instance) Skip(pos float64)      { b.last = pos }

func (b *instance) begin(env *Env, pos float64) {
	b.env = env
	b.last = pos
}
