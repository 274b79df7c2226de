package track

import (
	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/curve"
)

// SoundKey starts a cue. Duration bounds the playback; zero lets the cue run out on its own.
type SoundKey struct {
	Stamp    `yaml:",inline"`
	Cue      string  `yaml:"cue"`
	Volume   float64 `yaml:"volume"`
	Pitch    float64 `yaml:"pitch"`
	Duration float64 `yaml:"duration,omitempty"`
}

// End is the time playback of this key stops.
func (k SoundKey) End() float64 { return k.Time + k.Duration }

// SoundTrack plays cues as playback moves forward across its keys.
type SoundTrack struct {
	Common                        `yaml:",inline"`
	Timeline[SoundKey, *SoundKey] `yaml:",inline"`
}

func (t *SoundTrack) Kind() Kind { return KindSound }

func (t *SoundTrack) AddKey(at float64, inst Instance) int {
	return t.Insert(SoundKey{Stamp: Stamp{Time: at}, Volume: 1, Pitch: 1})
}

func (t *SoundTrack) NewInstance() Instance { return &soundInstance{track: t, active: -1} }

type soundInstance struct {
	instance
	track  *SoundTrack
	handle actor.SoundHandle
	active int
}

func (si *soundInstance) Track() Track { return si.track }

func (si *soundInstance) Init(env *Env, pos float64) error {
	si.begin(env, pos)
	if env.Audio == nil {
		return env.missing(si.track, "no audio system")
	}
	si.bound = true
	return nil
}

func (si *soundInstance) Update(pos float64, jump bool) {
	span := Traverse(si.last, pos, si.env.Session.Length)
	si.last = pos
	if !si.bound || !span.Moved {
		return
	}
	if jump || !span.Forward {
		si.stop()
		return
	}

	for _, i := range si.track.Crossed(span) {
		k := si.track.Keys[i]
		// a fresh handle every start, whatever happened to the previous one
		si.stop()
		si.handle = si.env.Audio.Play(si.env.Actor, k.Cue, k.Volume, k.Pitch, pos-k.Time)
		si.active = i
	}
	if si.active >= 0 {
		k := si.track.Keys[si.active]
		if k.Duration > 0 && span.Contains(k.End()) {
			si.stop()
		}
	}
}

func (si *soundInstance) stop() {
	if si.handle != nil {
		si.handle.Stop()
		si.handle = nil
	}
	si.active = -1
}

// Playing reports whether the instance holds a live handle.
func (si *soundInstance) Playing() bool {
	return si.handle != nil && si.handle.Playing()
}

func (si *soundInstance) Restore() { si.stop() }

func (si *soundInstance) Term() {
	if !si.track.PersistPastEnd {
		si.stop()
	}
	si.handle = nil
	si.bound = false
}

// AudioMasterTrack drives the master mix: X is volume, Y is pitch.
type AudioMasterTrack struct {
	Common                    `yaml:",inline"`
	curve.Curve[curve.Vector] `yaml:",inline"`
}

func (t *AudioMasterTrack) Kind() Kind { return KindAudioMaster }

func (t *AudioMasterTrack) AddKey(at float64, inst Instance) int {
	return t.Curve.AddKey(at, seed(&t.Curve, at, inst), curve.Linear)
}

func (t *AudioMasterTrack) NewInstance() Instance {
	return newValueInstance(t, &t.Curve, func(env *Env) (actor.Binding[curve.Vector], error) {
		if env.Audio == nil {
			return actor.Binding[curve.Vector]{}, env.missing(t, "no audio system")
		}
		audio := env.Audio
		return actor.Binding[curve.Vector]{
			Get: func() curve.Vector {
				v, p := audio.Master()
				return curve.Vector{X: v, Y: p}
			},
			Set: func(v curve.Vector) { audio.SetMaster(v.X, v.Y) },
		}, nil
	})
}
