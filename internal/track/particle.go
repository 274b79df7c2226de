package track

import (
	"github.com/ivlev/matinee/internal/actor"
)

// ReplayKey replays a recorded particle clip for Duration seconds.
type ReplayKey struct {
	Stamp    `yaml:",inline"`
	Clip     int     `yaml:"clip"`
	Duration float64 `yaml:"duration"`
}

func (k ReplayKey) End() float64 { return k.Time + k.Duration }

// ParticleReplayTrack starts and stops particle replay clips.
type ParticleReplayTrack struct {
	Common                          `yaml:",inline"`
	Timeline[ReplayKey, *ReplayKey] `yaml:",inline"`
}

func (t *ParticleReplayTrack) Kind() Kind { return KindParticleReplay }

func (t *ParticleReplayTrack) AddKey(at float64, inst Instance) int {
	k := ReplayKey{Stamp: Stamp{Time: at}, Duration: 1}
	if i := t.Before(at); i >= 0 {
		k.Clip = t.Keys[i].Clip
	}
	return t.Insert(k)
}

func (t *ParticleReplayTrack) NewInstance() Instance { return &replayInstance{track: t, active: -1} }

type replayInstance struct {
	instance
	track  *ParticleReplayTrack
	rep    actor.Replayer
	active int
}

func (ri *replayInstance) Track() Track { return ri.track }

func (ri *replayInstance) Init(env *Env, pos float64) error {
	ri.begin(env, pos)
	if !env.actorValid() || env.Resolver == nil {
		return env.missing(ri.track, "no bound object")
	}
	if _, ok := env.Resolver.Replayer(env.Actor); !ok {
		return env.missing(ri.track, "no replay component")
	}
	ri.bound = true
	return nil
}

// replayer resolves the replay component on demand so a lost one is picked up again.
func (ri *replayInstance) replayer() actor.Replayer {
	if ri.rep == nil && ri.env.actorValid() {
		if r, ok := ri.env.Resolver.Replayer(ri.env.Actor); ok {
			ri.rep = r
		}
	}
	return ri.rep
}

func (ri *replayInstance) Update(pos float64, jump bool) {
	span := Traverse(ri.last, pos, ri.env.Session.Length)
	ri.last = pos
	if !ri.bound || !span.Moved || !ri.env.actorValid() {
		return
	}
	if jump || !span.Forward {
		ri.stop()
		return
	}
	for _, i := range ri.track.Crossed(span) {
		if r := ri.replayer(); r != nil {
			r.StartReplay(ri.track.Keys[i].Clip)
			ri.active = i
		}
	}
	if ri.active >= 0 && span.Contains(ri.track.Keys[ri.active].End()) {
		ri.stop()
	}
}

func (ri *replayInstance) stop() {
	if ri.active >= 0 {
		if r := ri.replayer(); r != nil {
			r.StopReplay()
		}
	}
	ri.active = -1
}

func (ri *replayInstance) Restore() {
	if ri.bound {
		ri.stop()
	}
}

func (ri *replayInstance) Term() {
	ri.Restore()
	ri.rep = nil
	ri.bound = false
}
