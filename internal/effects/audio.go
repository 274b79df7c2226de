// Package effects holds the in-memory audio, particle and animation subsystems sequences
// trigger. They keep enough state to be observed in traces and tests.
package effects

import (
	"github.com/ivlev/matinee/internal/actor"
)

// Sound is one playback started by the mixer.
type Sound struct {
	Cue      string
	Owner    string
	Volume   float64
	Pitch    float64
	Position float64
	Length   float64 // 0 plays until stopped

	stopped bool
}

// Playing reports whether the sound is still audible.
func (s *Sound) Playing() bool { return !s.stopped }

// Stop ends playback. Stopping twice is harmless.
func (s *Sound) Stop() { s.stopped = true }

// Mixer is an AudioSystem that keeps every live sound in memory.
type Mixer struct {
	// Lengths of known cues in seconds. Unknown cues loop until stopped.
	Lengths map[string]float64

	volume, pitch float64
	sounds        []*Sound
	started       int
}

// NewMixer creates a mixer at unit volume and pitch.
func NewMixer() *Mixer {
	return &Mixer{Lengths: map[string]float64{}, volume: 1, pitch: 1}
}

// Play starts cue at offset seconds into it.
func (m *Mixer) Play(owner actor.Actor, cue string, volume, pitch, offset float64) actor.SoundHandle {
	s := &Sound{Cue: cue, Volume: volume, Pitch: pitch, Position: max(offset, 0), Length: m.Lengths[cue]}
	if owner != nil {
		s.Owner = owner.Name()
	}
	m.sounds = append(m.sounds, s)
	m.started++
	return s
}

func (m *Mixer) Master() (volume, pitch float64) { return m.volume, m.pitch }

func (m *Mixer) SetMaster(volume, pitch float64) {
	m.volume, m.pitch = volume, pitch
}

// Advance moves every live sound forward by dt scaled by its pitch and the master pitch,
// and drops the ones that ran out.
func (m *Mixer) Advance(dt float64) {
	live := m.sounds[:0]
	for _, s := range m.sounds {
		if s.stopped {
			continue
		}
		s.Position += dt * s.Pitch * m.pitch
		if s.Length > 0 && s.Position >= s.Length {
			s.stopped = true
			continue
		}
		live = append(live, s)
	}
	m.sounds = live
}

// Playing returns the sounds still audible.
func (m *Mixer) Playing() []*Sound {
	var out []*Sound
	for _, s := range m.sounds {
		if !s.stopped {
			out = append(out, s)
		}
	}
	return out
}

// Started counts Play calls over the mixer's lifetime.
func (m *Mixer) Started() int { return m.started }
