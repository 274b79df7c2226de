package effects

import "fmt"

// Emitter is a particle system or light that can be switched on and fire one-shot bursts.
type Emitter struct {
	Name     string
	active   bool
	Triggers int
	// Toggles counts state changes, not calls.
	Toggles int
}

// NewEmitter returns an emitter in the given state.
func NewEmitter(name string, active bool) *Emitter {
	return &Emitter{Name: name, active: active}
}

func (e *Emitter) Active() bool { return e.active }

func (e *Emitter) SetActive(on bool) {
	if e.active != on {
		e.Toggles++
	}
	e.active = on
}

func (e *Emitter) Trigger() { e.Triggers++ }

// Replayer plays back recorded particle clips.
type Replayer struct {
	// Clips lists the recorded clip ids. An empty list accepts any clip.
	Clips []int

	clip    int
	playing bool
	Started int
	Stopped int
}

// NewReplayer returns a replayer that accepts the given clips.
func NewReplayer(clips ...int) *Replayer {
	return &Replayer{Clips: clips, clip: -1}
}

func (r *Replayer) known(clip int) bool {
	if len(r.Clips) == 0 {
		return true
	}
	for _, c := range r.Clips {
		if c == clip {
			return true
		}
	}
	return false
}

func (r *Replayer) StartReplay(clip int) {
	if !r.known(clip) {
		return
	}
	r.clip = clip
	r.playing = true
	r.Started++
}

func (r *Replayer) StopReplay() {
	if r.playing {
		r.Stopped++
	}
	r.playing = false
}

func (r *Replayer) Replaying() bool { return r.playing }

// Clip returns the clip being replayed, or -1.
func (r *Replayer) Clip() int {
	if !r.playing {
		return -1
	}
	return r.clip
}

func (r *Replayer) String() string {
	if !r.playing {
		return "idle"
	}
	return fmt.Sprintf("clip %d", r.clip)
}
