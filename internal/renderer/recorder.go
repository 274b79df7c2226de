package renderer

import (
	"maps"

	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/director"
	"github.com/ivlev/matinee/internal/effects"
	"github.com/ivlev/matinee/internal/scene"
)

// Recorder captures frames of a world and records the notifications it receives. Camera and
// Mixer are optional.
type Recorder struct {
	Trace  *Trace
	World  *scene.World
	Camera *director.Camera
	Mixer  *effects.Mixer
	// Next receives every notification after it is recorded.
	Next actor.Notifier
}

// NewRecorder creates a Recorder with an empty trace.
func NewRecorder(sequence string, fps int, w *scene.World) *Recorder {
	return &Recorder{
		Trace: &Trace{
			Version:  "1.0",
			Sequence: sequence,
			FPS:      fps,
		},
		World: w,
	}
}

func (r *Recorder) Notify(n actor.Notification) {
	if r.Trace.Session == "" {
		r.Trace.Session = n.Session
	}
	r.Trace.Events = append(r.Trace.Events, Event{
		Frame: len(r.Trace.Frames),
		Kind:  n.Kind.String(),
		Group: n.Group,
		Name:  n.Name,
		Time:  n.Time,
	})
	if r.Next != nil {
		r.Next.Notify(n)
	}
}

// Capture appends a frame taken at time at.
func (r *Recorder) Capture(at float64, state string) Frame {
	f := Frame{
		Index:    len(r.Trace.Frames),
		Time:     at,
		State:    state,
		Dilation: r.World.TimeDilation(),
	}
	if r.Camera != nil {
		if v := r.Camera.ViewTarget(); v != nil && v.Valid() {
			f.View = v.Name()
		}
		f.Fade, _ = r.Camera.Fade()
	}
	if r.Mixer != nil {
		for _, s := range r.Mixer.Playing() {
			f.Sounds = append(f.Sounds, s.Cue)
		}
	}
	for _, o := range r.World.Objects() {
		if !o.Valid() {
			continue
		}
		tr := o.Transform()
		f.Samples = append(f.Samples, Sample{
			Object:   o.Name(),
			Position: tr.Position,
			Rotation: tr.Rotation,
			Hidden:   o.Hidden(),
			Floats:   maps.Clone(o.Floats),
			Vectors:  maps.Clone(o.Vectors),
			Colors:   maps.Clone(o.Colors),
			Bools:    maps.Clone(o.Bools),
		})
	}
	r.Trace.Frames = append(r.Trace.Frames, f)
	return f
}
