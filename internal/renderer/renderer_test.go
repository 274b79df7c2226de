package renderer

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ivlev/matinee/internal/curve"
	"github.com/ivlev/matinee/internal/director"
	"github.com/ivlev/matinee/internal/effects"
	"github.com/ivlev/matinee/internal/player"
	"github.com/ivlev/matinee/internal/scene"
	"github.com/ivlev/matinee/internal/sequence"
	"github.com/ivlev/matinee/internal/track"
)

func abs(x float64) float64 { return math.Abs(x) }

type rig struct {
	seq *sequence.Sequence
	w   *scene.World
	rec *Recorder
	p   *player.Player
}

// newRig builds a 10 second lamp sequence: glow ramps 0 → 1 → 0, Flash fires at 5 and a hum
// plays from 2 to 5.
func newRig(t *testing.T, fps int) *rig {
	t.Helper()
	seq := sequence.New("lamp", 10)

	ft := &track.FloatPropertyTrack{Property: "glow"}
	ft.Curve.AddKey(0, 0, curve.Linear)
	ft.Curve.AddKey(5, 1, curve.Linear)
	ft.Curve.AddKey(10, 0, curve.Linear)
	et := track.NewEventTrack()
	et.Keys[et.AddKey(5, nil)].Name = "Flash"
	st := &track.SoundTrack{}
	i := st.AddKey(2, nil)
	st.Keys[i].Cue = "hum"
	st.Keys[i].Duration = 3

	if err := seq.AddGroup(&sequence.Group{Name: "Lamp", Tracks: []track.Track{ft, et, st}}); err != nil {
		t.Fatal(err)
	}

	w := scene.NewWorld()
	lamp := w.Spawn("lamp")
	lamp.Floats["glow"] = 0.5
	w.Bind("Lamp", lamp)

	rec := NewRecorder(seq.Name, fps, w)
	rec.Mixer = effects.NewMixer()
	rec.Camera = director.NewCamera(lamp)
	env := track.Env{Resolver: w, Directory: w, World: w, Notifier: rec, Audio: rec.Mixer}
	return &rig{seq: seq, w: w, rec: rec, p: player.New(nil, seq, env, player.Options{})}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		duration float64
		fps      int
		want     int
	}{
		{10, 1, 11},
		{10, 30, 301},
		{0.5, 4, 3},
		{0.55, 4, 4},
		{0, 30, 1},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.duration, tt.fps); got != tt.want {
			t.Errorf("FrameCount(%v, %d) = %d, want %d", tt.duration, tt.fps, got, tt.want)
		}
	}
}

func TestRunRecordsFramesAndEvents(t *testing.T) {
	r := newRig(t, 1)
	if err := Run(context.Background(), r.p, r.rec, 1, 0); err != nil {
		t.Fatal(err)
	}
	tr := r.rec.Trace

	if len(tr.Frames) != 11 {
		t.Fatalf("captured %d frames", len(tr.Frames))
	}
	for i, want := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1, 0.8, 0.6, 0.4, 0.2} {
		f := tr.Frames[i]
		if f.Index != i || f.Time != float64(i) {
			t.Errorf("frame %d at %v", f.Index, f.Time)
		}
		if got := f.Samples[0].Floats["glow"]; abs(got-want) > 1e-9 {
			t.Errorf("frame %d glow = %v, want %v", i, got, want)
		}
	}

	last := tr.Frames[10]
	if last.State != "stopped" || last.Samples[0].Floats["glow"] != 0.5 {
		t.Errorf("last frame %+v should show the restored lamp", last)
	}

	if tr.Count("Flash") != 1 || tr.Session == "" {
		t.Fatalf("events = %+v", tr.Events)
	}
	if tr.Events[0].Frame != 6 || tr.Events[0].Group != "Lamp" {
		t.Errorf("Flash recorded as %+v", tr.Events[0])
	}
	if fin := tr.Events[len(tr.Events)-1]; fin.Kind != "finished" || fin.Frame != 10 {
		t.Errorf("finished recorded as %+v", fin)
	}

	for i, f := range tr.Frames {
		want := i >= 3 && i <= 5
		if got := slices.Contains(f.Sounds, "hum"); got != want {
			t.Errorf("frame %d hum playing = %v", i, got)
		}
		if f.View != "lamp" {
			t.Errorf("frame %d view = %q", i, f.View)
		}
	}
}

func TestRunStopsAtMaxFrames(t *testing.T) {
	r := newRig(t, 2)
	r.p.SetLooping(true)
	if err := Run(context.Background(), r.p, r.rec, 2, 50); err != nil {
		t.Fatal(err)
	}
	if n := len(r.rec.Trace.Frames); n != 50 {
		t.Errorf("captured %d frames", n)
	}
	if r.p.State() != player.Stopped || r.p.Active() {
		t.Errorf("player left running")
	}
	// 24.5 seconds of looping crosses the key at 5 twice
	if n := r.rec.Trace.Count("Flash"); n != 2 {
		t.Errorf("Flash fired %d times", n)
	}
}

func TestRunHonoursContext(t *testing.T) {
	r := newRig(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, r.p, r.rec, 1, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
	if len(r.rec.Trace.Frames) != 1 || r.p.Active() {
		t.Errorf("canceled run captured %d frames", len(r.rec.Trace.Frames))
	}
	if err := Run(context.Background(), r.p, r.rec, 0, 0); err == nil {
		t.Errorf("zero frame rate accepted")
	}
}

func TestWriteReadTrace(t *testing.T) {
	r := newRig(t, 1)
	if err := Run(context.Background(), r.p, r.rec, 1, 0); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "trace.yaml")
	if err := WriteTrace(r.rec.Trace, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTrace(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Frames) != 11 || got.Count("Flash") != 1 || got.Session != r.rec.Trace.Session {
		t.Errorf("trace did not survive: %d frames, %d flashes", len(got.Frames), got.Count("Flash"))
	}
	if got.Frames[5].Samples[0].Floats["glow"] != 1 {
		t.Errorf("glow at frame 5 = %v", got.Frames[5].Samples[0].Floats["glow"])
	}
}
