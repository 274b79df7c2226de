package director

import (
	"math"
	"testing"

	"github.com/ivlev/matinee/internal/curve"
	"github.com/ivlev/matinee/internal/player"
	"github.com/ivlev/matinee/internal/scene"
	"github.com/ivlev/matinee/internal/sequence"
	"github.com/ivlev/matinee/internal/track"
)

func cut(at float64, target string, blend float64) track.CutKey {
	return track.CutKey{Stamp: track.Stamp{Time: at}, Target: target, Transition: blend}
}

// shotSequence cuts to CamA at 2, CamB at 5 and back to the director group at 8.
func shotSequence(t *testing.T) *sequence.Sequence {
	t.Helper()
	seq := sequence.New("shots", 10)

	dt := &track.DirectorTrack{}
	dt.Insert(cut(2, "CamA", 1))
	dt.Insert(cut(5, "CamB", 0))
	dt.Insert(cut(8, "", 0))

	camA := &track.MoveTrack{}
	camA.Curve.AddKey(0, curve.Transform{}, curve.Linear)
	camA.Curve.AddKey(4, curve.Transform{Position: curve.Vector{X: 8}}, curve.Linear)

	for _, g := range []*sequence.Group{
		{Name: "Director", Kind: sequence.KindDirector, Tracks: []track.Track{dt}},
		{Name: "CamA", Tracks: []track.Track{camA}},
		{Name: "CamB"},
	} {
		if err := seq.AddGroup(g); err != nil {
			t.Fatal(err)
		}
	}
	return seq
}

func TestCutAt(t *testing.T) {
	d := New(shotSequence(t))
	tests := []struct {
		at    float64
		group string
		index int
	}{
		{0, "Director", -1},
		{1.99, "Director", -1},
		{2, "CamA", 0},
		{4.5, "CamA", 0},
		{5, "CamB", 1},
		{8, "Director", 2},
		{10, "Director", 2},
	}
	for _, tt := range tests {
		c := d.CutAt(tt.at)
		if c.Group != tt.group || c.Index != tt.index {
			t.Errorf("CutAt(%v) = %+v, want %s #%d", tt.at, c, tt.group, tt.index)
		}
	}

	if c := New(sequence.New("empty", 5)).CutAt(3); c.Group != "" || c.Index != -1 {
		t.Errorf("sequence without director: %+v", c)
	}
}

func TestCutsCollapseSimultaneousKeys(t *testing.T) {
	seq := shotSequence(t)
	seq.DirectorTrack().Insert(cut(5, "CamA", 0))

	cuts := New(seq).Cuts()
	if len(cuts) != 3 {
		t.Fatalf("Cuts() = %+v", cuts)
	}
	if cuts[1].Group != "CamA" || cuts[1].Time != 5 {
		t.Errorf("the later key at 5 should win: %+v", cuts[1])
	}
}

func TestCameraCuts(t *testing.T) {
	seq := shotSequence(t)
	w := scene.NewWorld()
	camB := w.Spawn("camB")
	camB.SetTransform(curve.Transform{Position: curve.Vector{Y: 7}})
	w.Bind("CamB", camB)

	cuts := CameraCuts(seq, w)
	// the cut back to the unbound director group has no location
	if len(cuts) != 2 {
		t.Fatalf("CameraCuts = %+v", cuts)
	}
	if cuts[0].Group != "CamA" || cuts[0].Location != (curve.Vector{X: 4}) {
		t.Errorf("CamA cut = %+v", cuts[0])
	}
	if cuts[1].Group != "CamB" || cuts[1].Location != (curve.Vector{Y: 7}) {
		t.Errorf("CamB cut = %+v", cuts[1])
	}
}

func TestCameraCutsFollowAttachParent(t *testing.T) {
	seq := shotSequence(t)
	w := scene.NewWorld()
	rig := w.Spawn("rig")
	rig.SetTransform(curve.Transform{Position: curve.Vector{Z: 10}})
	camA := w.Spawn("camA")
	camA.AttachTo(rig)
	w.Bind("CamA", camA)

	cuts := CameraCuts(seq, w)
	if len(cuts) == 0 || cuts[0].Group != "CamA" {
		t.Fatalf("CameraCuts = %+v", cuts)
	}
	// keys are relative to the rig the camera rides on
	want := curve.Vector{X: 4, Z: 10}
	if got := cuts[0].Location; math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 || math.Abs(got.Z-want.Z) > 1e-9 {
		t.Errorf("CamA cut location = %+v, want %+v", got, want)
	}
}

func TestLookAhead(t *testing.T) {
	cuts := []CameraCutInfo{{Time: 2}, {Time: 5}, {Time: 8}}
	tests := []struct {
		at, window float64
		want       []float64
	}{
		{1, 4, []float64{2, 5}},
		{2, 4, []float64{5}},
		{0, 1, nil},
		{7, 10, []float64{8}},
	}
	for _, tt := range tests {
		got := LookAhead(cuts, tt.at, tt.window)
		if len(got) != len(tt.want) {
			t.Errorf("LookAhead(%v, %v) = %+v", tt.at, tt.window, got)
			continue
		}
		for i := range got {
			if got[i].Time != tt.want[i] {
				t.Errorf("LookAhead(%v, %v)[%d] = %v", tt.at, tt.window, i, got[i].Time)
			}
		}
	}

	d := New(sequence.New("x", 10))
	if got := d.Upcoming(cuts, 0); len(got) != 1 || got[0].Time != 2 {
		t.Errorf("Upcoming with the default window = %+v", got)
	}
}

func TestCameraBlend(t *testing.T) {
	w := scene.NewWorld()
	a, b := w.Spawn("a"), w.Spawn("b")
	b.SetTransform(curve.Transform{Position: curve.Vector{X: 10}})

	cam := NewCamera(a)
	cam.SetViewTarget(b, 1)
	if !cam.Blending() || cam.Switches != 1 {
		t.Fatalf("blend not started")
	}

	cam.Advance(0.5)
	if pov := cam.POV(); math.Abs(pov.Position.X-5) > 1e-9 {
		t.Errorf("POV halfway = %v, want 5", pov.Position.X)
	}
	cam.Advance(0.25)
	if x := cam.POV().Position.X; x <= 5 || x >= 10 {
		t.Errorf("eased POV at 0.75 = %v", x)
	}
	cam.Advance(0.25)
	if cam.Blending() || cam.POV().Position.X != 10 {
		t.Errorf("blend should be over, POV %v", cam.POV().Position.X)
	}

	cam.SetViewTarget(b, 1)
	if cam.Switches != 1 {
		t.Errorf("same target counted as a switch")
	}
	cam.SetViewTarget(a, 0)
	if cam.Blending() || cam.POV().Position.X != 0 {
		t.Errorf("zero blend should cut instantly")
	}
}

func TestDirectorTrackDrivesCamera(t *testing.T) {
	seq := shotSequence(t)
	w := scene.NewWorld()
	viewer := w.Spawn("viewer")
	camA, camB := w.Spawn("camA"), w.Spawn("camB")
	cam := NewCamera(viewer)
	viewer.Controller = cam
	w.Bind("Director", viewer)
	w.Bind("CamA", camA)
	w.Bind("CamB", camB)

	p := player.New(nil, seq, track.Env{Resolver: w, Directory: w, World: w}, player.Options{})
	if err := p.Play(true); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		dt     float64
		target *scene.Object
	}{
		{1, viewer},
		{1.5, camA},
		{3, camB},
		{3, viewer},
	}
	for _, s := range steps {
		p.Tick(s.dt)
		cam.Advance(s.dt)
		if cam.ViewTarget() != s.target {
			t.Errorf("at %v view target = %v, want %s", p.Position(), cam.ViewTarget(), s.target.Name())
		}
	}
	if cam.Switches != 3 {
		t.Errorf("switches = %d", cam.Switches)
	}

	p.SetPosition(3, true)
	if cam.ViewTarget() != camA || cam.Blending() {
		t.Errorf("a jump should cut without blending")
	}
	p.Stop()
	if cam.ViewTarget() != viewer {
		t.Errorf("stop should restore the original view target")
	}
}
