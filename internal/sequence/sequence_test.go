package sequence

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ivlev/matinee/internal/curve"
	"github.com/ivlev/matinee/internal/scene"
	"github.com/ivlev/matinee/internal/track"
)

// flashSequence is a 10 second sequence with a float curve, an event and a camera cut.
func flashSequence(t *testing.T) *Sequence {
	t.Helper()
	seq := New("flash", 10)

	lamp := &Group{Name: "Lamp"}
	ft := &track.FloatPropertyTrack{Property: "glow"}
	ft.Curve.AddKey(0, 0, curve.Linear)
	ft.Curve.AddKey(5, 1, curve.Linear)
	ft.Curve.AddKey(10, 0, curve.Linear)
	et := track.NewEventTrack()
	i := et.AddKey(5, nil)
	et.Keys[i].Name = "Flash"
	lamp.Tracks = []track.Track{ft, et}

	dir := &Group{Name: "Director", Kind: KindDirector}
	dt := &track.DirectorTrack{}
	dt.Insert(track.CutKey{Stamp: track.Stamp{Time: 2}, Target: "Lamp", Transition: 0.5})
	dir.Tracks = []track.Track{dt}

	for _, g := range []*Group{{Name: "Props", Kind: KindFolder}, lamp, dir} {
		if err := seq.AddGroup(g); err != nil {
			t.Fatal(err)
		}
	}
	lamp.Folder = "Props"
	return seq
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Sequence)
		ok     bool
	}{
		{"valid", func(*Sequence) {}, true},
		{"negative length", func(s *Sequence) { s.Length = -1 }, false},
		{"second director", func(s *Sequence) {
			s.Groups = append(s.Groups, &Group{Name: "Other", Kind: KindDirector})
		}, false},
		{"duplicate name", func(s *Sequence) { s.Groups = append(s.Groups, &Group{Name: "Lamp"}) }, false},
		{"folder with tracks", func(s *Sequence) {
			s.Group("Props").Tracks = []track.Track{track.NewEventTrack()}
		}, false},
		{"filed under a plain group", func(s *Sequence) { s.Group("Director").Folder = "Lamp" }, false},
		{"director track outside director group", func(s *Sequence) {
			s.Group("Lamp").Tracks = append(s.Group("Lamp").Tracks, &track.DirectorTrack{})
		}, false},
		{"unsorted keys", func(s *Sequence) {
			et := s.Group("Lamp").Tracks[1].(*track.EventTrack)
			et.Keys = append(et.Keys, track.EventKey{Stamp: track.Stamp{Time: 1}, Name: "late"})
		}, false},
		{"move with combined and split keys", func(s *Sequence) {
			mt := &track.MoveTrack{}
			mt.Curve.AddKey(0, curve.Transform{}, curve.Linear)
			mt.Axes = &track.MoveAxes{}
			s.Group("Lamp").Tracks = append(s.Group("Lamp").Tracks, mt)
		}, false},
		{"move axes out of step", func(s *Sequence) {
			mt := &track.MoveTrack{}
			mt.Curve.AddKey(0, curve.Transform{}, curve.Linear)
			mt.Curve.AddKey(2, curve.Transform{}, curve.Linear)
			mt.Split()
			mt.Axes.Yaw.RemoveKey(1)
			s.Group("Lamp").Tracks = append(s.Group("Lamp").Tracks, mt)
		}, false},
		{"loop section past end", func(s *Sequence) { s.LoopStart, s.LoopEnd = 2, 12 }, false},
		{"loop section", func(s *Sequence) { s.LoopStart, s.LoopEnd = 2, 8 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := flashSequence(t)
			tt.mutate(seq)
			err := seq.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("Validate() = %v, want ErrInvariantViolation", err)
			}
		})
	}
}

func TestAddGroupRejectsSecondDirector(t *testing.T) {
	seq := flashSequence(t)
	err := seq.AddGroup(&Group{Name: "Cams", Kind: KindDirector})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("AddGroup = %v", err)
	}
	if len(seq.Groups) != 3 {
		t.Errorf("rejected group was added")
	}
}

func TestRemoveGroupUnfilesChildren(t *testing.T) {
	seq := flashSequence(t)
	if !seq.RemoveGroup("Props") {
		t.Fatal("Props not removed")
	}
	if seq.Group("Lamp").Folder != "" {
		t.Errorf("Lamp still filed under a removed folder")
	}
	if seq.RemoveGroup("Props") {
		t.Errorf("removed twice")
	}
	if err := seq.Validate(); err != nil {
		t.Errorf("Validate() after removal = %v", err)
	}
}

func TestEventNames(t *testing.T) {
	seq := flashSequence(t)
	et := track.NewEventTrack()
	for _, n := range []string{"Boom", "Flash"} {
		i := et.AddKey(1, nil)
		et.Keys[i].Name = n
	}
	seq.Group("Director").Tracks = append(seq.Group("Director").Tracks, et)

	if got := seq.EventNames(); !slices.Equal(got, []string{"Boom", "Flash"}) {
		t.Errorf("EventNames() = %v", got)
	}
}

func TestLoopDefaultsToWholeSequence(t *testing.T) {
	seq := flashSequence(t)
	if s, e := seq.Loop(); s != 0 || e != 10 {
		t.Errorf("Loop() = %v, %v", s, e)
	}
	seq.LoopStart, seq.LoopEnd = 2, 6
	if s, e := seq.Loop(); s != 2 || e != 6 {
		t.Errorf("Loop() = %v, %v", s, e)
	}
}

func TestWriteRead(t *testing.T) {
	seq := flashSequence(t)
	mt := &track.MoveTrack{Frame: track.FrameRelativeToInitial}
	mt.Curve.AddKey(0, curve.Transform{}, curve.Cubic)
	k := mt.Curve.AddKey(4, curve.Transform{Position: curve.Vector{X: 3}}, curve.Cubic)
	mt.Keys[k].Ref = "Director"
	toggle := &track.ToggleTrack{FireOnJump: true}
	toggle.Insert(track.ToggleKey{Stamp: track.Stamp{Time: 1}, Action: track.ToggleTrigger})
	toggle.Condition = track.WhenConditionDisabled
	seq.Group("Lamp").Tracks = append(seq.Group("Lamp").Tracks, mt, toggle)

	path := filepath.Join(t.TempDir(), "flash.yaml")
	if err := Write(seq, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "kind: float-property") {
		t.Errorf("encoded file has no kind discriminator:\n%s", raw)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	lamp := got.Group("Lamp")
	if lamp == nil || lamp.Folder != "Props" || len(lamp.Tracks) != 4 {
		t.Fatalf("Lamp group did not survive: %+v", lamp)
	}
	if got.DirectorGroup() == nil || got.DirectorTrack().Keys[0].Target != "Lamp" {
		t.Errorf("director group lost")
	}

	ft := lamp.Tracks[0].(*track.FloatPropertyTrack)
	if ft.Property != "glow" || ft.Len() != 3 || ft.Curve.Eval(2.5, 0) != 0.5 {
		t.Errorf("float track = %+v", ft)
	}
	et := lamp.Tracks[1].(*track.EventTrack)
	if !et.FireForwards || !et.FireBackwards || et.Keys[0].Name != "Flash" {
		t.Errorf("event track = %+v", et)
	}
	gm := lamp.Tracks[2].(*track.MoveTrack)
	if gm.Frame != track.FrameRelativeToInitial || gm.Keys[1].Ref != "Director" || gm.Keys[1].Mode != curve.Cubic {
		t.Errorf("move track = %+v", gm)
	}
	gt := lamp.Tracks[3].(*track.ToggleTrack)
	if !gt.FireOnJump || gt.Condition != track.WhenConditionDisabled || gt.Keys[0].Action != track.ToggleTrigger {
		t.Errorf("toggle track = %+v", gt)
	}
}

func TestDecodeSortsKeys(t *testing.T) {
	data := []byte(`
name: unsorted
length: 5
groups:
  - name: G
    tracks:
      - kind: event
        keys:
          - {time: 4, name: b}
          - {time: 1, name: a}
      - kind: float-property
        property: glow
        keys:
          - {time: 3, value: 1, mode: linear}
          - {time: 0, value: 0, mode: linear}
`)
	seq, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := seq.Validate(); err != nil {
		t.Fatalf("decoded sequence invalid: %v", err)
	}
	et := seq.Group("G").Tracks[0].(*track.EventTrack)
	if et.Keys[0].Name != "a" {
		t.Errorf("event keys not sorted: %+v", et.Keys)
	}
	if !et.FireForwards {
		t.Errorf("defaults lost on decode")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"unknown kind": "name: x\nlength: 1\ngroups:\n  - name: G\n    tracks:\n      - kind: teleport\n",
		"missing kind": "name: x\nlength: 1\ngroups:\n  - name: G\n    tracks:\n      - keys: []\n",
		"bad mode":     "name: x\nlength: 1\ngroups:\n  - name: G\n    tracks:\n      - kind: slomo\n        keys:\n          - {time: 0, value: 1, mode: wobbly}\n",
	}
	for name, data := range tests {
		if _, err := Decode([]byte(data)); err == nil {
			t.Errorf("%s: Decode succeeded", name)
		}
	}
}

func TestGroupInstanceBindsAndTerminates(t *testing.T) {
	seq := flashSequence(t)
	w := scene.NewWorld()
	lamp := w.Spawn("lamp")
	lamp.Floats["glow"] = 0.7

	env := track.Env{Actor: lamp, Resolver: w, Directory: w, Session: track.Session{Length: 10}}
	gi := NewGroupInstance(seq.Group("Lamp"), env, 0)

	// no notifier: the event track is a no-op, the float track still binds
	if len(gi.Errs) != 1 || !errors.Is(gi.Errs[0], track.ErrMissingBinding) {
		t.Fatalf("Errs = %v", gi.Errs)
	}
	if len(gi.Instances) != len(seq.Group("Lamp").Tracks) {
		t.Fatalf("instances not aligned with tracks")
	}
	if gi.Env.Group != "Lamp" {
		t.Errorf("env group = %q", gi.Env.Group)
	}

	gi.Update(5, false)
	if lamp.Floats["glow"] != 1 {
		t.Errorf("glow = %v at 5", lamp.Floats["glow"])
	}

	seq.Group("Lamp").Tracks[0].Base().Disabled = true
	gi.Update(6, false)
	if lamp.Floats["glow"] != 0.7 {
		t.Errorf("disabled track should restore, glow = %v", lamp.Floats["glow"])
	}
	seq.Group("Lamp").Tracks[0].Base().Disabled = false

	gi.Update(5, false)
	gi.Term()
	gi.Term()
	if lamp.Floats["glow"] != 0.7 || gi.Live() {
		t.Errorf("glow = %v after Term", lamp.Floats["glow"])
	}
	gi.Update(5, false)
	if lamp.Floats["glow"] != 0.7 {
		t.Errorf("terminated instance still updates")
	}
}

func TestGroupInstanceDepth(t *testing.T) {
	w := scene.NewWorld()
	a, b, c := w.Spawn("a"), w.Spawn("b"), w.Spawn("c")
	b.AttachTo(a)
	c.AttachTo(b)

	g := &Group{Name: "C"}
	gi := NewGroupInstance(g, track.Env{Actor: c}, 0)
	if gi.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", gi.Depth())
	}
	if NewGroupInstance(g, track.Env{}, 0).Depth() != 0 {
		t.Errorf("unbound group should sit at depth 0")
	}
}
