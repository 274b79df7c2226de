package track_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/ivlev/matinee/internal/curve"
	"github.com/ivlev/matinee/internal/effects"
	"github.com/ivlev/matinee/internal/scene"
	"github.com/ivlev/matinee/internal/track"
)

func TestFloatPropertyExampleCurve(t *testing.T) {
	tr := &track.FloatPropertyTrack{Property: "glow"}
	tr.Curve.AddKey(0, 0, curve.Linear)
	tr.Curve.AddKey(5, 1, curve.Linear)
	tr.Curve.AddKey(10, 0, curve.Linear)

	w := scene.NewWorld()
	obj := w.Spawn("lamp")
	obj.Floats["glow"] = 0.3
	env := newEnv(w, "lamp", obj, 10)

	inst := tr.NewInstance()
	if err := inst.Init(env, 0); err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0, 0.8, 0.6, 0.4, 0.2, 0}
	for i, v := range want {
		inst.Update(float64(i), false)
		if got := obj.Floats["glow"]; math.Abs(got-v) > 1e-9 {
			t.Errorf("glow at %d = %v, want %v", i, got, v)
		}
	}

	inst.Term()
	if obj.Floats["glow"] != 0.3 {
		t.Errorf("glow = %v after Term, want the saved 0.3", obj.Floats["glow"])
	}
}

func TestPropertyTracksRestore(t *testing.T) {
	w := scene.NewWorld()
	obj := w.Spawn("thing")
	obj.Vectors["offset"] = curve.Vector{X: 1}
	obj.Colors["tint"] = curve.Color{R: 0.5, A: 1}

	vt := &track.VectorPropertyTrack{Property: "offset"}
	vt.Curve.AddKey(0, curve.Vector{Y: 4}, curve.Linear)
	ct := &track.ColorPropertyTrack{Property: "tint"}
	ct.Curve.AddKey(0, curve.Color{G: 1}, curve.Linear)

	insts := []track.Instance{vt.NewInstance(), ct.NewInstance()}
	for _, inst := range insts {
		if err := play(inst, newEnv(w, "thing", obj, 5), []float64{0, 2}); err != nil {
			t.Fatal(err)
		}
	}
	if obj.Vectors["offset"] != (curve.Vector{Y: 4}) || obj.Colors["tint"] != (curve.Color{G: 1}) {
		t.Fatalf("values not applied: %+v %+v", obj.Vectors["offset"], obj.Colors["tint"])
	}
	for _, inst := range insts {
		inst.Term()
	}
	if obj.Vectors["offset"] != (curve.Vector{X: 1}) || obj.Colors["tint"] != (curve.Color{R: 0.5, A: 1}) {
		t.Errorf("values not restored: %+v %+v", obj.Vectors["offset"], obj.Colors["tint"])
	}
}

func TestMissingPropertyIsNoop(t *testing.T) {
	tr := &track.FloatPropertyTrack{Property: "nope"}
	tr.Curve.AddKey(0, 1, curve.Linear)

	w := scene.NewWorld()
	obj := w.Spawn("thing")
	inst := tr.NewInstance()
	err := inst.Init(newEnv(w, "thing", obj, 5), 0)
	if !errors.Is(err, track.ErrMissingBinding) {
		t.Fatalf("Init = %v, want ErrMissingBinding", err)
	}
	inst.Update(1, false)
	inst.Restore()
	inst.Term()
	if len(obj.Floats) != 0 {
		t.Errorf("missing binding wrote %v", obj.Floats)
	}
}

func TestDestroyedObjectStopsApplying(t *testing.T) {
	tr := &track.FloatPropertyTrack{Property: "glow"}
	tr.Curve.AddKey(0, 0, curve.Linear)
	tr.Curve.AddKey(10, 10, curve.Linear)

	w := scene.NewWorld()
	obj := w.Spawn("lamp")
	obj.Floats["glow"] = 0
	inst := tr.NewInstance()
	if err := play(inst, newEnv(w, "lamp", obj, 10), []float64{0, 2}); err != nil {
		t.Fatal(err)
	}
	obj.Destroy()
	inst.Update(5, false)
	inst.Term()
	if obj.Floats["glow"] != 2 {
		t.Errorf("glow = %v, a destroyed object must not be written", obj.Floats["glow"])
	}
}

func TestMaterialParamOverride(t *testing.T) {
	w := scene.NewWorld()
	obj := w.Spawn("statue")
	m0, m1, m2 := scene.NewMaterial("a"), scene.NewMaterial("b"), scene.NewMaterial("c")
	m0.Scalars["glow"], m1.Scalars["glow"], m2.Scalars["glow"] = 0.1, 0.2, 0.3
	obj.Materials = []*scene.Material{m0, m1, m2}

	tr := &track.FloatMaterialParamTrack{Param: "glow", Slots: []int{0, 2}}
	tr.Curve.AddKey(0, 0, curve.Linear)
	tr.Curve.AddKey(10, 1, curve.Linear)

	inst := tr.NewInstance()
	if err := play(inst, newEnv(w, "statue", obj, 10), []float64{0, 5}); err != nil {
		t.Fatal(err)
	}
	if m0.Scalars["glow"] != 0.5 || m2.Scalars["glow"] != 0.5 {
		t.Errorf("slots not driven: %v %v", m0.Scalars["glow"], m2.Scalars["glow"])
	}
	if m1.Scalars["glow"] != 0.2 || m1.Overridden() {
		t.Errorf("slot 1 was not selected but changed")
	}

	inst.Term()
	if m0.Scalars["glow"] != 0.1 || m2.Scalars["glow"] != 0.3 || m0.Overridden() {
		t.Errorf("overrides not released: %v %v", m0.Scalars["glow"], m2.Scalars["glow"])
	}
}

func TestVectorMaterialParamSeedsFromCurve(t *testing.T) {
	tr := &track.VectorMaterialParamTrack{Param: "tint"}
	tr.Curve.AddKey(0, curve.Color{R: 0}, curve.Linear)
	tr.Curve.AddKey(10, curve.Color{R: 1}, curve.Linear)

	i := tr.AddKey(5, nil)
	if got := tr.Keys[i].Value.R; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("seeded R = %v, want the interpolated 0.5", got)
	}

	w := scene.NewWorld()
	obj := w.Spawn("bare")
	if err := tr.NewInstance().Init(newEnv(w, "bare", obj, 10), 0); !errors.Is(err, track.ErrMissingBinding) {
		t.Errorf("object without materials: Init = %v", err)
	}
}

func TestFadeAndSlomo(t *testing.T) {
	w := scene.NewWorld()
	pc := w.Spawn("player")
	cam := &camera{}
	pc.Controller = cam

	fade := &track.FadeTrack{Color: curve.Color{A: 1}}
	fade.Curve.AddKey(0, 0, curve.Linear)
	fade.Curve.AddKey(2, 1, curve.Linear)
	slomo := &track.SlomoTrack{}
	slomo.Curve.AddKey(0, 1, curve.Linear)
	slomo.Curve.AddKey(2, 0, curve.Linear)
	slomo.PersistPastEnd = true

	fi, si := fade.NewInstance(), slomo.NewInstance()
	for _, inst := range []track.Instance{fi, si} {
		if err := play(inst, newEnv(w, "dir", pc, 2), []float64{0, 1, 2}); err != nil {
			t.Fatal(err)
		}
	}
	if cam.fade != 1 || cam.color != (curve.Color{A: 1}) {
		t.Errorf("fade = %v %+v", cam.fade, cam.color)
	}
	if d := w.TimeDilation(); d <= 0 || d > 0.001 {
		t.Errorf("dilation = %v, want clamped just above zero", d)
	}

	fi.Term()
	si.Term()
	if cam.fade != 0 {
		t.Errorf("fade not restored: %v", cam.fade)
	}
	if w.TimeDilation() > 0.001 {
		t.Errorf("slomo persists past end but was restored")
	}
}

func TestAudioMaster(t *testing.T) {
	mix := effects.NewMixer()
	tr := &track.AudioMasterTrack{}
	tr.Curve.AddKey(0, curve.Vector{X: 1, Y: 1}, curve.Linear)
	tr.Curve.AddKey(4, curve.Vector{X: 0, Y: 2}, curve.Linear)

	env := newEnv(scene.NewWorld(), "dir", nil, 4)
	env.Audio = mix
	inst := tr.NewInstance()
	if err := play(inst, env, []float64{0, 2}); err != nil {
		t.Fatal(err)
	}
	if v, p := mix.Master(); v != 0.5 || p != 1.5 {
		t.Errorf("master = %v, %v", v, p)
	}
	inst.Term()
	if v, p := mix.Master(); v != 1 || p != 1 {
		t.Errorf("master not restored: %v, %v", v, p)
	}
}

func TestDirectorCuts(t *testing.T) {
	w := scene.NewWorld()
	pc := w.Spawn("player")
	start := w.Spawn("start-view")
	camA, camB := w.Spawn("camA"), w.Spawn("camB")
	w.Bind("Director", pc)
	w.Bind("A", camA)
	w.Bind("B", camB)
	cam := &camera{target: start}
	pc.Controller = cam

	tr := &track.DirectorTrack{}
	tr.Insert(track.CutKey{Stamp: track.Stamp{Time: 2}, Target: "A", Transition: 0.5})
	tr.Insert(track.CutKey{Stamp: track.Stamp{Time: 5}, Target: "B"})
	tr.Insert(track.CutKey{Stamp: track.Stamp{Time: 8}, Target: "Director"})

	if c := tr.CutAt(1, "Director"); c.Group != "Director" || c.Index != -1 {
		t.Errorf("CutAt(1) = %+v, want the director group", c)
	}
	if c := tr.CutAt(2, "Director"); c.Group != "A" || c.Transition != 0.5 {
		t.Errorf("CutAt(2) = %+v", c)
	}

	inst := tr.NewInstance()
	if err := inst.Init(newEnv(w, "Director", pc, 10), 0); err != nil {
		t.Fatal(err)
	}
	inst.Update(3, false)
	inst.Update(4, false)
	if cam.target != camA || len(cam.blends) != 1 || cam.blends[0] != 0.5 {
		t.Fatalf("after first cut: target %v, blends %v", cam.target, cam.blends)
	}

	inst.Update(6, true)
	if cam.target != camB || cam.blends[1] != 0 {
		t.Errorf("jump should cut to B without blending: %v %v", cam.target, cam.blends)
	}

	camA.Destroy()
	inst.Update(3, true)
	if cam.target != camB {
		t.Errorf("cut to a destroyed group changed the view")
	}

	inst.Update(9, false)
	if cam.target != start {
		t.Errorf("cut back to the director group should restore the saved view")
	}
	inst.Update(6, true)
	inst.Term()
	if cam.target != start {
		t.Errorf("view not restored on Term: %v", cam.target)
	}
}

func TestKeysStaySorted(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for k := track.KindMove; k <= track.KindDirector; k++ {
		t.Run(k.String(), func(t *testing.T) {
			tr, err := track.New(k)
			if err != nil {
				t.Fatal(err)
			}
			if tr.Kind() != k {
				t.Fatalf("New(%v).Kind() = %v", k, tr.Kind())
			}
			for i := 0; i < 40; i++ {
				tr.AddKey(math.Round(r.Float64()*20)/2, nil)
				if tr.Len() > 2 && r.Intn(3) == 0 {
					tr.SetKeyTime(r.Intn(tr.Len()), r.Float64()*10)
				}
				if tr.Len() > 5 && r.Intn(5) == 0 {
					tr.RemoveKey(r.Intn(tr.Len()))
				}
				if !track.Sorted(tr) {
					t.Fatalf("keys out of order after step %d", i)
				}
			}
		})
	}
}

func TestAddKeyReturnsInsertedIndex(t *testing.T) {
	tr := eventTrack(1, 3)
	i := tr.AddKey(3, nil)
	if i != 2 {
		t.Errorf("key at an existing time inserted at %d, want after it at 2", i)
	}
	if j := tr.SetKeyTime(0, 4); j != 2 || tr.KeyTime(2) != 4 {
		t.Errorf("SetKeyTime moved key to %d", j)
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		disabled  bool
		cond      track.Condition
		sessionOn bool
		want      bool
	}{
		{false, track.Always, false, true},
		{true, track.Always, true, false},
		{false, track.WhenConditionEnabled, true, true},
		{false, track.WhenConditionEnabled, false, false},
		{false, track.WhenConditionDisabled, false, true},
		{false, track.WhenConditionDisabled, true, false},
	}
	for _, tt := range tests {
		tr := &track.SlomoTrack{}
		tr.Disabled, tr.Condition = tt.disabled, tt.cond
		if got := track.Enabled(tr, track.Session{ConditionEnabled: tt.sessionOn}); got != tt.want {
			t.Errorf("%+v: Enabled = %v", tt, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := track.KindMove; k <= track.KindDirector; k++ {
		got, err := track.ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := track.ParseKind("teleport"); err == nil {
		t.Errorf("unknown kind parsed")
	}
}
