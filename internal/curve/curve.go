// Package curve holds keyframe primitives and their interpolation.
package curve

import (
	"fmt"
	"slices"
	"sort"
)

// InterpMode selects how a segment is interpolated. The left key of a segment decides.
type InterpMode int

const (
	Linear InterpMode = iota
	Constant
	Cubic     // Hermite with auto tangents
	CubicUser // Hermite with authored tangents
)

var modeNames = map[InterpMode]string{
	Linear:    "linear",
	Constant:  "constant",
	Cubic:     "cubic",
	CubicUser: "cubic-user",
}

func (m InterpMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("InterpMode(%d)", int(m))
}

func (m InterpMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *InterpMode) UnmarshalText(b []byte) error {
	for k, v := range modeNames {
		if v == string(b) {
			*m = k
			return nil
		}
	}
	return fmt.Errorf("unknown interp mode %q", string(b))
}

// Key is a single keyframe.
type Key[T Value[T]] struct {
	Time   float64    `yaml:"time"`
	Value  T          `yaml:"value"`
	Mode   InterpMode `yaml:"mode"`
	Arrive T          `yaml:"arrive,omitempty"`
	Leave  T          `yaml:"leave,omitempty"`
	// Ref names a group whose live bound object supplies this key's value at evaluation time.
	Ref string `yaml:"ref,omitempty"`
}

// Live resolves the value of a lookup key. ok is false when the referenced object is gone.
type Live[T Value[T]] func(k *Key[T]) (v T, ok bool)

// Curve is a list of keys sorted ascending by time.
type Curve[T Value[T]] struct {
	Keys    []Key[T] `yaml:"keys"`
	Tension float64  `yaml:"tension,omitempty"`
}

func (c *Curve[T]) Len() int {
	return len(c.Keys)
}

func (c *Curve[T]) KeyTime(i int) float64 {
	return c.Keys[i].Time
}

// AddKey inserts a key after any existing key at the same time and returns its index.
func (c *Curve[T]) AddKey(t float64, v T, mode InterpMode) int {
	i := c.insertIndex(t)
	c.Keys = slices.Insert(c.Keys, i, Key[T]{Time: t, Value: v, Mode: mode})
	c.AutoTangents()
	return i
}

// SetKeyTime moves key i to t and returns its new index.
func (c *Curve[T]) SetKeyTime(i int, t float64) int {
	if i < 0 || i >= len(c.Keys) {
		return -1
	}
	k := c.Keys[i]
	c.Keys = slices.Delete(c.Keys, i, i+1)
	k.Time = t
	j := c.insertIndex(t)
	c.Keys = slices.Insert(c.Keys, j, k)
	c.AutoTangents()
	return j
}

func (c *Curve[T]) RemoveKey(i int) {
	if i < 0 || i >= len(c.Keys) {
		return
	}
	c.Keys = slices.Delete(c.Keys, i, i+1)
	c.AutoTangents()
}

// Normalize restores the sort order and auto tangents, e.g. after decoding.
func (c *Curve[T]) Normalize() {
	sort.SliceStable(c.Keys, func(i, j int) bool { return c.Keys[i].Time < c.Keys[j].Time })
	c.AutoTangents()
}

// Sorted reports whether keys are non-decreasing by time.
func (c *Curve[T]) Sorted() bool {
	for i := 1; i < len(c.Keys); i++ {
		if c.Keys[i].Time < c.Keys[i-1].Time {
			return false
		}
	}
	return true
}

// AutoTangents recomputes arrive/leave tangents of every key that is not CubicUser.
func (c *Curve[T]) AutoTangents() {
	val := func(j int) T { return c.Keys[j].Value }
	for i := range c.Keys {
		if c.Keys[i].Mode == CubicUser {
			continue
		}
		tan := c.autoTangent(i, val)
		c.Keys[i].Arrive = tan
		c.Keys[i].Leave = tan
	}
}

// Eval returns the curve value at t, or def when the curve has no keys.
func (c *Curve[T]) Eval(t float64, def T) T {
	return c.EvalWith(t, def, nil)
}

// EvalWith is Eval with lookup keys resolved through live.
func (c *Curve[T]) EvalWith(t float64, def T, live Live[T]) T {
	n := len(c.Keys)
	if n == 0 {
		return def
	}

	val := func(j int) T {
		k := &c.Keys[j]
		if k.Ref != "" && live != nil {
			if v, ok := live(k); ok {
				return v
			}
		}
		return k.Value
	}

	if n == 1 || t <= c.Keys[0].Time {
		return val(0)
	}
	if t >= c.Keys[n-1].Time {
		return val(n - 1)
	}

	i := sort.Search(n, func(i int) bool { return c.Keys[i].Time > t }) - 1
	a, b := &c.Keys[i], &c.Keys[i+1]
	dt := b.Time - a.Time
	if dt <= 0 {
		return val(i + 1)
	}
	s := (t - a.Time) / dt
	p0, p1 := val(i), val(i+1)

	switch a.Mode {
	case Constant:
		return p0
	case Linear:
		return Lerp(p0, p1, s)
	}

	leave, arrive := a.Leave, b.Arrive
	if live != nil && c.hasRef(i-1, i+2) {
		// stored tangents were computed from baked values
		if a.Mode == Cubic {
			leave = c.autoTangent(i, val)
		}
		if b.Mode != CubicUser {
			arrive = c.autoTangent(i+1, val)
		}
	}
	return Hermite(p0, leave.Scale(dt), p1, arrive.Scale(dt), s)
}

// Bracket returns the index of the last key at or before t, or -1.
func (c *Curve[T]) Bracket(t float64) int {
	return sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Time > t }) - 1
}

func (c *Curve[T]) insertIndex(t float64) int {
	return sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Time > t })
}

func (c *Curve[T]) hasRef(from, to int) bool {
	for j := max(from, 0); j <= to && j < len(c.Keys); j++ {
		if c.Keys[j].Ref != "" {
			return true
		}
	}
	return false
}

// autoTangent is the Catmull-Rom slope (per second) at key i. Endpoints are flat.
func (c *Curve[T]) autoTangent(i int, val func(int) T) T {
	var zero T
	if i <= 0 || i >= len(c.Keys)-1 {
		return zero
	}
	span := c.Keys[i+1].Time - c.Keys[i-1].Time
	if span <= 0 {
		return zero
	}
	return val(i + 1).Sub(val(i - 1)).Scale((1 - c.Tension) / span)
}
