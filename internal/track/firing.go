package track

import (
	"slices"
	"sort"
)

// nudge stretches the traversed interval at the ends of the sequence so keys sitting exactly
// on 0 or on the length still fire.
const nudge = 1e-4

// Span is the interval covered by one update.
type Span struct {
	Lo, Hi  float64
	Forward bool
	Moved   bool
}

// Traverse builds the span between the last and the new position.
// Forward spans are [last, new), reverse spans are (new, last].
func Traverse(last, pos, length float64) Span {
	switch {
	case pos > last:
		s := Span{Lo: last, Hi: pos, Forward: true, Moved: true}
		if pos >= length {
			s.Hi = pos + nudge
		}
		return s
	case pos < last:
		s := Span{Lo: pos, Hi: last, Moved: true}
		if pos <= 0 {
			s.Lo = pos - nudge
		}
		return s
	}
	return Span{Lo: pos, Hi: pos, Forward: true}
}

// Contains reports whether a key at t fires for this span.
func (s Span) Contains(t float64) bool {
	if !s.Moved {
		return false
	}
	if s.Forward {
		return t >= s.Lo && t < s.Hi
	}
	return t > s.Lo && t <= s.Hi
}

// StateLimit is the exclusive upper bound of keys whose state applies after moving to pos.
func StateLimit(pos, length float64, forward bool) float64 {
	if forward && pos >= length {
		return pos + nudge
	}
	return pos
}

// Stamp is the time of a discrete key.
type Stamp struct {
	Time float64 `yaml:"time"`
}

func (s *Stamp) stamp() *Stamp { return s }

type stamped[K any] interface {
	*K
	stamp() *Stamp
}

// Timeline is a time-sorted list of discrete keys.
type Timeline[K any, P stamped[K]] struct {
	Keys []K `yaml:"keys"`
}

func (tl *Timeline[K, P]) Len() int { return len(tl.Keys) }

func (tl *Timeline[K, P]) KeyTime(i int) float64 {
	return P(&tl.Keys[i]).stamp().Time
}

// Insert adds k after any key at the same time and returns its index.
func (tl *Timeline[K, P]) Insert(k K) int {
	t := P(&k).stamp().Time
	i := sort.Search(len(tl.Keys), func(i int) bool { return tl.KeyTime(i) > t })
	tl.Keys = slices.Insert(tl.Keys, i, k)
	return i
}

func (tl *Timeline[K, P]) SetKeyTime(i int, t float64) int {
	if i < 0 || i >= len(tl.Keys) {
		return -1
	}
	k := tl.Keys[i]
	tl.Keys = slices.Delete(tl.Keys, i, i+1)
	P(&k).stamp().Time = t
	return tl.Insert(k)
}

func (tl *Timeline[K, P]) RemoveKey(i int) {
	if i < 0 || i >= len(tl.Keys) {
		return
	}
	tl.Keys = slices.Delete(tl.Keys, i, i+1)
}

func (tl *Timeline[K, P]) Normalize() {
	sort.SliceStable(tl.Keys, func(i, j int) bool { return tl.KeyTime(i) < tl.KeyTime(j) })
}

// Before returns the index of the last key at or before t, or -1.
func (tl *Timeline[K, P]) Before(t float64) int {
	return sort.Search(len(tl.Keys), func(i int) bool { return tl.KeyTime(i) > t }) - 1
}

// Crossed returns the indices of keys inside s, ordered in the direction of play.
func (tl *Timeline[K, P]) Crossed(s Span) []int {
	if !s.Moved {
		return nil
	}
	var out []int
	for i := range tl.Keys {
		if s.Contains(tl.KeyTime(i)) {
			out = append(out, i)
		}
	}
	if !s.Forward {
		slices.Reverse(out)
	}
	return out
}
