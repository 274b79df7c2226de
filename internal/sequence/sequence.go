// Package sequence is the authored timeline: groups of tracks, their validation and
// persistence, and the per-session binding of a group to a bound object.
package sequence

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ivlev/matinee/internal/track"
)

// ErrInvariantViolation marks structural errors in authored data. Playback refuses such
// sequences instead of running on inconsistent state.
var ErrInvariantViolation = errors.New("invariant violation")

// GroupKind distinguishes plain groups from the director group and folders.
type GroupKind int

const (
	KindGroup GroupKind = iota
	KindDirector
	// KindFolder only organises other groups. It is never bound and carries no tracks.
	KindFolder
)

var groupKindNames = map[GroupKind]string{KindGroup: "group", KindDirector: "director", KindFolder: "folder"}

func (k GroupKind) String() string { return groupKindNames[k] }

func (k GroupKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *GroupKind) UnmarshalText(b []byte) error {
	for v, name := range groupKindNames {
		if name == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown group kind %q", string(b))
}

// Group is a named set of tracks bound to one object per session.
type Group struct {
	Name string
	Kind GroupKind
	// Folder names the folder group this one is filed under.
	Folder string
	Tracks []track.Track
}

// Bindable reports whether the group is bound to objects at playback.
func (g *Group) Bindable() bool { return g.Kind != KindFolder }

// AddTrack appends a new track of kind k and returns it.
func (g *Group) AddTrack(k track.Kind) (track.Track, error) {
	tr, err := track.New(k)
	if err != nil {
		return nil, err
	}
	g.Tracks = append(g.Tracks, tr)
	return tr, nil
}

// Find returns the first track of kind k, or nil.
func (g *Group) Find(k track.Kind) track.Track {
	for _, tr := range g.Tracks {
		if tr.Kind() == k {
			return tr
		}
	}
	return nil
}

// Sequence is an authored timeline.
type Sequence struct {
	Name   string
	Length float64
	// LoopStart and LoopEnd bound the looping section. A zero LoopEnd loops the whole sequence.
	LoopStart float64
	LoopEnd   float64
	Groups    []*Group
}

// New returns an empty sequence of the given length.
func New(name string, length float64) *Sequence {
	return &Sequence{Name: name, Length: length}
}

// Group returns the group called name, or nil.
func (s *Sequence) Group(name string) *Group {
	for _, g := range s.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// DirectorGroup returns the director group, or nil.
func (s *Sequence) DirectorGroup() *Group {
	for _, g := range s.Groups {
		if g.Kind == KindDirector {
			return g
		}
	}
	return nil
}

// DirectorTrack returns the director group's cut track, or nil.
func (s *Sequence) DirectorTrack() *track.DirectorTrack {
	g := s.DirectorGroup()
	if g == nil {
		return nil
	}
	dt, _ := g.Find(track.KindDirector).(*track.DirectorTrack)
	return dt
}

// AddGroup appends g. A second director group or a duplicate name is rejected.
func (s *Sequence) AddGroup(g *Group) error {
	if g.Name == "" {
		return fmt.Errorf("group without a name: %w", ErrInvariantViolation)
	}
	if s.Group(g.Name) != nil {
		return fmt.Errorf("duplicate group %q: %w", g.Name, ErrInvariantViolation)
	}
	if g.Kind == KindDirector && s.DirectorGroup() != nil {
		return fmt.Errorf("second director group %q: %w", g.Name, ErrInvariantViolation)
	}
	s.Groups = append(s.Groups, g)
	return nil
}

// RemoveGroup drops the group called name. Groups filed under it move to the top level.
func (s *Sequence) RemoveGroup(name string) bool {
	i := slices.IndexFunc(s.Groups, func(g *Group) bool { return g.Name == name })
	if i < 0 {
		return false
	}
	s.Groups = slices.Delete(s.Groups, i, i+1)
	for _, g := range s.Groups {
		if g.Folder == name {
			g.Folder = ""
		}
	}
	return true
}

// EventNames returns every event key name in the sequence, sorted and unique.
func (s *Sequence) EventNames() []string {
	var names []string
	for _, g := range s.Groups {
		for _, tr := range g.Tracks {
			if et, ok := tr.(*track.EventTrack); ok {
				names = append(names, et.Names()...)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Loop returns the looping section, defaulting to the whole sequence.
func (s *Sequence) Loop() (start, end float64) {
	if s.LoopEnd <= s.LoopStart {
		return 0, s.Length
	}
	return s.LoopStart, s.LoopEnd
}

// Normalize sorts the keys of every track.
func (s *Sequence) Normalize() {
	for _, g := range s.Groups {
		for _, tr := range g.Tracks {
			tr.Normalize()
		}
	}
}

// Validate checks the structural invariants playback relies on. Every error wraps
// ErrInvariantViolation.
func (s *Sequence) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("sequence %q: %s: %w", s.Name, fmt.Sprintf(format, args...), ErrInvariantViolation)
	}

	if s.Length < 0 {
		return bad("negative length %v", s.Length)
	}
	if s.LoopEnd > s.LoopStart && (s.LoopStart < 0 || s.LoopEnd > s.Length) {
		return bad("loop section [%v, %v] outside [0, %v]", s.LoopStart, s.LoopEnd, s.Length)
	}

	seen := map[string]*Group{}
	directors := 0
	for _, g := range s.Groups {
		if g.Name == "" {
			return bad("group without a name")
		}
		if seen[g.Name] != nil {
			return bad("duplicate group %q", g.Name)
		}
		seen[g.Name] = g
		if g.Kind == KindDirector {
			directors++
		}
	}
	if directors > 1 {
		return bad("%d director groups", directors)
	}

	for _, g := range s.Groups {
		if g.Folder != "" {
			if f := seen[g.Folder]; f == nil || f.Kind != KindFolder {
				return bad("group %q filed under %q, which is not a folder", g.Name, g.Folder)
			}
		}
		if g.Kind == KindFolder && len(g.Tracks) > 0 {
			return bad("folder %q has tracks", g.Name)
		}
		for i, tr := range g.Tracks {
			if tr.Kind() == track.KindDirector && g.Kind != KindDirector {
				return bad("director track in group %q", g.Name)
			}
			if !track.Sorted(tr) {
				return bad("track %d (%s) of %q has unsorted keys", i, tr.Kind(), g.Name)
			}
			if mt, ok := tr.(*track.MoveTrack); ok && mt.Axes != nil {
				if len(mt.Keys) > 0 {
					return bad("move track %d of %q has both combined and per-axis keys", i, g.Name)
				}
				for _, c := range mt.Axes.All() {
					if !c.Sorted() {
						return bad("move track %d of %q has unsorted axis keys", i, g.Name)
					}
				}
				if !mt.Axes.Aligned() {
					return bad("move track %d of %q has axis keys out of step", i, g.Name)
				}
			}
		}
	}
	return nil
}
