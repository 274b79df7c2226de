// Package player drives a sequence through time: it owns the group instances of one playback
// session, advances the position every tick and updates groups parent-first.
package player

import (
	"fmt"
	"log"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/ivlev/matinee/internal/actor"
	"github.com/ivlev/matinee/internal/sequence"
	"github.com/ivlev/matinee/internal/track"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// Options are the per-session playback settings.
type Options struct {
	// FixedTimeStep, when positive, replaces the tick delta.
	FixedTimeStep float64
	// EditorPreview keeps instances alive on Stop so the scene can be scrubbed.
	EditorPreview bool
	// ConditionEnabled is the session flag tracks gate on.
	ConditionEnabled bool
	// PlayTriggersWhenJumping lets trigger keys fire on forward jumps.
	PlayTriggersWhenJumping bool
	// Diagnostics logs binding failures.
	Diagnostics bool
}

// Player plays one sequence. Env supplies everything groups bind against; its Group, Actor
// and Session fields are filled in per instance.
type Player struct {
	Seq  *sequence.Sequence
	Env  track.Env
	Opts Options

	ctx       *Context
	state     State
	reverse   bool
	looping   bool
	rate      float64
	pos       float64
	loopStart float64
	loopEnd   float64

	session  string
	groups   []*sequence.GroupInstance
	order    []*sequence.GroupInstance
	gen      int
	finished bool
}

// New returns a stopped player at position 0. ctx may be shared between players that must
// not drive the same actors.
func New(ctx *Context, seq *sequence.Sequence, env track.Env, opts Options) *Player {
	if ctx == nil {
		ctx = NewContext()
	}
	start, end := seq.Loop()
	return &Player{
		Seq:       seq,
		Env:       env,
		Opts:      opts,
		ctx:       ctx,
		rate:      1,
		loopStart: start,
		loopEnd:   end,
	}
}

func (p *Player) State() State      { return p.state }
func (p *Player) Position() float64 { return p.pos }
func (p *Player) Reversed() bool    { return p.reverse }
func (p *Player) Looping() bool     { return p.looping }
func (p *Player) PlayRate() float64 { return p.rate }
func (p *Player) Session() string   { return p.session }
func (p *Player) Active() bool      { return p.groups != nil }
func (p *Player) Length() float64   { return p.Seq.Length }

// LoopSection returns the section looping playback wraps in.
func (p *Player) LoopSection() (start, end float64) { return p.loopStart, p.loopEnd }

// Groups returns the live group instances in creation order.
func (p *Player) Groups() []*sequence.GroupInstance { return p.groups }

// InitInterp validates the sequence, claims the bound actors and creates one group instance
// per bound actor. Groups without a bound actor get a single unbound instance so tracks that
// need no actor still run. Folders are skipped.
func (p *Player) InitInterp() error {
	if p.groups != nil {
		return fmt.Errorf("sequence %q: %w", p.Seq.Name, ErrReentrantActivation)
	}
	if err := p.Seq.Validate(); err != nil {
		return err
	}

	bound := make(map[string][]actor.Actor)
	var claimed []actor.Actor
	for _, g := range p.Seq.Groups {
		if !g.Bindable() || p.Env.Directory == nil {
			continue
		}
		for _, a := range p.Env.Directory.GroupActors(g.Name) {
			if a == nil || !a.Valid() {
				continue
			}
			bound[g.Name] = append(bound[g.Name], a)
			if !slices.Contains(claimed, a) {
				claimed = append(claimed, a)
			}
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	if err := p.ctx.activate(p, claimed); err != nil {
		return fmt.Errorf("sequence %q: %w", p.Seq.Name, err)
	}
	p.session = id.String()

	env := p.Env
	env.Session = track.Session{
		ID:                      p.session,
		Sequence:                p.Seq.Name,
		Length:                  p.Seq.Length,
		ConditionEnabled:        p.Opts.ConditionEnabled,
		PlayTriggersWhenJumping: p.Opts.PlayTriggersWhenJumping,
		Diagnostics:             p.Opts.Diagnostics,
	}

	p.groups = []*sequence.GroupInstance{}
	for _, g := range p.Seq.Groups {
		if !g.Bindable() {
			continue
		}
		actors := bound[g.Name]
		if len(actors) == 0 {
			actors = []actor.Actor{nil}
		}
		for _, a := range actors {
			e := env
			e.Actor = a
			gi := sequence.NewGroupInstance(g, e, p.pos)
			if p.Opts.Diagnostics && len(gi.Errs) > 0 {
				log.Printf("[!] %s/%s: %d tracks without binding", p.Seq.Name, g.Name, len(gi.Errs))
			}
			p.groups = append(p.groups, gi)
		}
	}
	p.order = depthOrder(p.groups)
	p.gen++
	return nil
}

// TermInterp terminates every group instance in creation order and releases the claimed
// actors. It is safe to call at any time, including from a notification.
func (p *Player) TermInterp() {
	if p.groups == nil {
		return
	}
	groups := p.groups
	p.groups = nil
	p.order = nil
	p.gen++
	for _, gi := range groups {
		gi.Term()
	}
	p.ctx.release(p)
}

// depthOrder sorts instances by attachment depth, keeping creation order within a depth.
func depthOrder(groups []*sequence.GroupInstance) []*sequence.GroupInstance {
	buckets := map[int][]*sequence.GroupInstance{}
	var depths []int
	for _, gi := range groups {
		d := gi.Depth()
		if _, ok := buckets[d]; !ok {
			depths = append(depths, d)
		}
		buckets[d] = append(buckets[d], gi)
	}
	slices.Sort(depths)

	out := make([]*sequence.GroupInstance, 0, len(groups))
	for _, d := range depths {
		out = append(out, buckets[d]...)
	}
	return out
}

// SetPosition moves every group instance to t, clamped to the sequence. Parents update before
// the actors riding on them. Updating stops if a callback tears the session down.
func (p *Player) SetPosition(t float64, jump bool) {
	p.pos = math.Max(0, math.Min(t, p.Seq.Length))
	if len(p.groups) == 0 {
		return
	}

	// attachments can change between frames
	p.order = depthOrder(p.groups)
	gen := p.gen
	for _, gi := range p.order {
		gi.Update(p.pos, jump)
		if p.gen != gen || len(p.groups) == 0 {
			return
		}
	}
}

// Play starts forward playback, creating the session if needed. Playing from a stopped or
// paused state at the end of the sequence rewinds first.
func (p *Player) Play(fromStart bool) error {
	return p.start(false, fromStart)
}

// Reverse starts backward playback. Reversing from the start of the sequence rewinds to the end.
func (p *Player) Reverse() error {
	return p.start(true, false)
}

func (p *Player) start(reverse, fromStart bool) error {
	if p.groups == nil {
		if err := p.InitInterp(); err != nil {
			return err
		}
	}
	resuming := p.state != Playing
	p.reverse = reverse
	p.state = Playing
	p.finished = false

	switch {
	case fromStart:
		p.SetPosition(0, true)
	case resuming && !reverse && p.pos >= p.Seq.Length:
		p.SetPosition(0, true)
	case resuming && reverse && p.pos <= 0:
		p.SetPosition(p.Seq.Length, true)
	}
	return nil
}

// Pause toggles between playing and paused, keeping the direction.
func (p *Player) Pause() {
	switch p.state {
	case Playing:
		p.state = Paused
	case Paused:
		p.state = Playing
	}
}

// Stop halts playback. Outside editor preview the session is torn down and every bound
// object returns to its pre-playback state.
func (p *Player) Stop() {
	p.state = Stopped
	if !p.Opts.EditorPreview {
		p.TermInterp()
	}
}

func (p *Player) SetLooping(on bool) { p.looping = on }

// SetPlayRate sets the speed multiplier. Non-positive rates are ignored.
func (p *Player) SetPlayRate(r float64) {
	if r > 0 {
		p.rate = r
	}
}

// SetLoopSection restricts looping playback to [start, end].
func (p *Player) SetLoopSection(start, end float64) error {
	if start < 0 || end > p.Seq.Length || end <= start {
		return fmt.Errorf("loop section [%v, %v] outside [0, %v]", start, end, p.Seq.Length)
	}
	p.loopStart, p.loopEnd = start, end
	return nil
}

// Tick advances playback by dt seconds of wall time.
func (p *Player) Tick(dt float64) {
	if p.state != Playing {
		return
	}
	if p.Opts.FixedTimeStep > 0 {
		dt = p.Opts.FixedTimeStep
	}
	delta := dt * p.rate
	if p.reverse {
		delta = -delta
	}
	next := p.pos + delta

	if p.looping {
		p.tickLooping(next)
		return
	}

	switch {
	case next >= p.Seq.Length && !p.reverse:
		p.SetPosition(p.Seq.Length, false)
		p.finish()
	case next <= 0 && p.reverse:
		p.SetPosition(0, false)
		p.finish()
	default:
		p.SetPosition(next, false)
	}
}

// tickLooping wraps at the loop section: it plays up to the boundary, jumps to the other end
// and plays the remainder.
func (p *Player) tickLooping(next float64) {
	start, end := p.loopStart, p.loopEnd
	span := end - start
	if span <= 0 {
		p.SetPosition(next, false)
		return
	}

	var edge, wrap, rest float64
	switch {
	case !p.reverse && next >= end:
		edge, wrap = end, start
		rest = start + math.Mod(next-end, span)
	case p.reverse && next <= start:
		edge, wrap = start, end
		rest = end - math.Mod(start-next, span)
	default:
		p.SetPosition(next, false)
		return
	}

	gen := p.gen
	p.SetPosition(edge, false)
	if p.gen != gen || p.state != Playing {
		return
	}
	p.SetPosition(wrap, true)
	if p.gen != gen || p.state != Playing {
		return
	}
	p.SetPosition(rest, false)
}

// finish stops playback at a boundary and sends the finished notification once.
func (p *Player) finish() {
	p.state = Stopped
	if !p.finished {
		p.finished = true
		if p.Env.Notifier != nil {
			p.Env.Notifier.Notify(actor.Notification{
				Kind:     actor.SequenceFinished,
				Session:  p.session,
				Sequence: p.Seq.Name,
				Time:     p.pos,
			})
		}
	}
	// the notifier may have restarted playback
	if p.state == Stopped {
		p.Stop()
	}
}
