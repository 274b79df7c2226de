package player

import (
	"errors"
	"sync"

	"github.com/ivlev/matinee/internal/actor"
)

// ErrReentrantActivation is returned when a player is activated twice, or when one of its
// actors is already driven by another active player.
var ErrReentrantActivation = errors.New("reentrant activation")

// Context tracks which players are active and which actors they drive. Players sharing a
// Context never drive the same actor at once.
type Context struct {
	mu     sync.Mutex
	active map[*Player][]actor.Actor
	claims map[actor.Actor]*Player
}

func NewContext() *Context {
	return &Context{
		active: make(map[*Player][]actor.Actor),
		claims: make(map[actor.Actor]*Player),
	}
}

// Active returns the number of active players.
func (c *Context) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// Owner returns the player currently driving a, or nil.
func (c *Context) Owner(a actor.Actor) *Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.claims[a]
}

// activate claims actors for p. Nothing is claimed when any claim fails.
func (c *Context) activate(p *Player, actors []actor.Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[p]; ok {
		return ErrReentrantActivation
	}
	for _, a := range actors {
		if owner, ok := c.claims[a]; ok && owner != p {
			return ErrReentrantActivation
		}
	}
	for _, a := range actors {
		c.claims[a] = p
	}
	c.active[p] = actors
	return nil
}

func (c *Context) release(p *Player) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range c.active[p] {
		if c.claims[a] == p {
			delete(c.claims, a)
		}
	}
	delete(c.active, p)
}
