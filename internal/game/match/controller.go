// Package match runs one fight between two fighters: it gathers intents
// from controllers, advances both state machines in index order, resolves
// collisions, and reports transitions, hits, and periodic snapshots to its
// caller. A match is single-threaded within a tick; only the human intent
// feed is safe to call from another goroutine.
package match

import (
	"sync"

	"github.com/ringsidegames/ringd/internal/game/ai"
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
	"github.com/ringsidegames/ringd/internal/game/rng"
)

// Controller produces one intent per tick for a fighter. The match loop
// calls Intent exactly once per tick, in fighter index order.
type Controller interface {
	Intent(obs ai.Observation) combat.Intent
}

// AIController drives a fighter with the decision engine.
type AIController struct {
	engine *ai.Engine
}

// NewAIController builds a controller around a fresh decision engine for ch.
//
// Precondition: ch has been validated and src is non-nil.
func NewAIController(ch *character.Character, src rng.Source) *AIController {
	return &AIController{engine: ai.NewEngine(ch, src)}
}

// Intent delegates to the decision engine.
func (c *AIController) Intent(obs ai.Observation) combat.Intent {
	return c.engine.Decide(obs)
}

// HumanController feeds externally submitted intents into the match loop.
// The network layer submits intents tagged with the tick they target; the
// match consumes them on that tick. An intent for a tick that has already
// run is dropped, never an error. Ticks with no submitted intent run with
// the neutral intent.
type HumanController struct {
	mu       sync.Mutex
	pending  map[int]combat.Intent
	consumed int
}

// NewHumanController returns a controller with an empty intent buffer.
func NewHumanController() *HumanController {
	return &HumanController{pending: make(map[int]combat.Intent), consumed: -1}
}

// SubmitIntent records an intent for the given tick and reports whether it
// was accepted. Safe for concurrent use with the match loop.
//
// Postcondition: returns false exactly when tick has already run.
func (c *HumanController) SubmitIntent(tick int, in combat.Intent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tick <= c.consumed {
		return false
	}
	c.pending[tick] = in
	return true
}

// Intent consumes the intent submitted for the observation's tick, or the
// neutral intent when none was submitted in time.
func (c *HumanController) Intent(obs ai.Observation) combat.Intent {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := c.pending[obs.Tick]
	delete(c.pending, obs.Tick)
	for t := range c.pending {
		if t <= obs.Tick {
			delete(c.pending, t)
		}
	}
	c.consumed = obs.Tick
	return in
}
