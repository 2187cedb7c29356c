package ai

import (
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
	"github.com/ringsidegames/ringd/internal/game/rng"
)

// Engine is the decision engine for one AI-controlled fighter. It is
// stateful across ticks (reaction-delay queue, chase lock, rage-burst
// proximity accumulation) but owns no fighter state: input is an
// Observation, output is an Intent.
//
// The rage-burst proximity and cooldown counters deliberately live here and
// on the fighter rather than on the phase, so health oscillating across a
// phase boundary cannot reset or re-trigger burst timing.
type Engine struct {
	char *character.Character
	src  rng.Source

	// queue implements the reaction delay: decisions enter at the back and
	// surface as intents ReactionDelayTicks later.
	queue []combat.Intent

	chaseTicks     int
	proximityTicks int
}

// NewEngine creates a decision engine for ch drawing randomness from src.
//
// Precondition: ch must have passed validation; src must be non-nil.
func NewEngine(ch *character.Character, src rng.Source) *Engine {
	if src == nil {
		panic("ai: NewEngine requires a random source")
	}
	return &Engine{char: ch, src: src}
}

// Decide runs one decision tick: it computes this tick's raw decision,
// pushes it through the reaction-delay queue, and returns the intent that
// surfaces this tick (the zero Intent while the queue is still filling).
//
// Postcondition: given identical observation sequences and an identically
// seeded source, two engines return identical intent sequences.
func (e *Engine) Decide(obs Observation) combat.Intent {
	tuning := e.char.Profile.TuningFor(obs.Self.HealthPercent, e.char.Range)

	decision := e.decide(obs, tuning)

	e.queue = append(e.queue, decision)
	delay := tuning.Behavior.ReactionDelayTicks
	if len(e.queue) <= delay {
		return combat.Intent{}
	}
	out := e.queue[0]
	e.queue = e.queue[1:]
	// A shrinking delay (phase change) drains the backlog rather than
	// replaying stale decisions.
	for len(e.queue) > delay {
		out = e.queue[0]
		e.queue = e.queue[1:]
	}
	return out
}

// decide computes the raw decision for this tick, before reaction delay.
func (e *Engine) decide(obs Observation, tuning character.Tuning) combat.Intent {
	if !obs.Self.CanAct {
		return combat.Intent{}
	}

	if intent, ok := e.tryRageBurst(obs, tuning); ok {
		return intent
	}

	intent := e.moveDecision(obs, tuning)

	if cmd, ok := e.attackDecision(obs, tuning); ok {
		intent.Command = cmd
	}
	return intent
}

// tryRageBurst accumulates opponent proximity and fires the burst command
// once the opponent has stayed inside the threshold long enough and the
// burst is off cooldown. Proximity accumulation persists across phase
// switches; only leaving the threshold resets it.
func (e *Engine) tryRageBurst(obs Observation, tuning character.Tuning) (combat.Intent, bool) {
	rb := tuning.RageBurst
	if rb == nil {
		return combat.Intent{}, false
	}
	if obs.Distance <= rb.ProximityThreshold {
		e.proximityTicks++
	} else {
		e.proximityTicks = 0
	}
	if e.proximityTicks < rb.ProximityTicks || !obs.Self.RageReady {
		return combat.Intent{}, false
	}
	if !obs.Ready[character.CommandBurst] {
		return combat.Intent{}, false
	}
	e.proximityTicks = 0
	return combat.Intent{Command: character.CommandBurst}, true
}

// moveDecision implements the range and engagement policy: approach beyond
// the engage band, retreat when crowded, otherwise hold near the preferred
// distance.
func (e *Engine) moveDecision(obs Observation, tuning character.Tuning) combat.Intent {
	var intent combat.Intent
	toward := directionToward(obs)
	pol := tuning.Range

	// Opponent in the air: stop short instead of running under them.
	if obs.Opponent.Airborne && obs.Distance < pol.AirborneStopRange {
		return intent
	}

	// Chase lock keeps the engine committed to an approach for a while,
	// avoiding oscillation at the engage boundary.
	if e.chaseTicks > 0 {
		e.chaseTicks--
		if obs.Distance > pol.ChaseDeadzone {
			intent.MoveX = toward
		}
		return intent
	}

	if obs.Distance > pol.EngageRange+pol.EngageHysteresis {
		e.chaseTicks = pol.ChaseLockTicks
		intent.MoveX = toward
		return intent
	}

	if pol.MaintainDistance && obs.Distance < pol.RetreatDistance {
		retreat := pol.RetreatProbability
		// Low health sharpens the instinct to back off.
		if obs.Self.HealthPercent <= 30 {
			retreat += (1 - retreat) * tuning.Behavior.SurvivalInstinct
		}
		if e.src.Float64() < retreat {
			intent.MoveX = -toward
			return intent
		}
	}

	// Inside the engage band: close toward the preferred distance as often
	// as aggression allows, otherwise hold ground.
	if obs.Distance > pol.PreferredDistance && e.src.Float64() < tuning.Behavior.Aggression {
		intent.MoveX = toward
	}
	return intent
}

// attackDecision rolls the weighted attack tables when an opening is
// available. Mid-telegraph opponents get punished from the telegraph table
// when the pressure roll succeeds.
func (e *Engine) attackDecision(obs Observation, tuning character.Tuning) (character.Command, bool) {
	if obs.Distance > tuning.Range.EngageRange {
		return "", false
	}
	if obs.Self.Attacking || obs.Self.Telegraphing {
		return "", false
	}

	table := tuning.Attacks
	if obs.Opponent.Telegraphing && len(tuning.TelegraphAttacks) > 0 &&
		e.src.Float64() < tuning.Behavior.PressureChance {
		table = tuning.TelegraphAttacks
	}

	ready := make([]character.AttackWeight, 0, len(table))
	for _, w := range table {
		if obs.Ready[w.Command] {
			ready = append(ready, w)
		}
	}
	return WeightedChoice(ready, e.src)
}

// WeightedChoice draws one command from a weighted table: a uniform value
// in [0, totalWeight) walks the table in order, subtracting each entry's
// weight until the remainder goes negative. Table order therefore matters,
// and a seeded source reproduces the draw exactly.
//
// Postcondition: returns (command, true) unless the table is empty or its
// total weight is zero.
func WeightedChoice(table []character.AttackWeight, src rng.Source) (character.Command, bool) {
	var total float64
	for _, w := range table {
		total += w.Weight
	}
	if total <= 0 {
		return "", false
	}
	remainder := src.Float64() * total
	for _, w := range table {
		remainder -= w.Weight
		if remainder < 0 {
			return w.Command, true
		}
	}
	// Floating-point underflow on the final entry.
	return table[len(table)-1].Command, true
}

// directionToward returns the horizontal direction from self to opponent.
func directionToward(obs Observation) int {
	if obs.Opponent.Pos.X > obs.Self.Pos.X {
		return 1
	}
	if obs.Opponent.Pos.X < obs.Self.Pos.X {
		return -1
	}
	return 0
}
