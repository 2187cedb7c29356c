// Package ai implements the per-fighter decision engine: it observes the
// match once per tick and produces an intent, using phase-scaled behavior
// parameters and weighted attack selection. All randomness flows through an
// injected source so decisions replay exactly under a fixed seed.
package ai

import (
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
	"github.com/ringsidegames/ringd/internal/game/geom"
)

// FighterView is the read-only slice of one fighter's state exposed to the
// decision engine.
type FighterView struct {
	State         combat.State
	Pos           geom.Vec
	Vel           geom.Vec
	Health        int
	MaxHealth     int
	HealthPercent int
	ActiveAttack  string
	Telegraphing  bool
	Attacking     bool
	Airborne      bool
	FacingRight   bool
	// CanAct is true when the fighter is free to take a new action.
	CanAct bool
	// RageReady is true when the rage-burst cooldown has elapsed.
	RageReady bool
}

// Observation is the immutable snapshot handed to the engine each tick.
// The engine never reads fighter structs directly; the match loop assembles
// this view, including the derived spatial facts.
type Observation struct {
	Tick int

	Self     FighterView
	Opponent FighterView

	// Distance is the current distance between the fighters.
	Distance float64
	// Closing is true when the distance is shrinking.
	Closing bool

	// Ready maps each attack command to whether the self fighter could
	// legally fire it right now, ignoring range.
	Ready map[character.Command]bool
}

// NewFighterView builds a view of f for an observation.
func NewFighterView(f *combat.Fighter) FighterView {
	v := FighterView{
		State:         f.State,
		Pos:           f.Pos,
		Vel:           f.Vel,
		Health:        f.Health,
		MaxHealth:     f.MaxHealth,
		HealthPercent: f.HealthPercent(),
		Telegraphing:  f.State == combat.StateTelegraph,
		Attacking:     f.State == combat.StateAttack,
		Airborne:      f.Airborne(),
		FacingRight:   f.FacingRight,
		CanAct:        f.State.Actionable() || f.State == combat.StateJump,
		RageReady:     f.RageCooldownTicks == 0,
	}
	if f.ActiveAttack != nil {
		v.ActiveAttack = f.ActiveAttack.ID
	}
	return v
}
