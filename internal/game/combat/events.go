package combat

import (
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/geom"
)

// TransitionEvent records one state-machine transition. Presentation
// collaborators map these to animation and audio triggers; the core itself
// does nothing with them after emission.
type TransitionEvent struct {
	Fighter int
	From    State
	To      State
	// Attack is the active attack id during telegraph/attack transitions,
	// empty otherwise.
	Attack string
	// TelegraphFrame is the pose-freeze frame on transitions into
	// telegraph, empty otherwise.
	TelegraphFrame string
}

// HitEvent records one attack connecting with (or being blocked by) a
// defender. At most one HitEvent is emitted per attack activation.
type HitEvent struct {
	Attacker int
	Defender int
	Attack   string
	Damage   int
	// Knockback is the push applied to the defender, already oriented by
	// the attacker's facing.
	Knockback geom.Vec
	Zone      character.Zone
	// Blocked is true when the defender's guard matched the attack zone;
	// Damage then carries only chip damage and Knockback is zero.
	Blocked bool
	// Special marks a hit that pierces super armor.
	Special bool
}
