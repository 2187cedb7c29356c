package combat

import "github.com/ringsidegames/ringd/internal/game/character"

// Intent is a single tick's worth of requested action for one fighter. It
// is produced by the AI engine or a human input feed, consumed exactly once
// by the state machine on the tick it targets, and never stored beyond it.
type Intent struct {
	// MoveX is the requested horizontal direction: -1, 0, or +1.
	MoveX int
	// Jump requests a jump this tick.
	Jump bool
	// Block requests holding guard this tick.
	Block bool
	// Guard is the zone protected while blocking. Zero value defaults to
	// center guard.
	Guard character.Zone
	// Command is the attack button pressed this tick, empty for none.
	Command character.Command
}

// GuardZone returns the guarded zone, defaulting to center.
func (i Intent) GuardZone() character.Zone {
	if i.Guard == "" {
		return character.ZoneCenter
	}
	return i.Guard
}
