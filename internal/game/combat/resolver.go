package combat

import (
	"fmt"

	"github.com/ringsidegames/ringd/internal/game/character"
)

// resolverKey is the fully typed lookup key for an override entry.
type resolverKey struct {
	loadout character.Loadout
	command character.Command
	state   State
}

// Resolver maps (loadout, command, contextual state) to a concrete attack.
// Character-specific overrides are consulted first, then the catalog default
// for the (loadout, command) pair. A miss means the intent is ignored for
// the tick; it is never an error.
type Resolver struct {
	char      *character.Character
	overrides map[resolverKey]*character.AttackConfig
}

// NewResolver builds a Resolver from a character's override table. State
// names in the table are parsed into the closed state set here, so a
// malformed entry fails character registration rather than silently never
// matching.
func NewResolver(ch *character.Character) (*Resolver, error) {
	r := &Resolver{
		char:      ch,
		overrides: make(map[resolverKey]*character.AttackConfig, len(ch.Overrides)),
	}
	for key, attackID := range ch.Overrides {
		state, err := ParseState(key.State)
		if err != nil {
			return nil, fmt.Errorf("character %q override %+v: %w", ch.ID, key, err)
		}
		attack, ok := ch.AttackByID(attackID)
		if !ok {
			return nil, fmt.Errorf("character %q override %+v: unknown attack %q", ch.ID, key, attackID)
		}
		r.overrides[resolverKey{key.Loadout, key.Command, state}] = attack
	}
	return r, nil
}

// Resolve returns the concrete attack for (loadout, command) in the given
// state, or false when neither an override nor a catalog default exists.
func (r *Resolver) Resolve(loadout character.Loadout, cmd character.Command, state State) (*character.AttackConfig, bool) {
	if attack, ok := r.overrides[resolverKey{loadout, cmd, state}]; ok {
		return attack, true
	}
	return r.char.DefaultAttack(loadout, cmd)
}
