// Package combat implements the tick-driven fighter core: the per-fighter
// state machine, the attack resolver, and the hitbox/hurtbox collision
// engine. It owns all mutable fighter state; callers drive it one tick at a
// time and consume the events it returns.
package combat

import "fmt"

// State is one of the fixed fighter states. The set is closed: the state
// machine never produces a value outside this list.
type State string

const (
	StateIdle      State = "idle"
	StateMove      State = "move"
	StateJump      State = "jump"
	StateBlock     State = "block"
	StateTelegraph State = "telegraph"
	StateAttack    State = "attack"
	StateHurt      State = "hurt"
	StateDead      State = "dead"
)

// ParseState converts a state name from configuration into a State.
//
// Postcondition: returns an error for any name outside the closed state
// set, so malformed override keys fail at construction time.
func ParseState(name string) (State, error) {
	s := State(name)
	switch s {
	case StateIdle, StateMove, StateJump, StateBlock,
		StateTelegraph, StateAttack, StateHurt, StateDead:
		return s, nil
	}
	return "", fmt.Errorf("combat: unknown state %q", name)
}

// Actionable reports whether a fighter in s accepts movement, jump, block,
// and attack intents. Telegraph, attack, hurt, and dead states are
// committed; intents are ignored there.
func (s State) Actionable() bool {
	switch s {
	case StateIdle, StateMove, StateBlock:
		return true
	}
	return false
}
