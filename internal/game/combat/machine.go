package combat

import "github.com/ringsidegames/ringd/internal/game/character"

// Advance runs one simulation tick for the fighter: counters first, then
// the intent, then movement integration. distance is the current distance
// to the opponent, used for attack legality.
//
// Counters decrement exactly once per tick in a fixed order (telegraph,
// attack-active, per-attack cooldowns, hitstun, rage-burst cooldown) so a
// match replays identically from the same intent sequence.
//
// Illegal intents (attack on cooldown, attack out of range, movement while
// dead) are ignored for the tick, never reported as errors.
//
// Postcondition: the returned events list every state transition that
// occurred this tick, in order.
func (f *Fighter) Advance(intent Intent, distance float64) []TransitionEvent {
	if f.State == StateDead {
		return nil
	}

	var events []TransitionEvent

	events = f.tickCounters(events)
	if f.State == StateDead {
		return events
	}

	events = f.applyIntent(intent, distance, events)
	f.integrate(&events)

	return events
}

// tickCounters advances every timer and performs expiry transitions.
func (f *Fighter) tickCounters(events []TransitionEvent) []TransitionEvent {
	// Telegraph freeze.
	if f.State == StateTelegraph {
		f.TelegraphTicks--
		if f.TelegraphTicks <= 0 {
			events = f.transition(StateAttack, events)
			f.AttackElapsed = 0
		}
	} else if f.State == StateAttack {
		// Attack-active countdown.
		f.AttackElapsed++
		if f.ActiveAttack == nil || f.AttackElapsed >= f.ActiveAttack.DurationTicks {
			f.finishAttack()
			events = f.transition(StateIdle, events)
		}
	}

	// Per-attack cooldowns.
	for id, ticks := range f.cooldowns {
		if ticks > 0 {
			f.cooldowns[id] = ticks - 1
		}
	}

	// Hitstun.
	if f.State == StateHurt {
		f.HitstunTicks--
		if f.HitstunTicks <= 0 {
			events = f.transition(StateIdle, events)
		}
	}

	// Rage-burst cooldown.
	if f.RageCooldownTicks > 0 {
		f.RageCooldownTicks--
	}

	return events
}

// applyIntent maps this tick's intent onto the transition graph. Attack
// beats jump beats block beats movement when several are requested at once.
func (f *Fighter) applyIntent(intent Intent, distance float64, events []TransitionEvent) []TransitionEvent {
	actionable := f.State.Actionable()
	airborne := f.State == StateJump

	// Attack intents are legal from idle, move, block is excluded, and jump
	// (air attacks); an attack already committed ignores new commands.
	if intent.Command != "" && (actionable && f.State != StateBlock || airborne) {
		if ev, ok := f.tryAttack(intent.Command, distance, events); ok {
			return ev
		}
	}

	if !actionable {
		return events
	}

	// Jumps launch only from idle and move; a blocking fighter must release
	// guard for a tick before leaving the ground.
	if intent.Jump && f.State != StateBlock {
		f.Vel.X = float64(clampDir(intent.MoveX)) * MoveSpeed
		f.Vel.Y = JumpVelocity
		return f.transition(StateJump, events)
	}

	if intent.Block {
		f.Vel.X = 0
		f.GuardZone = intent.GuardZone()
		if f.State != StateBlock {
			events = f.transition(StateBlock, events)
		}
		return events
	}

	if intent.MoveX != 0 {
		f.Vel.X = float64(clampDir(intent.MoveX)) * MoveSpeed
		if f.State != StateMove {
			events = f.transition(StateMove, events)
		}
		return events
	}

	f.Vel.X = 0
	if f.State != StateIdle {
		events = f.transition(StateIdle, events)
	}
	return events
}

// tryAttack resolves and, when legal, commits an attack: the fighter enters
// telegraph (when the attack has one) or goes hit-capable immediately.
// Returns the updated events and whether the intent was consumed; an
// unresolvable, cooling-down, or out-of-range command is simply not
// consumed.
func (f *Fighter) tryAttack(cmd character.Command, distance float64, events []TransitionEvent) ([]TransitionEvent, bool) {
	attack, ok := f.resolver.Resolve(f.Loadout, cmd, f.State)
	if !ok {
		return events, false
	}
	if f.cooldowns[attack.ID] > 0 {
		return events, false
	}
	if distance > attack.Range {
		return events, false
	}

	f.ActiveAttack = attack
	f.AttackElapsed = 0
	f.armorAbsorbed = false
	f.hitLanded = false
	if f.State != StateJump {
		// Grounded attacks root the fighter; air attacks keep their drift.
		f.Vel.X = 0
	}

	// A burst activation runs on the active phase's terms, not the catalog's:
	// the phase sets the activation's duration and knockback and starts the
	// fighter's rage-burst cooldown.
	if attack.Command == character.CommandBurst {
		tuning := f.Char.Profile.TuningFor(f.HealthPercent(), f.Char.Range)
		if rb := tuning.RageBurst; rb != nil {
			burst := *attack
			burst.DurationTicks = rb.DurationTicks
			burst.Knockback = rb.Knockback
			f.ActiveAttack = &burst
			f.RageCooldownTicks = rb.CooldownTicks
		}
	}

	if f.ActiveAttack.Telegraph != nil {
		f.TelegraphTicks = f.ActiveAttack.Telegraph.DurationTicks
		events = f.transition(StateTelegraph, events)
	} else {
		events = f.transition(StateAttack, events)
	}
	return events, true
}

// finishAttack ends the current activation: the attack's cooldown starts
// and the per-activation flags reset.
func (f *Fighter) finishAttack() {
	if f.ActiveAttack != nil {
		f.cooldowns[f.ActiveAttack.ID] = f.ActiveAttack.CooldownTicks
	}
	f.ActiveAttack = nil
	f.AttackElapsed = 0
	f.TelegraphTicks = 0
	f.armorAbsorbed = false
	f.hitLanded = false
}

// integrate applies velocity, gravity, and ground contact.
func (f *Fighter) integrate(events *[]TransitionEvent) {
	f.Pos = f.Pos.Add(f.Vel)

	if f.Pos.Y > 0 || f.Vel.Y > 0 {
		f.Vel.Y -= Gravity
	}
	if f.Pos.Y <= 0 {
		f.Pos.Y = 0
		if f.Vel.Y < 0 {
			f.Vel.Y = 0
		}
		if f.State == StateJump {
			f.Vel.X = 0
			*events = f.transition(StateIdle, *events)
		}
	}

	// Knockback decays while in hitstun.
	if f.State == StateHurt {
		f.Vel.X *= 0.85
	}
}

// transition moves the fighter to next and appends the transition event.
func (f *Fighter) transition(next State, events []TransitionEvent) []TransitionEvent {
	ev := TransitionEvent{Fighter: f.Index, From: f.State, To: next}
	if f.ActiveAttack != nil {
		ev.Attack = f.ActiveAttack.ID
		if next == StateTelegraph && f.ActiveAttack.Telegraph != nil {
			ev.TelegraphFrame = f.ActiveAttack.Telegraph.Frame
		}
	}
	f.State = next
	return append(events, ev)
}

func clampDir(d int) int {
	if d > 0 {
		return 1
	}
	if d < 0 {
		return -1
	}
	return 0
}
