package combat

// HitstunTicksFor derives hitstun duration from knockback magnitude.
//
// Postcondition: the result is in [baseHitstunTicks, maxHitstunTicks].
func HitstunTicksFor(knockback float64) int {
	ticks := baseHitstunTicks + int(knockback/hitstunPerKnockback)
	if ticks > maxHitstunTicks {
		ticks = maxHitstunTicks
	}
	return ticks
}

// ApplyHit applies an incoming hit event to the defender: damage, meters,
// and the hurt/dead transition. Interruption is immediate and deterministic;
// the match loop calls ApplyHit in fighter-index order, which is the
// tie-break for hits landing on the same tick.
//
// Super armor: while the defender's active attack has it, the first
// non-special hit of the activation deals its damage but does not interrupt.
//
// A blocked hit deals chip damage, builds the defender's pressure meter,
// and crushes the guard (pressure stun) when the meter fills.
//
// Postcondition: the returned events list any transitions caused by the
// hit; health never drops below zero.
func (f *Fighter) ApplyHit(hit HitEvent, pressureCharge int) []TransitionEvent {
	if f.State == StateDead {
		return nil
	}

	var events []TransitionEvent

	f.Health -= hit.Damage
	if f.Health <= 0 {
		f.Health = 0
		f.finishAttack()
		return f.transition(StateDead, events)
	}

	if hit.Blocked {
		f.PressureMeter += pressureCharge
		if f.PressureMeter >= PressureStunThreshold {
			f.PressureMeter = 0
			f.HitstunTicks = pressureStunTicks
			f.Vel.X = 0
			events = f.transition(StateHurt, events)
		}
		return events
	}

	// Super armor absorbs one non-special interrupt per activation.
	if f.State == StateAttack && f.ActiveAttack != nil &&
		f.ActiveAttack.SuperArmor && !hit.Special && !f.armorAbsorbed {
		f.armorAbsorbed = true
		return events
	}

	// Interrupting a committed attack still starts its cooldown.
	if f.State == StateTelegraph || f.State == StateAttack {
		f.finishAttack()
	}

	f.HitstunTicks = HitstunTicksFor(hit.Knockback.Len())
	f.Vel.X = hit.Knockback.X / knockbackVelDivisor
	f.Vel.Y = hit.Knockback.Y / knockbackVelDivisor
	return f.transition(StateHurt, events)
}
