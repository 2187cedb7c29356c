package combat

import (
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/geom"
)

// DetectHit tests the attacker's currently active hitboxes against the
// defender's hurtboxes and returns at most one hit event.
//
// A hitbox entry participates only while the attack's elapsed fraction lies
// in the entry's [activeFrom, activeTo) window. The first overlap of an
// activation wins; once an activation has landed, nothing more is emitted
// for it (MarkHitLanded is set here).
//
// A defender holding a guard that matches the attack's zone converts the
// hit into a blocked event with chip damage and no knockback.
//
// Postcondition: returns (event, true) at most once per attack activation;
// otherwise (zero event, false).
func DetectHit(attacker, defender *Fighter) (HitEvent, bool) {
	if attacker.State != StateAttack || attacker.ActiveAttack == nil {
		return HitEvent{}, false
	}
	if attacker.hitLanded || defender.Invulnerable() {
		return HitEvent{}, false
	}

	attack := attacker.ActiveAttack
	frac := float64(attacker.AttackElapsed) / float64(attack.DurationTicks)

	head := defender.HeadHurtbox()
	chest := defender.ChestHurtbox()

	for _, hb := range attacker.Char.HitboxesFor(attack.ID) {
		if frac < hb.ActiveFromFrac || frac >= hb.ActiveToFrac {
			continue
		}
		if !hitboxOverlaps(attacker, &hb, head, chest) {
			continue
		}

		attacker.MarkHitLanded()

		ev := HitEvent{
			Attacker: attacker.Index,
			Defender: defender.Index,
			Attack:   attack.ID,
			Zone:     attack.Zone,
			Special:  attack.Special,
		}
		if defender.State == StateBlock && defender.GuardZone == attack.Zone {
			ev.Blocked = true
			ev.Damage = attack.Damage / chipDivisor
		} else {
			ev.Damage = attack.Damage
			ev.Knockback = geom.Vec{X: attacker.FacingSign() * attack.Knockback}
		}
		return ev, true
	}
	return HitEvent{}, false
}

// hitboxOverlaps computes the world-space shape of one hitbox entry and
// tests it against both hurtboxes.
func hitboxOverlaps(attacker *Fighter, hb *character.HitboxConfig, head geom.Circle, chest geom.Box) bool {
	offset := attacker.mirrored(hb.Offset)

	if hb.IsLine() {
		seg := geom.Segment{
			A: attacker.BoneWorld(hb.BoneA).Add(offset),
			B: attacker.BoneWorld(hb.BoneB).Add(offset),
		}
		return geom.SegmentCircleOverlap(seg, hb.Thickness, head) ||
			geom.SegmentBoxOverlap(seg, hb.Thickness, chest)
	}

	circle := geom.Circle{
		Center: attacker.BoneWorld(hb.Bone).Add(offset),
		Radius: hb.Radius,
	}
	return geom.CirclesOverlap(circle, head) ||
		geom.CircleBoxOverlap(circle, chest)
}
