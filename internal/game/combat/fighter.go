package combat

import (
	"fmt"

	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/geom"
)

// Movement and reaction constants, in world units per tick. The simulation
// runs at a fixed tick rate; none of these depend on wall-clock time.
const (
	MoveSpeed    = 6.0
	JumpVelocity = 16.0
	Gravity      = 1.2

	// Hitstun scales with knockback magnitude within a fixed band.
	baseHitstunTicks    = 8
	hitstunPerKnockback = 25.0
	maxHitstunTicks     = 30

	// knockbackVelDivisor converts a knockback magnitude into a per-tick
	// velocity impulse.
	knockbackVelDivisor = 10.0

	// chipDivisor reduces damage on a successful block.
	chipDivisor = 10

	// Guard crush: a defender whose pressure meter fills while blocking is
	// stunned for pressureStunTicks.
	PressureStunThreshold = 100
	pressureStunTicks     = 45
)

// Fighter is the mutable per-fighter simulation state. It is created at
// match start, mutated once per tick by Advance (and by ApplyHit for
// incoming hits), and discarded at match end. Only the match loop touches
// it; the AI sees fighters exclusively through observations.
type Fighter struct {
	Index   int
	Char    *character.Character
	Loadout character.Loadout

	State       State
	Pos         geom.Vec
	Vel         geom.Vec
	FacingRight bool

	Health    int
	MaxHealth int

	SpecialMeter  int
	PressureMeter int

	// ActiveAttack is non-nil during telegraph and attack states.
	ActiveAttack *character.AttackConfig
	// AttackElapsed counts ticks since the attack became hit-capable.
	AttackElapsed int

	// GuardZone is the protected zone while in the block state.
	GuardZone character.Zone

	TelegraphTicks    int
	HitstunTicks      int
	RageCooldownTicks int

	cooldowns map[string]int

	resolver *Resolver

	// Per-activation flags, reset when a new attack starts.
	armorAbsorbed bool
	hitLanded     bool
}

// NewFighter creates a fighter at the given position. Constructing the
// fighter builds its attack resolver, so a character with malformed
// override entries fails here, at registration, not at tick time.
//
// Precondition: ch must have passed character validation; maxHealth >= 1.
func NewFighter(index int, ch *character.Character, loadout character.Loadout, pos geom.Vec, maxHealth int) (*Fighter, error) {
	if maxHealth < 1 {
		return nil, fmt.Errorf("combat: max health must be >= 1, got %d", maxHealth)
	}
	res, err := NewResolver(ch)
	if err != nil {
		return nil, err
	}
	return &Fighter{
		Index:       index,
		Char:        ch,
		Loadout:     loadout,
		State:       StateIdle,
		Pos:         pos,
		FacingRight: true,
		Health:      maxHealth,
		MaxHealth:   maxHealth,
		GuardZone:   character.ZoneCenter,
		cooldowns:   make(map[string]int),
		resolver:    res,
	}, nil
}

// HealthPercent returns the fighter's health as a percentage in [0, 100].
func (f *Fighter) HealthPercent() int {
	if f.Health <= 0 {
		return 0
	}
	return f.Health * 100 / f.MaxHealth
}

// Airborne reports whether the fighter is off the ground.
func (f *Fighter) Airborne() bool { return f.Pos.Y > 0 || f.State == StateJump }

// CooldownRemaining returns the remaining cooldown ticks for attack id.
func (f *Fighter) CooldownRemaining(id string) int { return f.cooldowns[id] }

// FaceToward turns the fighter toward x. Facing only changes while the
// fighter is free to act; mid-attack and mid-hitstun facing is locked.
func (f *Fighter) FaceToward(x float64) {
	if !f.State.Actionable() {
		return
	}
	if x > f.Pos.X {
		f.FacingRight = true
	} else if x < f.Pos.X {
		f.FacingRight = false
	}
}

// FacingSign returns +1 for right-facing, -1 for left-facing.
func (f *Fighter) FacingSign() float64 {
	if f.FacingRight {
		return 1
	}
	return -1
}

// BoneWorld returns the world position of bone, mirroring the skeleton's
// facing-right offsets for a left-facing fighter.
//
// Precondition: bone must resolve in the character's skeleton.
func (f *Fighter) BoneWorld(bone string) geom.Vec {
	off := f.Char.Skeleton.Offset(bone)
	if !f.FacingRight {
		off = off.MirrorX()
	}
	return f.Pos.Add(off)
}

// mirrored applies facing to an arbitrary local offset.
func (f *Fighter) mirrored(off geom.Vec) geom.Vec {
	if !f.FacingRight {
		return off.MirrorX()
	}
	return off
}

// HeadHurtbox returns the fighter's head hurtbox in world space.
func (f *Fighter) HeadHurtbox() geom.Circle {
	hb := f.Char.Hurtbox
	return geom.Circle{
		Center: f.BoneWorld(hb.HeadBone).Add(f.mirrored(hb.HeadOffset)),
		Radius: hb.HeadRadius,
	}
}

// ChestHurtbox returns the fighter's chest hurtbox in world space.
func (f *Fighter) ChestHurtbox() geom.Box {
	hb := f.Char.Hurtbox
	return geom.Box{
		Center: f.BoneWorld(hb.ChestBone).Add(f.mirrored(hb.ChestOffset)),
		HalfW:  hb.ChestWidth / 2,
		HalfH:  hb.ChestHeight / 2,
	}
}

// Invulnerable reports whether the fighter currently ignores hit tests.
// Dead fighters take no further hits.
func (f *Fighter) Invulnerable() bool { return f.State == StateDead }

// CommandReady reports whether cmd currently resolves to an attack that is
// off cooldown, ignoring range. The match loop uses this to build AI
// observations.
func (f *Fighter) CommandReady(cmd character.Command) bool {
	attack, ok := f.resolver.Resolve(f.Loadout, cmd, f.State)
	if !ok {
		return false
	}
	return f.cooldowns[attack.ID] == 0
}

// HitLanded reports whether the current attack activation has already
// produced a hit event.
func (f *Fighter) HitLanded() bool { return f.hitLanded }

// MarkHitLanded records that the current activation has hit. Called by the
// collision engine; enforces the one-hit-per-activation rule.
func (f *Fighter) MarkHitLanded() { f.hitLanded = true }
