// Package character defines the static, per-character configuration the
// combat simulation runs on: the attack catalog, hitbox/hurtbox geometry
// tables, range and engagement policy, and the AI profile. All of it is
// loaded from YAML once at startup, validated, and immutable afterwards.
package character

import (
	"fmt"

	"github.com/ringsidegames/ringd/internal/game/geom"
)

// Command is an attack button a player or the AI can press.
type Command string

const (
	CommandLight Command = "light"
	CommandHeavy Command = "heavy"
	CommandBurst Command = "burst"
)

// ValidCommand reports whether cmd is a recognised attack command.
func ValidCommand(cmd Command) bool {
	switch cmd {
	case CommandLight, CommandHeavy, CommandBurst:
		return true
	}
	return false
}

// Loadout identifies the weapon set an attack belongs to.
type Loadout string

// Zone is the vertical strike zone of an attack, matched against the
// defender's guard when blocking.
type Zone string

const (
	ZoneHigh   Zone = "high"
	ZoneCenter Zone = "center"
	ZoneLow    Zone = "low"
)

// ValidZone reports whether z is a recognised strike zone.
func ValidZone(z Zone) bool {
	switch z {
	case ZoneHigh, ZoneCenter, ZoneLow:
		return true
	}
	return false
}

// Telegraph describes an attack's wind-up: a named pose frame held for a
// number of ticks before the attack becomes hit-capable.
type Telegraph struct {
	Frame         string
	DurationTicks int
}

// AttackConfig is the static definition of one attack.
//
// Invariant: DurationTicks >= 1 and CooldownTicks >= 0 after validation.
type AttackConfig struct {
	ID      string
	Loadout Loadout
	Command Command
	Zone    Zone

	Damage    int
	Knockback float64
	Range     float64

	DurationTicks int
	CooldownTicks int

	// SpecialCharge and PressureCharge are the meter contributions granted
	// to the attacker when this attack lands.
	SpecialCharge  int
	PressureCharge int

	// SuperArmor lets the attack absorb one non-special interrupting hit
	// per activation without leaving the attack state.
	SuperArmor bool
	// Special marks the attack as piercing super armor on the defender.
	Special bool

	Telegraph *Telegraph
}

// Validate checks the attack's construction invariants.
//
// Postcondition: returns nil iff ID is non-empty, Zone and Command are
// recognised, Damage >= 0, Range > 0, and DurationTicks >= 1.
func (a *AttackConfig) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("attack: id must not be empty")
	}
	if a.Loadout == "" {
		return fmt.Errorf("attack %q: loadout must not be empty", a.ID)
	}
	if !ValidCommand(a.Command) {
		return fmt.Errorf("attack %q: unknown command %q", a.ID, a.Command)
	}
	if !ValidZone(a.Zone) {
		return fmt.Errorf("attack %q: unknown zone %q", a.ID, a.Zone)
	}
	if a.Damage < 0 {
		return fmt.Errorf("attack %q: damage must be >= 0, got %d", a.ID, a.Damage)
	}
	if a.Range <= 0 {
		return fmt.Errorf("attack %q: range must be > 0, got %g", a.ID, a.Range)
	}
	if a.DurationTicks < 1 {
		return fmt.Errorf("attack %q: duration_ticks must be >= 1, got %d", a.ID, a.DurationTicks)
	}
	if a.CooldownTicks < 0 {
		return fmt.Errorf("attack %q: cooldown_ticks must be >= 0, got %d", a.ID, a.CooldownTicks)
	}
	if a.Telegraph != nil && a.Telegraph.DurationTicks < 1 {
		return fmt.Errorf("attack %q: telegraph duration_ticks must be >= 1, got %d", a.ID, a.Telegraph.DurationTicks)
	}
	return nil
}

// HitboxConfig anchors one offensive area of an attack to the skeleton.
// Either Bone (circle) or BoneA/BoneB (weapon line) is set, never both.
// The active window is a fraction of the attack's duration; an attack is
// hit-capable through this entry only while elapsed/duration is in
// [ActiveFromFrac, ActiveToFrac).
type HitboxConfig struct {
	Bone   string
	Radius float64

	BoneA     string
	BoneB     string
	Thickness float64

	Offset geom.Vec

	ActiveFromFrac float64
	ActiveToFrac   float64
}

// IsLine reports whether this entry is a weapon line between two bones.
func (h *HitboxConfig) IsLine() bool { return h.BoneA != "" }

// Validate checks shape selection and the active window.
//
// Postcondition: returns nil iff exactly one of circle/line form is set with
// a positive size and 0 <= ActiveFromFrac < ActiveToFrac <= 1.
func (h *HitboxConfig) Validate() error {
	circle := h.Bone != ""
	line := h.BoneA != "" || h.BoneB != ""
	switch {
	case circle && line:
		return fmt.Errorf("hitbox: bone and bone_a/bone_b are mutually exclusive")
	case circle:
		if h.Radius <= 0 {
			return fmt.Errorf("hitbox on bone %q: radius must be > 0, got %g", h.Bone, h.Radius)
		}
	case line:
		if h.BoneA == "" || h.BoneB == "" {
			return fmt.Errorf("hitbox: weapon line needs both bone_a and bone_b")
		}
		if h.Thickness <= 0 {
			return fmt.Errorf("hitbox on line %q-%q: thickness must be > 0, got %g", h.BoneA, h.BoneB, h.Thickness)
		}
	default:
		return fmt.Errorf("hitbox: either bone or bone_a/bone_b must be set")
	}
	if h.ActiveFromFrac < 0 || h.ActiveToFrac > 1 || h.ActiveFromFrac >= h.ActiveToFrac {
		return fmt.Errorf("hitbox: active window [%g, %g) must satisfy 0 <= from < to <= 1",
			h.ActiveFromFrac, h.ActiveToFrac)
	}
	return nil
}

// HurtboxConfig is a character's defensive geometry: a head circle and a
// chest box, each anchored to a bone. Active whenever the fighter is not in
// an invulnerable state.
type HurtboxConfig struct {
	HeadBone   string
	HeadRadius float64
	HeadOffset geom.Vec

	ChestBone   string
	ChestWidth  float64
	ChestHeight float64
	ChestOffset geom.Vec
}

// Validate checks the hurtbox dimensions.
func (h *HurtboxConfig) Validate() error {
	if h.HeadBone == "" || h.ChestBone == "" {
		return fmt.Errorf("hurtbox: head and chest bones must be set")
	}
	if h.HeadRadius <= 0 {
		return fmt.Errorf("hurtbox: head radius must be > 0, got %g", h.HeadRadius)
	}
	if h.ChestWidth <= 0 || h.ChestHeight <= 0 {
		return fmt.Errorf("hurtbox: chest dimensions must be > 0, got %gx%g", h.ChestWidth, h.ChestHeight)
	}
	return nil
}

// Skeleton is the static bone table for a character: bone name to local
// offset in the facing-right frame. The simulation mirrors offsets across X
// for a left-facing fighter; it never animates bones.
type Skeleton struct {
	bones map[string]geom.Vec
}

// NewSkeleton builds a Skeleton from a bone offset table.
//
// Precondition: bones must be non-empty.
func NewSkeleton(bones map[string]geom.Vec) (*Skeleton, error) {
	if len(bones) == 0 {
		return nil, fmt.Errorf("skeleton: at least one bone is required")
	}
	cp := make(map[string]geom.Vec, len(bones))
	for name, off := range bones {
		if name == "" {
			return nil, fmt.Errorf("skeleton: bone name must not be empty")
		}
		cp[name] = off
	}
	return &Skeleton{bones: cp}, nil
}

// Has reports whether the skeleton defines bone.
func (s *Skeleton) Has(bone string) bool {
	_, ok := s.bones[bone]
	return ok
}

// Offset returns the local offset of bone in the facing-right frame.
//
// Precondition: bone must resolve; unresolved bones are a configuration
// integrity fault caught at character load, so a miss here panics.
func (s *Skeleton) Offset(bone string) geom.Vec {
	off, ok := s.bones[bone]
	if !ok {
		panic("character: unresolved bone " + bone)
	}
	return off
}

// RangePolicy holds the per-character engagement thresholds consumed by the
// AI decision engine.
//
// Invariant (enforced by character validation, not at tick time):
// EngageRange is strictly greater than the hit range of every attack in the
// character's catalog, so the AI always closes to strike range before an
// attack becomes legal.
type RangePolicy struct {
	EngageRange        float64
	EngageHysteresis   float64
	ChaseDeadzone      float64
	ChaseLockTicks     int
	AirborneStopRange  float64
	PreferredDistance  float64
	RetreatDistance    float64
	RetreatProbability float64
	MaintainDistance   bool
}

// Validate checks the policy's numeric invariants against the catalog.
func (r *RangePolicy) Validate(attacks []AttackConfig) error {
	if r.EngageRange <= 0 {
		return fmt.Errorf("range policy: engage_range must be > 0, got %g", r.EngageRange)
	}
	if r.EngageHysteresis < 0 {
		return fmt.Errorf("range policy: engage_hysteresis must be >= 0, got %g", r.EngageHysteresis)
	}
	if r.RetreatProbability < 0 || r.RetreatProbability > 1 {
		return fmt.Errorf("range policy: retreat_probability must be in [0, 1], got %g", r.RetreatProbability)
	}
	if r.ChaseLockTicks < 0 {
		return fmt.Errorf("range policy: chase_lock_ticks must be >= 0, got %d", r.ChaseLockTicks)
	}
	for i := range attacks {
		if attacks[i].Range >= r.EngageRange {
			return fmt.Errorf("range policy: engage_range %g must exceed range %g of attack %q",
				r.EngageRange, attacks[i].Range, attacks[i].ID)
		}
	}
	return nil
}

// OverrideKey is the structured key of a resolver override entry, keyed on
// (loadout, command, state). Keeping the key typed means a malformed entry
// fails character construction instead of silently never matching.
type OverrideKey struct {
	Loadout Loadout
	Command Command
	State   string
}

// Character bundles everything the simulation needs to run one fighter.
//
// Invariant: after Validate, every hitbox and hurtbox bone reference
// resolves in Skeleton, every attack has at least one hitbox entry, and
// every override references an attack in the catalog.
type Character struct {
	ID   string
	Name string
	// MaxHealth is the fighter's starting health in a match.
	MaxHealth int

	Skeleton *Skeleton
	Hurtbox  HurtboxConfig
	Range    RangePolicy
	Profile  AIProfile

	Attacks   []AttackConfig
	Hitboxes  map[string][]HitboxConfig
	Overrides map[OverrideKey]string

	byID      map[string]*AttackConfig
	byCommand map[Loadout]map[Command]*AttackConfig
}

// AttackByID returns the attack with the given id.
func (c *Character) AttackByID(id string) (*AttackConfig, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// DefaultAttack returns the catalog default for (loadout, command).
func (c *Character) DefaultAttack(loadout Loadout, cmd Command) (*AttackConfig, bool) {
	cmds, ok := c.byCommand[loadout]
	if !ok {
		return nil, false
	}
	a, ok := cmds[cmd]
	return a, ok
}

// HitboxesFor returns the hitbox entries of attack id.
//
// Precondition: id must be a catalog attack; validation guarantees every
// attack has at least one entry.
func (c *Character) HitboxesFor(id string) []HitboxConfig {
	return c.Hitboxes[id]
}

// MaxAttackRange returns the longest hit range in the catalog.
func (c *Character) MaxAttackRange() float64 {
	var max float64
	for i := range c.Attacks {
		if c.Attacks[i].Range > max {
			max = c.Attacks[i].Range
		}
	}
	return max
}

// Validate checks the character's full configuration integrity. A violation
// here is a load-time fault: the character fails registration rather than
// letting the core improvise at tick time.
//
// Postcondition: on nil return the lookup indexes are built and all
// invariants documented on Character hold.
func (c *Character) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("character: id must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("character %q: name must not be empty", c.ID)
	}
	if c.MaxHealth < 1 {
		return fmt.Errorf("character %q: max_health must be >= 1, got %d", c.ID, c.MaxHealth)
	}
	if c.Skeleton == nil {
		return fmt.Errorf("character %q: skeleton is required", c.ID)
	}
	if err := c.Hurtbox.Validate(); err != nil {
		return fmt.Errorf("character %q: %w", c.ID, err)
	}
	for _, bone := range []string{c.Hurtbox.HeadBone, c.Hurtbox.ChestBone} {
		if !c.Skeleton.Has(bone) {
			return fmt.Errorf("character %q: hurtbox bone %q does not resolve", c.ID, bone)
		}
	}
	if len(c.Attacks) == 0 {
		return fmt.Errorf("character %q: at least one attack is required", c.ID)
	}

	c.byID = make(map[string]*AttackConfig, len(c.Attacks))
	c.byCommand = make(map[Loadout]map[Command]*AttackConfig)
	for i := range c.Attacks {
		a := &c.Attacks[i]
		if err := a.Validate(); err != nil {
			return fmt.Errorf("character %q: %w", c.ID, err)
		}
		if _, dup := c.byID[a.ID]; dup {
			return fmt.Errorf("character %q: duplicate attack id %q", c.ID, a.ID)
		}
		c.byID[a.ID] = a
		cmds, ok := c.byCommand[a.Loadout]
		if !ok {
			cmds = make(map[Command]*AttackConfig)
			c.byCommand[a.Loadout] = cmds
		}
		// First catalog entry for a (loadout, command) pair is the default.
		if _, exists := cmds[a.Command]; !exists {
			cmds[a.Command] = a
		}

		boxes := c.Hitboxes[a.ID]
		if len(boxes) == 0 {
			return fmt.Errorf("character %q: attack %q has no hitbox entries", c.ID, a.ID)
		}
		for j := range boxes {
			h := &boxes[j]
			if err := h.Validate(); err != nil {
				return fmt.Errorf("character %q attack %q: %w", c.ID, a.ID, err)
			}
			for _, bone := range []string{h.Bone, h.BoneA, h.BoneB} {
				if bone != "" && !c.Skeleton.Has(bone) {
					return fmt.Errorf("character %q attack %q: hitbox bone %q does not resolve",
						c.ID, a.ID, bone)
				}
			}
		}
	}
	for id := range c.Hitboxes {
		if _, ok := c.byID[id]; !ok {
			return fmt.Errorf("character %q: hitbox entry for unknown attack %q", c.ID, id)
		}
	}

	for key, attackID := range c.Overrides {
		if key.Loadout == "" || !ValidCommand(key.Command) || key.State == "" {
			return fmt.Errorf("character %q: malformed override key %+v", c.ID, key)
		}
		if _, ok := c.byID[attackID]; !ok {
			return fmt.Errorf("character %q: override %+v references unknown attack %q",
				c.ID, key, attackID)
		}
	}

	if err := c.Range.Validate(c.Attacks); err != nil {
		return fmt.Errorf("character %q: %w", c.ID, err)
	}
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("character %q: %w", c.ID, err)
	}
	// Phase overrides must keep the engage-range invariant the base policy
	// establishes; a lowered threshold must still cover every attack.
	for i := range c.Profile.Phases {
		ph := &c.Profile.Phases[i]
		if ph.Range.EngageRange == nil {
			continue
		}
		for j := range c.Attacks {
			if c.Attacks[j].Range >= *ph.Range.EngageRange {
				return fmt.Errorf("character %q: phase %d engage_range %g must exceed range %g of attack %q",
					c.ID, ph.HPPercent, *ph.Range.EngageRange, c.Attacks[j].Range, c.Attacks[j].ID)
			}
		}
	}
	if c.Profile.HasRageBurst() {
		burst := false
		for i := range c.Attacks {
			if c.Attacks[i].Command == CommandBurst {
				burst = true
				break
			}
		}
		if !burst {
			return fmt.Errorf("character %q: profile defines a rage burst but the catalog has no %q attack",
				c.ID, CommandBurst)
		}
	}
	return nil
}
