package character

import (
	"fmt"
	"sort"
)

// AttackWeight is one entry of a weighted attack-selection table. Table
// order matters: weighted draws walk entries in order, so a reordered table
// with the same weights is a different table.
type AttackWeight struct {
	Command Command
	Weight  float64
}

// Behavior holds the AI tuning knobs that phases may override.
type Behavior struct {
	// Aggression biases the hold-vs-close decision inside the engage band.
	Aggression float64
	// ReactionDelayTicks delays a computed decision before it surfaces as
	// an intent.
	ReactionDelayTicks int
	// PressureChance gates switching to the telegraph-punish table when the
	// opponent is mid-telegraph.
	PressureChance float64
	// SurvivalInstinct biases retreat rolls when health is low.
	SurvivalInstinct float64
}

// BehaviorOverride is a partial Behavior; nil fields keep the base value.
type BehaviorOverride struct {
	Aggression         *float64
	ReactionDelayTicks *int
	PressureChance     *float64
	SurvivalInstinct   *float64
}

// RangeOverride is a partial RangePolicy; nil fields keep the base value.
type RangeOverride struct {
	EngageRange        *float64
	PreferredDistance  *float64
	RetreatDistance    *float64
	RetreatProbability *float64
}

// RageBurst configures a phase's proximity-triggered area attack: if the
// opponent stays within ProximityThreshold for ProximityTicks consecutive
// ticks and the burst is off cooldown, the AI fires the burst command. The
// activation then runs for DurationTicks with this Knockback, overriding the
// catalog entry of the burst attack.
type RageBurst struct {
	ProximityThreshold float64
	ProximityTicks     int
	DurationTicks      int
	CooldownTicks      int
	Knockback          float64
}

// Phase is a health-keyed override bundle. The active phase is the first
// (in descending HPPercent order) whose threshold is >= the fighter's
// current health percent; below every threshold the lowest phase stays
// active.
type Phase struct {
	HPPercent        int
	Behavior         BehaviorOverride
	Attacks          []AttackWeight
	TelegraphAttacks []AttackWeight
	Range            RangeOverride
	RageBurst        *RageBurst
}

// AIProfile is a character's complete AI configuration: base attack tables,
// base behavior, and the phase ladder.
type AIProfile struct {
	Attacks          []AttackWeight
	TelegraphAttacks []AttackWeight
	Behavior         Behavior
	Phases           []Phase
}

// HasRageBurst reports whether any phase defines a rage burst.
func (p *AIProfile) HasRageBurst() bool {
	for i := range p.Phases {
		if p.Phases[i].RageBurst != nil {
			return true
		}
	}
	return false
}

// Validate checks weights, behavior ranges, and the phase ladder.
//
// Postcondition: on nil return, Phases is sorted by HPPercent descending and
// every weight table has positive total weight.
func (p *AIProfile) Validate() error {
	if err := validateWeights("attacks", p.Attacks); err != nil {
		return err
	}
	if len(p.TelegraphAttacks) > 0 {
		if err := validateWeights("telegraph_attacks", p.TelegraphAttacks); err != nil {
			return err
		}
	}
	if err := validateBehavior(p.Behavior); err != nil {
		return err
	}
	seen := make(map[int]bool, len(p.Phases))
	for i := range p.Phases {
		ph := &p.Phases[i]
		if ph.HPPercent < 1 || ph.HPPercent > 100 {
			return fmt.Errorf("profile: phase hp_percent must be in [1, 100], got %d", ph.HPPercent)
		}
		if seen[ph.HPPercent] {
			return fmt.Errorf("profile: duplicate phase threshold %d", ph.HPPercent)
		}
		seen[ph.HPPercent] = true
		if len(ph.Attacks) > 0 {
			if err := validateWeights("phase attacks", ph.Attacks); err != nil {
				return err
			}
		}
		if len(ph.TelegraphAttacks) > 0 {
			if err := validateWeights("phase telegraph_attacks", ph.TelegraphAttacks); err != nil {
				return err
			}
		}
		if rb := ph.RageBurst; rb != nil {
			if rb.ProximityThreshold <= 0 || rb.ProximityTicks < 1 {
				return fmt.Errorf("profile: rage burst proximity must be positive")
			}
			if rb.DurationTicks < 1 || rb.CooldownTicks < 0 {
				return fmt.Errorf("profile: rage burst duration/cooldown out of range")
			}
			if rb.Knockback <= 0 {
				return fmt.Errorf("profile: rage burst knockback must be > 0, got %g", rb.Knockback)
			}
		}
	}
	sort.SliceStable(p.Phases, func(i, j int) bool {
		return p.Phases[i].HPPercent > p.Phases[j].HPPercent
	})
	return nil
}

// PhaseFor returns the active phase for the given health percent: walking
// the ladder in descending threshold order, the last phase whose threshold
// still covers hpPercent (the tightest HPPercent >= hpPercent), else the
// lowest-threshold phase. Pure function of hpPercent; there is no
// hysteresis.
//
// Precondition: Validate must have succeeded and Phases must be non-empty.
func (p *AIProfile) PhaseFor(hpPercent int) *Phase {
	if len(p.Phases) == 0 {
		panic("character: PhaseFor on profile with no phases")
	}
	var active *Phase
	for i := range p.Phases {
		if p.Phases[i].HPPercent >= hpPercent {
			active = &p.Phases[i]
		}
	}
	if active == nil {
		// No threshold covers this health percent; fall back to the
		// lowest-threshold phase.
		active = &p.Phases[len(p.Phases)-1]
	}
	return active
}

// Tuning is the fully merged view of the profile for one phase: base values
// with the phase's overrides applied. The AI engine consumes only this.
type Tuning struct {
	Behavior         Behavior
	Attacks          []AttackWeight
	TelegraphAttacks []AttackWeight
	Range            RangePolicy
	RageBurst        *RageBurst
}

// TuningFor merges the base profile, the base range policy, and the active
// phase for hpPercent into an effective Tuning.
//
// Postcondition: two calls with equal hpPercent return equal Tunings.
func (p *AIProfile) TuningFor(hpPercent int, base RangePolicy) Tuning {
	t := Tuning{
		Behavior:         p.Behavior,
		Attacks:          p.Attacks,
		TelegraphAttacks: p.TelegraphAttacks,
		Range:            base,
	}
	if len(p.Phases) == 0 {
		return t
	}
	ph := p.PhaseFor(hpPercent)
	if v := ph.Behavior.Aggression; v != nil {
		t.Behavior.Aggression = *v
	}
	if v := ph.Behavior.ReactionDelayTicks; v != nil {
		t.Behavior.ReactionDelayTicks = *v
	}
	if v := ph.Behavior.PressureChance; v != nil {
		t.Behavior.PressureChance = *v
	}
	if v := ph.Behavior.SurvivalInstinct; v != nil {
		t.Behavior.SurvivalInstinct = *v
	}
	if len(ph.Attacks) > 0 {
		t.Attacks = ph.Attacks
	}
	if len(ph.TelegraphAttacks) > 0 {
		t.TelegraphAttacks = ph.TelegraphAttacks
	}
	if v := ph.Range.EngageRange; v != nil {
		t.Range.EngageRange = *v
	}
	if v := ph.Range.PreferredDistance; v != nil {
		t.Range.PreferredDistance = *v
	}
	if v := ph.Range.RetreatDistance; v != nil {
		t.Range.RetreatDistance = *v
	}
	if v := ph.Range.RetreatProbability; v != nil {
		t.Range.RetreatProbability = *v
	}
	t.RageBurst = ph.RageBurst
	return t
}

func validateWeights(table string, weights []AttackWeight) error {
	if len(weights) == 0 {
		return fmt.Errorf("profile: %s table must not be empty", table)
	}
	var total float64
	for _, w := range weights {
		if !ValidCommand(w.Command) {
			return fmt.Errorf("profile: %s table has unknown command %q", table, w.Command)
		}
		if w.Weight < 0 {
			return fmt.Errorf("profile: %s table weight for %q must be >= 0, got %g", table, w.Command, w.Weight)
		}
		total += w.Weight
	}
	if total <= 0 {
		return fmt.Errorf("profile: %s table total weight must be > 0", table)
	}
	return nil
}

func validateBehavior(b Behavior) error {
	if b.Aggression < 0 || b.Aggression > 1 {
		return fmt.Errorf("profile: aggression must be in [0, 1], got %g", b.Aggression)
	}
	if b.ReactionDelayTicks < 0 {
		return fmt.Errorf("profile: reaction_delay_ticks must be >= 0, got %d", b.ReactionDelayTicks)
	}
	if b.PressureChance < 0 || b.PressureChance > 1 {
		return fmt.Errorf("profile: pressure_chance must be in [0, 1], got %g", b.PressureChance)
	}
	if b.SurvivalInstinct < 0 || b.SurvivalInstinct > 1 {
		return fmt.Errorf("profile: survival_instinct must be in [0, 1], got %g", b.SurvivalInstinct)
	}
	return nil
}
