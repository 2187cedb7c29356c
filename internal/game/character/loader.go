package character

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ringsidegames/ringd/internal/game/geom"
)

// Default active window for hitbox entries that leave it unspecified.
const (
	defaultActiveFromFrac = 0.0
	defaultActiveToFrac   = 0.35
)

// yamlCharacterFile is the top-level YAML structure for character files.
type yamlCharacterFile struct {
	Character yamlCharacter `yaml:"character"`
}

type yamlCharacter struct {
	ID        string             `yaml:"id"`
	Name      string             `yaml:"name"`
	MaxHealth int                `yaml:"max_health"`
	Skeleton  map[string]yamlVec `yaml:"skeleton"`
	Hurtbox   yamlHurtbox        `yaml:"hurtbox"`
	Range     yamlRange          `yaml:"range"`
	Attacks   []yamlAttack       `yaml:"attacks"`
	Overrides []yamlOverride     `yaml:"overrides"`
	Profile   yamlProfile        `yaml:"profile"`
}

type yamlVec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v yamlVec) vec() geom.Vec { return geom.Vec{X: v.X, Y: v.Y} }

type yamlHurtbox struct {
	Head struct {
		Bone   string  `yaml:"bone"`
		Radius float64 `yaml:"radius"`
		Offset yamlVec `yaml:"offset"`
	} `yaml:"head"`
	Chest struct {
		Bone   string  `yaml:"bone"`
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
		Offset yamlVec `yaml:"offset"`
	} `yaml:"chest"`
}

type yamlRange struct {
	EngageRange        float64 `yaml:"engage_range"`
	EngageHysteresis   float64 `yaml:"engage_hysteresis"`
	ChaseDeadzone      float64 `yaml:"chase_deadzone"`
	ChaseLockTicks     int     `yaml:"chase_lock_ticks"`
	AirborneStopRange  float64 `yaml:"airborne_stop_range"`
	PreferredDistance  float64 `yaml:"preferred_distance"`
	RetreatDistance    float64 `yaml:"retreat_distance"`
	RetreatProbability float64 `yaml:"retreat_probability"`
	MaintainDistance   bool    `yaml:"maintain_distance"`
}

type yamlAttack struct {
	ID             string       `yaml:"id"`
	Loadout        string       `yaml:"loadout"`
	Command        string       `yaml:"command"`
	Zone           string       `yaml:"zone"`
	Damage         int          `yaml:"damage"`
	Knockback      float64      `yaml:"knockback"`
	Range          float64      `yaml:"range"`
	DurationTicks  int          `yaml:"duration_ticks"`
	CooldownTicks  int          `yaml:"cooldown_ticks"`
	SpecialCharge  int          `yaml:"special_charge"`
	PressureCharge int          `yaml:"pressure_charge"`
	SuperArmor     bool         `yaml:"super_armor"`
	Special        bool         `yaml:"special"`
	Telegraph      *struct {
		Frame         string `yaml:"frame"`
		DurationTicks int    `yaml:"duration_ticks"`
	} `yaml:"telegraph"`
	Hitboxes []yamlHitbox `yaml:"hitboxes"`
}

type yamlHitbox struct {
	Bone       string   `yaml:"bone"`
	Radius     float64  `yaml:"radius"`
	BoneA      string   `yaml:"bone_a"`
	BoneB      string   `yaml:"bone_b"`
	Thickness  float64  `yaml:"thickness"`
	Offset     yamlVec  `yaml:"offset"`
	ActiveFrom *float64 `yaml:"active_from"`
	ActiveTo   *float64 `yaml:"active_to"`
}

type yamlOverride struct {
	Loadout string `yaml:"loadout"`
	Command string `yaml:"command"`
	State   string `yaml:"state"`
	Attack  string `yaml:"attack"`
}

type yamlProfile struct {
	Attacks          []yamlWeight `yaml:"attacks"`
	TelegraphAttacks []yamlWeight `yaml:"telegraph_attacks"`
	Behavior         yamlBehavior `yaml:"behavior"`
	Phases           []yamlPhase  `yaml:"phases"`
}

type yamlWeight struct {
	Command string  `yaml:"command"`
	Weight  float64 `yaml:"weight"`
}

type yamlBehavior struct {
	Aggression         float64 `yaml:"aggression"`
	ReactionDelayTicks int     `yaml:"reaction_delay_ticks"`
	PressureChance     float64 `yaml:"pressure_chance"`
	SurvivalInstinct   float64 `yaml:"survival_instinct"`
}

type yamlPhase struct {
	HPPercent int `yaml:"hp_percent"`
	Behavior  struct {
		Aggression         *float64 `yaml:"aggression"`
		ReactionDelayTicks *int     `yaml:"reaction_delay_ticks"`
		PressureChance     *float64 `yaml:"pressure_chance"`
		SurvivalInstinct   *float64 `yaml:"survival_instinct"`
	} `yaml:"behavior"`
	Attacks          []yamlWeight `yaml:"attacks"`
	TelegraphAttacks []yamlWeight `yaml:"telegraph_attacks"`
	Range            struct {
		EngageRange        *float64 `yaml:"engage_range"`
		PreferredDistance  *float64 `yaml:"preferred_distance"`
		RetreatDistance    *float64 `yaml:"retreat_distance"`
		RetreatProbability *float64 `yaml:"retreat_probability"`
	} `yaml:"range"`
	RageBurst *struct {
		ProximityThreshold float64 `yaml:"proximity_threshold"`
		ProximityTicks     int     `yaml:"proximity_ticks"`
		DurationTicks      int     `yaml:"duration_ticks"`
		CooldownTicks      int     `yaml:"cooldown_ticks"`
		Knockback          float64 `yaml:"knockback"`
	} `yaml:"rage_burst"`
}

// LoadFromBytes parses and validates a character from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the character schema.
// Postcondition: returns a fully validated *Character or a non-nil error;
// a partially valid character is never returned.
func LoadFromBytes(data []byte) (*Character, error) {
	var file yamlCharacterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing character YAML: %w", err)
	}

	ch, err := convertYAMLCharacter(file.Character)
	if err != nil {
		return nil, err
	}
	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("validating character: %w", err)
	}
	return ch, nil
}

// LoadFromFile reads and validates a single character YAML file.
func LoadFromFile(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading character file %s: %w", path, err)
	}
	ch, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("character file %s: %w", path, err)
	}
	return ch, nil
}

// LoadFromDir loads all .yaml/.yml files in dir as characters.
//
// Postcondition: returns all validated characters or the first error; a
// directory containing one broken character file loads nothing.
func LoadFromDir(dir string) ([]*Character, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading character directory %s: %w", dir, err)
	}

	var chars []*Character
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		ch, err := LoadFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		chars = append(chars, ch)
	}
	return chars, nil
}

func convertYAMLCharacter(y yamlCharacter) (*Character, error) {
	bones := make(map[string]geom.Vec, len(y.Skeleton))
	for name, off := range y.Skeleton {
		bones[name] = off.vec()
	}
	skel, err := NewSkeleton(bones)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", y.ID, err)
	}

	ch := &Character{
		ID:        y.ID,
		Name:      y.Name,
		MaxHealth: y.MaxHealth,
		Skeleton:  skel,
		Hurtbox: HurtboxConfig{
			HeadBone:    y.Hurtbox.Head.Bone,
			HeadRadius:  y.Hurtbox.Head.Radius,
			HeadOffset:  y.Hurtbox.Head.Offset.vec(),
			ChestBone:   y.Hurtbox.Chest.Bone,
			ChestWidth:  y.Hurtbox.Chest.Width,
			ChestHeight: y.Hurtbox.Chest.Height,
			ChestOffset: y.Hurtbox.Chest.Offset.vec(),
		},
		Range: RangePolicy{
			EngageRange:        y.Range.EngageRange,
			EngageHysteresis:   y.Range.EngageHysteresis,
			ChaseDeadzone:      y.Range.ChaseDeadzone,
			ChaseLockTicks:     y.Range.ChaseLockTicks,
			AirborneStopRange:  y.Range.AirborneStopRange,
			PreferredDistance:  y.Range.PreferredDistance,
			RetreatDistance:    y.Range.RetreatDistance,
			RetreatProbability: y.Range.RetreatProbability,
			MaintainDistance:   y.Range.MaintainDistance,
		},
		Hitboxes:  make(map[string][]HitboxConfig, len(y.Attacks)),
		Overrides: make(map[OverrideKey]string, len(y.Overrides)),
	}

	for _, ya := range y.Attacks {
		attack := AttackConfig{
			ID:             ya.ID,
			Loadout:        Loadout(ya.Loadout),
			Command:        Command(ya.Command),
			Zone:           Zone(ya.Zone),
			Damage:         ya.Damage,
			Knockback:      ya.Knockback,
			Range:          ya.Range,
			DurationTicks:  ya.DurationTicks,
			CooldownTicks:  ya.CooldownTicks,
			SpecialCharge:  ya.SpecialCharge,
			PressureCharge: ya.PressureCharge,
			SuperArmor:     ya.SuperArmor,
			Special:        ya.Special,
		}
		if ya.Telegraph != nil {
			attack.Telegraph = &Telegraph{
				Frame:         ya.Telegraph.Frame,
				DurationTicks: ya.Telegraph.DurationTicks,
			}
		}
		ch.Attacks = append(ch.Attacks, attack)

		var boxes []HitboxConfig
		for _, yh := range ya.Hitboxes {
			h := HitboxConfig{
				Bone:           yh.Bone,
				Radius:         yh.Radius,
				BoneA:          yh.BoneA,
				BoneB:          yh.BoneB,
				Thickness:      yh.Thickness,
				Offset:         yh.Offset.vec(),
				ActiveFromFrac: defaultActiveFromFrac,
				ActiveToFrac:   defaultActiveToFrac,
			}
			if yh.ActiveFrom != nil {
				h.ActiveFromFrac = *yh.ActiveFrom
			}
			if yh.ActiveTo != nil {
				h.ActiveToFrac = *yh.ActiveTo
			}
			boxes = append(boxes, h)
		}
		ch.Hitboxes[ya.ID] = boxes
	}

	for _, yo := range y.Overrides {
		key := OverrideKey{
			Loadout: Loadout(yo.Loadout),
			Command: Command(yo.Command),
			State:   yo.State,
		}
		if _, dup := ch.Overrides[key]; dup {
			return nil, fmt.Errorf("character %q: duplicate override key %+v", y.ID, key)
		}
		ch.Overrides[key] = yo.Attack
	}

	ch.Profile = AIProfile{
		Attacks:          convertWeights(y.Profile.Attacks),
		TelegraphAttacks: convertWeights(y.Profile.TelegraphAttacks),
		Behavior: Behavior{
			Aggression:         y.Profile.Behavior.Aggression,
			ReactionDelayTicks: y.Profile.Behavior.ReactionDelayTicks,
			PressureChance:     y.Profile.Behavior.PressureChance,
			SurvivalInstinct:   y.Profile.Behavior.SurvivalInstinct,
		},
	}
	for _, yp := range y.Profile.Phases {
		phase := Phase{
			HPPercent: yp.HPPercent,
			Behavior: BehaviorOverride{
				Aggression:         yp.Behavior.Aggression,
				ReactionDelayTicks: yp.Behavior.ReactionDelayTicks,
				PressureChance:     yp.Behavior.PressureChance,
				SurvivalInstinct:   yp.Behavior.SurvivalInstinct,
			},
			Attacks:          convertWeights(yp.Attacks),
			TelegraphAttacks: convertWeights(yp.TelegraphAttacks),
			Range: RangeOverride{
				EngageRange:        yp.Range.EngageRange,
				PreferredDistance:  yp.Range.PreferredDistance,
				RetreatDistance:    yp.Range.RetreatDistance,
				RetreatProbability: yp.Range.RetreatProbability,
			},
		}
		if yp.RageBurst != nil {
			phase.RageBurst = &RageBurst{
				ProximityThreshold: yp.RageBurst.ProximityThreshold,
				ProximityTicks:     yp.RageBurst.ProximityTicks,
				DurationTicks:      yp.RageBurst.DurationTicks,
				CooldownTicks:      yp.RageBurst.CooldownTicks,
				Knockback:          yp.RageBurst.Knockback,
			}
		}
		ch.Profile.Phases = append(ch.Profile.Phases, phase)
	}

	return ch, nil
}

func convertWeights(in []yamlWeight) []AttackWeight {
	if len(in) == 0 {
		return nil
	}
	out := make([]AttackWeight, 0, len(in))
	for _, w := range in {
		out = append(out, AttackWeight{Command: Command(w.Command), Weight: w.Weight})
	}
	return out
}
