package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ringsidegames/ringd/internal/game/character"
)

func ladderProfile() character.AIProfile {
	aggr60 := 0.7
	delay60 := 3
	retreat25 := 0.05
	return character.AIProfile{
		Attacks: []character.AttackWeight{
			{Command: character.CommandLight, Weight: 3},
			{Command: character.CommandHeavy, Weight: 1},
		},
		TelegraphAttacks: []character.AttackWeight{
			{Command: character.CommandHeavy, Weight: 1},
		},
		Behavior: character.Behavior{
			Aggression:         0.5,
			ReactionDelayTicks: 6,
			PressureChance:     0.3,
			SurvivalInstinct:   0.2,
		},
		Phases: []character.Phase{
			{HPPercent: 100},
			{
				HPPercent: 60,
				Behavior: character.BehaviorOverride{
					Aggression:         &aggr60,
					ReactionDelayTicks: &delay60,
				},
				Attacks: []character.AttackWeight{
					{Command: character.CommandHeavy, Weight: 2},
					{Command: character.CommandLight, Weight: 1},
				},
			},
			{
				HPPercent: 25,
				Range: character.RangeOverride{
					RetreatProbability: &retreat25,
				},
				RageBurst: &character.RageBurst{
					ProximityThreshold: 60,
					ProximityTicks:     40,
					DurationTicks:      14,
					CooldownTicks:      280,
					Knockback:          200,
				},
			},
		},
	}
}

func basePolicy() character.RangePolicy {
	return character.RangePolicy{
		EngageRange:        90,
		EngageHysteresis:   10,
		ChaseDeadzone:      5,
		ChaseLockTicks:     12,
		AirborneStopRange:  70,
		PreferredDistance:  50,
		RetreatDistance:    120,
		RetreatProbability: 0.2,
	}
}

func TestPhaseFor(t *testing.T) {
	p := ladderProfile()
	require.NoError(t, p.Validate())

	// The tightest threshold still covering the health percent wins.
	assert.Equal(t, 100, p.PhaseFor(100).HPPercent)
	assert.Equal(t, 100, p.PhaseFor(61).HPPercent)
	assert.Equal(t, 60, p.PhaseFor(60).HPPercent)
	assert.Equal(t, 60, p.PhaseFor(26).HPPercent)
	assert.Equal(t, 25, p.PhaseFor(25).HPPercent)
	assert.Equal(t, 25, p.PhaseFor(1).HPPercent)

	// Below every threshold the lowest phase stays active.
	assert.Equal(t, 25, p.PhaseFor(0).HPPercent)
}

func TestPhaseForCoversWholeHealthRange(t *testing.T) {
	p := ladderProfile()
	require.NoError(t, p.Validate())

	rapid.Check(t, func(t *rapid.T) {
		hp := rapid.IntRange(0, 100).Draw(t, "hp")
		ph := p.PhaseFor(hp)
		require.NotNil(t, ph)
		if ph.HPPercent < hp {
			// Only the lowest phase may sit below the health percent.
			assert.Equal(t, 25, ph.HPPercent)
		}
	})
}

func TestTuningForMergesOverrides(t *testing.T) {
	p := ladderProfile()
	require.NoError(t, p.Validate())
	base := basePolicy()

	full := p.TuningFor(100, base)
	assert.Equal(t, 0.5, full.Behavior.Aggression, "top phase has no overrides")
	assert.Equal(t, 6, full.Behavior.ReactionDelayTicks)
	assert.Equal(t, character.CommandLight, full.Attacks[0].Command)
	assert.Nil(t, full.RageBurst)

	wounded := p.TuningFor(50, base)
	assert.Equal(t, 0.7, wounded.Behavior.Aggression, "phase override applies")
	assert.Equal(t, 3, wounded.Behavior.ReactionDelayTicks)
	assert.Equal(t, 0.3, wounded.Behavior.PressureChance, "unset override keeps base")
	assert.Equal(t, character.CommandHeavy, wounded.Attacks[0].Command, "phase table replaces base table")
	assert.Equal(t, base.RetreatProbability, wounded.Range.RetreatProbability)

	desperate := p.TuningFor(10, base)
	assert.Equal(t, 0.05, desperate.Range.RetreatProbability, "range override applies")
	assert.Equal(t, base.EngageRange, desperate.Range.EngageRange)
	require.NotNil(t, desperate.RageBurst)
	assert.Equal(t, 40, desperate.RageBurst.ProximityTicks)
}

func TestTuningForIsDeterministic(t *testing.T) {
	p := ladderProfile()
	require.NoError(t, p.Validate())
	base := basePolicy()

	rapid.Check(t, func(t *rapid.T) {
		hp := rapid.IntRange(0, 100).Draw(t, "hp")
		a := p.TuningFor(hp, base)
		b := p.TuningFor(hp, base)
		assert.Equal(t, a.Behavior, b.Behavior)
		assert.Equal(t, a.Range, b.Range)
		assert.Equal(t, a.Attacks, b.Attacks)
	})
}

func TestProfileValidate(t *testing.T) {
	t.Run("empty attack table", func(t *testing.T) {
		p := ladderProfile()
		p.Attacks = nil
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "attacks table")
	})

	t.Run("zero total weight", func(t *testing.T) {
		p := ladderProfile()
		p.Attacks = []character.AttackWeight{{Command: character.CommandLight, Weight: 0}}
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "total weight")
	})

	t.Run("unknown command in table", func(t *testing.T) {
		p := ladderProfile()
		p.Attacks = []character.AttackWeight{{Command: "uppercut", Weight: 1}}
		require.Error(t, p.Validate())
	})

	t.Run("aggression out of range", func(t *testing.T) {
		p := ladderProfile()
		p.Behavior.Aggression = 1.5
		require.Error(t, p.Validate())
	})

	t.Run("duplicate phase threshold", func(t *testing.T) {
		p := ladderProfile()
		p.Phases = append(p.Phases, character.Phase{HPPercent: 60})
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate phase")
	})

	t.Run("phase threshold out of range", func(t *testing.T) {
		p := ladderProfile()
		p.Phases = append(p.Phases, character.Phase{HPPercent: 0})
		require.Error(t, p.Validate())
	})

	t.Run("rage burst without proximity", func(t *testing.T) {
		p := ladderProfile()
		p.Phases[2].RageBurst.ProximityTicks = 0
		require.Error(t, p.Validate())
	})
}

func TestValidateSortsPhasesDescending(t *testing.T) {
	p := ladderProfile()
	// Scramble the ladder; Validate must restore descending order.
	p.Phases[0], p.Phases[2] = p.Phases[2], p.Phases[0]
	require.NoError(t, p.Validate())
	for i := 1; i < len(p.Phases); i++ {
		assert.Greater(t, p.Phases[i-1].HPPercent, p.Phases[i].HPPercent,
			"phases must end up in descending threshold order")
	}
}
