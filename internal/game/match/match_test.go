package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringsidegames/ringd/internal/game/ai"
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
	"github.com/ringsidegames/ringd/internal/game/geom"
	"github.com/ringsidegames/ringd/internal/game/match"
	"github.com/ringsidegames/ringd/internal/game/rng"
)

func testCharacter(t *testing.T) *character.Character {
	t.Helper()
	skel, err := character.NewSkeleton(map[string]geom.Vec{
		"root":  {},
		"chest": {Y: 40},
		"head":  {Y: 70},
		"hand":  {X: 30, Y: 45},
	})
	require.NoError(t, err)

	ch := &character.Character{
		ID:        "brawler",
		Name:      "Brawler",
		MaxHealth: 100,
		Skeleton:  skel,
		Hurtbox: character.HurtboxConfig{
			HeadBone: "head", HeadRadius: 12,
			ChestBone: "chest", ChestWidth: 30, ChestHeight: 50,
		},
		Range: character.RangePolicy{
			EngageRange:        60,
			EngageHysteresis:   10,
			ChaseDeadzone:      5,
			ChaseLockTicks:     12,
			AirborneStopRange:  50,
			PreferredDistance:  35,
			RetreatDistance:    90,
			RetreatProbability: 0.1,
		},
		Attacks: []character.AttackConfig{
			{
				ID: "jab", Loadout: "fists", Command: character.CommandLight,
				Zone: character.ZoneCenter, Damage: 10, Knockback: 50, Range: 40,
				DurationTicks: 10, CooldownTicks: 5, SpecialCharge: 5,
			},
			{
				ID: "hook", Loadout: "fists", Command: character.CommandHeavy,
				Zone: character.ZoneHigh, Damage: 18, Knockback: 120, Range: 45,
				DurationTicks: 14, CooldownTicks: 20, PressureCharge: 40,
			},
		},
		Hitboxes: map[string][]character.HitboxConfig{
			"jab":  {{Bone: "hand", Radius: 15, ActiveFromFrac: 0, ActiveToFrac: 1}},
			"hook": {{Bone: "hand", Radius: 18, ActiveFromFrac: 0, ActiveToFrac: 1}},
		},
		Profile: character.AIProfile{
			Attacks: []character.AttackWeight{
				{Command: character.CommandLight, Weight: 3},
				{Command: character.CommandHeavy, Weight: 1},
			},
			Behavior: character.Behavior{Aggression: 0.8, PressureChance: 0.5, SurvivalInstinct: 0.3},
		},
	}
	require.NoError(t, ch.Validate())
	return ch
}

func testFighters(t *testing.T, ch *character.Character) [2]*combat.Fighter {
	t.Helper()
	f0, err := combat.NewFighter(0, ch, "fists", geom.Vec{X: 0}, ch.MaxHealth)
	require.NoError(t, err)
	f1, err := combat.NewFighter(1, ch, "fists", geom.Vec{X: 30}, ch.MaxHealth)
	require.NoError(t, err)
	f1.FacingRight = false
	return [2]*combat.Fighter{f0, f1}
}

// chaser closes toward the opponent and mashes light attack.
type chaser struct{}

func (chaser) Intent(obs ai.Observation) combat.Intent {
	in := combat.Intent{Command: character.CommandLight}
	if obs.Opponent.Pos.X > obs.Self.Pos.X {
		in.MoveX = 1
	} else if obs.Opponent.Pos.X < obs.Self.Pos.X {
		in.MoveX = -1
	}
	return in
}

// dummy stands still and never acts.
type dummy struct{}

func (dummy) Intent(ai.Observation) combat.Intent { return combat.Intent{} }

func TestNewRejectsBadWiring(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)

	_, err := match.New([2]*combat.Fighter{fighters[0], nil}, [2]match.Controller{dummy{}, dummy{}}, match.Config{})
	require.Error(t, err, "nil fighter must be rejected")

	_, err = match.New(fighters, [2]match.Controller{dummy{}, nil}, match.Config{})
	require.Error(t, err, "nil controller must be rejected")

	_, err = match.New([2]*combat.Fighter{fighters[1], fighters[0]}, [2]match.Controller{dummy{}, dummy{}}, match.Config{})
	require.Error(t, err, "fighters out of index order must be rejected")
}

func TestMatchEndsWhenAFighterDies(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)
	m, err := match.New(fighters, [2]match.Controller{chaser{}, dummy{}}, match.Config{SnapshotInterval: 10})
	require.NoError(t, err)

	var last match.TickResult
	for i := 0; i < 5000 && !m.Over(); i++ {
		last = m.Tick()
	}

	require.True(t, m.Over(), "a relentless attacker against a standing dummy must finish the match")
	assert.Equal(t, 0, m.Winner())
	assert.Equal(t, combat.StateDead, m.Fighter(1).State)
	assert.Equal(t, 0, m.Fighter(1).Health)
	assert.Equal(t, ch.MaxHealth, m.DamageDealt(0), "damage dealt must account for the full health bar")
	assert.Zero(t, m.DamageDealt(1))

	require.NotNil(t, last.Snapshot, "the ending tick must carry a snapshot")
	assert.True(t, last.Snapshot.Over)
	assert.Equal(t, 0, last.Snapshot.Winner)
	assert.Equal(t, "dead", last.Snapshot.Fighters[1].State)
}

func TestAttackerGainsSpecialMeterOnLandedHits(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)
	m, err := match.New(fighters, [2]match.Controller{chaser{}, dummy{}}, match.Config{SnapshotInterval: 10})
	require.NoError(t, err)

	var hits int
	for i := 0; i < 5000 && !m.Over(); i++ {
		hits += len(m.Tick().Hits)
	}
	require.Positive(t, hits)
	assert.Equal(t, hits*5, m.Fighter(0).SpecialMeter,
		"each landed jab must credit its special charge to the attacker")
}

func TestSameTickTradeAppliesInAttackerOrder(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)
	m, err := match.New(fighters, [2]match.Controller{chaser{}, chaser{}}, match.Config{SnapshotInterval: 10})
	require.NoError(t, err)

	for i := 0; i < 5000 && !m.Over(); i++ {
		res := m.Tick()
		if len(res.Hits) == 2 {
			assert.Equal(t, 0, res.Hits[0].Attacker, "fighter 0's hit must land first in a same-tick trade")
			assert.Equal(t, 1, res.Hits[1].Attacker)
			return
		}
	}
	t.Fatal("two mirrored attackers never traded on the same tick")
}

func TestSnapshotCadence(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)
	m, err := match.New(fighters, [2]match.Controller{dummy{}, dummy{}}, match.Config{SnapshotInterval: 4})
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		res := m.Tick()
		if (i+1)%4 == 0 {
			require.NotNil(t, res.Snapshot, "tick %d should publish a snapshot", i)
			assert.Equal(t, m.ID.String(), res.Snapshot.MatchID)
			assert.False(t, res.Snapshot.Over)
			assert.Equal(t, -1, res.Snapshot.Winner)
		} else {
			assert.Nil(t, res.Snapshot, "tick %d should not publish a snapshot", i)
		}
	}
}

func TestMaxTicksDecidesOnHealth(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)
	fighters[1].Health = 40
	m, err := match.New(fighters, [2]match.Controller{dummy{}, dummy{}}, match.Config{SnapshotInterval: 10, MaxTicks: 6})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		m.Tick()
	}
	require.True(t, m.Over())
	assert.Equal(t, 0, m.Winner(), "the healthier fighter wins on the time limit")
}

func TestMaxTicksEqualHealthIsADraw(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)
	m, err := match.New(fighters, [2]match.Controller{dummy{}, dummy{}}, match.Config{MaxTicks: 3})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		m.Tick()
	}
	require.True(t, m.Over())
	assert.Equal(t, -1, m.Winner())
}

func TestTickAfterEndIsANoOp(t *testing.T) {
	ch := testCharacter(t)
	fighters := testFighters(t, ch)
	m, err := match.New(fighters, [2]match.Controller{dummy{}, dummy{}}, match.Config{MaxTicks: 1})
	require.NoError(t, err)

	m.Tick()
	require.True(t, m.Over())

	tick := m.CurrentTick()
	res := m.Tick()
	assert.Equal(t, tick, m.CurrentTick(), "a finished match must not advance")
	assert.True(t, res.Over)
	assert.Empty(t, res.Hits)
	assert.Empty(t, res.Transitions)
	require.NotNil(t, res.Snapshot)
}

func TestHumanControllerDropsLateIntents(t *testing.T) {
	c := match.NewHumanController()

	require.True(t, c.SubmitIntent(0, combat.Intent{MoveX: 1}))
	in := c.Intent(ai.Observation{Tick: 0})
	assert.Equal(t, 1, in.MoveX)

	assert.False(t, c.SubmitIntent(0, combat.Intent{MoveX: -1}), "an intent for a consumed tick is dropped")

	require.True(t, c.SubmitIntent(2, combat.Intent{Jump: true}))
	require.True(t, c.SubmitIntent(5, combat.Intent{Block: true}))

	// Tick 3 runs without having consumed tick 2; the stale intent is
	// discarded, the future one survives.
	in = c.Intent(ai.Observation{Tick: 3})
	assert.Zero(t, in, "no intent was submitted for tick 3")
	assert.False(t, c.SubmitIntent(2, combat.Intent{Jump: true}))

	in = c.Intent(ai.Observation{Tick: 5})
	assert.True(t, in.Block)
}

func TestAIMatchIsDeterministicUnderFixedSeeds(t *testing.T) {
	run := func() []match.Snapshot {
		ch := testCharacter(t)
		fighters := testFighters(t, ch)
		controllers := [2]match.Controller{
			match.NewAIController(ch, rng.NewSeededSource(7)),
			match.NewAIController(ch, rng.NewSeededSource(99)),
		}
		m, err := match.New(fighters, controllers, match.Config{SnapshotInterval: 5, MaxTicks: 600})
		require.NoError(t, err)

		var snaps []match.Snapshot
		for !m.Over() {
			if res := m.Tick(); res.Snapshot != nil {
				s := *res.Snapshot
				s.MatchID = ""
				snaps = append(snaps, s)
			}
		}
		return snaps
	}

	first := run()
	second := run()
	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "identical seeds must replay the identical match")
}
