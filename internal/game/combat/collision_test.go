package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
	"github.com/ringsidegames/ringd/internal/game/geom"
)

// striker returns an attacker frozen mid-attack and a defender in reach.
func striker(t *testing.T, attackID string, elapsed int) (*combat.Fighter, *combat.Fighter) {
	t.Helper()
	ch := duelist(t)
	attack, ok := ch.AttackByID(attackID)
	require.True(t, ok)

	atk, err := combat.NewFighter(0, ch, attack.Loadout, geom.Vec{}, 100)
	require.NoError(t, err)
	def, err := combat.NewFighter(1, ch, attack.Loadout, geom.Vec{X: 30}, 100)
	require.NoError(t, err)
	def.FacingRight = false

	atk.State = combat.StateAttack
	atk.ActiveAttack = attack
	atk.AttackElapsed = elapsed
	return atk, def
}

func TestDetectHitLands(t *testing.T) {
	atk, def := striker(t, "jab", 2)

	ev, ok := combat.DetectHit(atk, def)
	require.True(t, ok)
	assert.Equal(t, 0, ev.Attacker)
	assert.Equal(t, 1, ev.Defender)
	assert.Equal(t, "jab", ev.Attack)
	assert.Equal(t, 10, ev.Damage)
	assert.Equal(t, character.ZoneCenter, ev.Zone)
	assert.False(t, ev.Blocked)
	assert.Equal(t, 50.0, ev.Knockback.X, "knockback pushes along the attacker's facing")

	_, ok = combat.DetectHit(atk, def)
	assert.False(t, ok, "one hit per activation")
}

func TestDetectHitFacingFlipsKnockback(t *testing.T) {
	atk, def := striker(t, "jab", 2)
	atk.FacingRight = false
	def.Pos.X = -30
	def.FacingRight = true

	ev, ok := combat.DetectHit(atk, def)
	require.True(t, ok)
	assert.Equal(t, -50.0, ev.Knockback.X)
}

func TestDetectHitMatchedGuardBlocks(t *testing.T) {
	atk, def := striker(t, "jab", 2)
	def.State = combat.StateBlock
	def.GuardZone = character.ZoneCenter

	ev, ok := combat.DetectHit(atk, def)
	require.True(t, ok)
	assert.True(t, ev.Blocked)
	assert.Equal(t, 1, ev.Damage, "a block reduces damage to chip")
	assert.Equal(t, geom.Vec{}, ev.Knockback, "blocked hits carry no knockback")
}

func TestDetectHitMismatchedGuardEatsTheHit(t *testing.T) {
	// smash strikes high; a center guard does not cover it.
	atk, def := striker(t, "smash", 2)
	def.State = combat.StateBlock
	def.GuardZone = character.ZoneCenter

	ev, ok := combat.DetectHit(atk, def)
	require.True(t, ok)
	assert.False(t, ev.Blocked, "guard zone must match the attack zone")
	assert.Equal(t, 20, ev.Damage)
}

func TestDetectHitActiveWindow(t *testing.T) {
	// lunge runs 85 ticks with its window at [0.7, 0.8): hit-capable on
	// elapsed ticks 60 through 67 only.
	tests := []struct {
		elapsed int
		want    bool
	}{
		{0, false},
		{59, false},
		{60, true},
		{64, true},
		{67, true},
		{68, false},
		{84, false},
	}
	for _, tt := range tests {
		atk, def := striker(t, "lunge", tt.elapsed)
		_, ok := combat.DetectHit(atk, def)
		assert.Equal(t, tt.want, ok, "elapsed %d", tt.elapsed)
	}
}

func TestDetectHitRequiresActiveAttack(t *testing.T) {
	atk, def := striker(t, "smash", 2)
	atk.State = combat.StateTelegraph

	_, ok := combat.DetectHit(atk, def)
	assert.False(t, ok, "a telegraphing fighter cannot hit")

	atk.State = combat.StateAttack
	atk.ActiveAttack = nil
	_, ok = combat.DetectHit(atk, def)
	assert.False(t, ok)
}

func TestDetectHitSkipsTheDeadAndTheDistant(t *testing.T) {
	atk, def := striker(t, "jab", 2)
	def.State = combat.StateDead
	_, ok := combat.DetectHit(atk, def)
	assert.False(t, ok, "dead defenders are not hit-tested")

	atk, def = striker(t, "jab", 2)
	def.Pos.X = 200
	_, ok = combat.DetectHit(atk, def)
	assert.False(t, ok, "hitboxes must actually overlap a hurtbox")
}

func TestDetectHitSpecialFlagPropagates(t *testing.T) {
	ch := duelist(t)
	lunge, ok := ch.AttackByID("lunge")
	require.True(t, ok)
	lungeCopy := *lunge
	lungeCopy.Special = true

	atk, err := combat.NewFighter(0, ch, "spear", geom.Vec{}, 100)
	require.NoError(t, err)
	def, err := combat.NewFighter(1, ch, "spear", geom.Vec{X: 30}, 100)
	require.NoError(t, err)
	atk.State = combat.StateAttack
	atk.ActiveAttack = &lungeCopy
	atk.AttackElapsed = 62

	ev, hit := combat.DetectHit(atk, def)
	require.True(t, hit)
	assert.True(t, ev.Special)
}
