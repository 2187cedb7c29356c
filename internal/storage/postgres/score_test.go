package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestScore(t *testing.T) {
	assert.Equal(t, 1000, Score(1, 0))
	assert.Equal(t, 1015, Score(1, 150))
	assert.Equal(t, 5000, Score(5, 9))
	assert.Equal(t, 5001, Score(5, 10))
}

// Property: score is monotonic in both level and damage dealt.
func TestPropertyScoreMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(1, 100).Draw(t, "level")
		damage := rapid.IntRange(0, 100000).Draw(t, "damage")

		if Score(level+1, damage) <= Score(level, damage) {
			t.Fatalf("score did not grow with level at (%d, %d)", level, damage)
		}
		if Score(level, damage+damageDivisor) <= Score(level, damage) {
			t.Fatalf("score did not grow with damage at (%d, %d)", level, damage)
		}
	})
}

// Property: damage contributes strictly less than one level step.
func TestPropertyLevelDominatesDamage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(1, 100).Draw(t, "level")
		damage := rapid.IntRange(0, 9989).Draw(t, "damage")

		if Score(level, damage) >= Score(level+1, 0) {
			t.Fatalf("damage %d outweighed a level at level %d", damage, level)
		}
	})
}
