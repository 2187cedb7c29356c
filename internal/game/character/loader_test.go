package character_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringsidegames/ringd/internal/game/character"
)

const validCharacterYAML = `
character:
  id: sparrow
  name: Sparrow
  max_health: 90
  skeleton:
    root: { x: 0, y: 0 }
    chest: { x: 0, y: 40 }
    head: { x: 0, y: 70 }
    hand: { x: 26, y: 44 }
    staff_tip: { x: 55, y: 50 }
  hurtbox:
    head:
      bone: head
      radius: 10
    chest:
      bone: chest
      width: 28
      height: 48
  range:
    engage_range: 80
    engage_hysteresis: 10
    chase_deadzone: 5
    chase_lock_ticks: 12
    airborne_stop_range: 60
    preferred_distance: 45
    retreat_distance: 110
    retreat_probability: 0.2
  attacks:
    - id: poke
      loadout: staff
      command: light
      zone: center
      damage: 6
      knockback: 40
      range: 60
      duration_ticks: 10
      cooldown_ticks: 6
      special_charge: 5
      hitboxes:
        - bone_a: hand
          bone_b: staff_tip
          thickness: 5
          active_from: 0.2
          active_to: 0.5
    - id: smash
      loadout: staff
      command: heavy
      zone: high
      damage: 14
      knockback: 120
      range: 65
      duration_ticks: 16
      cooldown_ticks: 22
      pressure_charge: 30
      telegraph:
        frame: smash_raise
        duration_ticks: 8
      hitboxes:
        - bone: staff_tip
          radius: 12
    - id: air_poke
      loadout: staff
      command: light
      zone: high
      damage: 5
      knockback: 50
      range: 62
      duration_ticks: 9
      cooldown_ticks: 6
      hitboxes:
        - bone: hand
          radius: 10
          active_to: 0.6
  overrides:
    - loadout: staff
      command: light
      state: jump
      attack: air_poke
  profile:
    attacks:
      - { command: light, weight: 3 }
      - { command: heavy, weight: 1 }
    behavior:
      aggression: 0.5
      reaction_delay_ticks: 5
      pressure_chance: 0.3
      survival_instinct: 0.2
`

func TestLoadFromBytes(t *testing.T) {
	ch, err := character.LoadFromBytes([]byte(validCharacterYAML))
	require.NoError(t, err, "a well-formed character must load")

	assert.Equal(t, "sparrow", ch.ID)
	assert.Equal(t, "Sparrow", ch.Name)
	assert.Equal(t, 90, ch.MaxHealth)
	assert.True(t, ch.Skeleton.Has("staff_tip"), "skeleton bones must be loaded")

	poke, ok := ch.AttackByID("poke")
	require.True(t, ok, "catalog attack must resolve by id")
	assert.Equal(t, character.CommandLight, poke.Command)
	assert.Equal(t, character.ZoneCenter, poke.Zone)
	assert.Equal(t, 5, poke.SpecialCharge)
	require.Nil(t, poke.Telegraph, "poke has no wind-up")

	smash, ok := ch.AttackByID("smash")
	require.True(t, ok)
	require.NotNil(t, smash.Telegraph, "smash declares a telegraph")
	assert.Equal(t, "smash_raise", smash.Telegraph.Frame)
	assert.Equal(t, 8, smash.Telegraph.DurationTicks)
}

func TestLoadFromBytesHitboxWindows(t *testing.T) {
	ch, err := character.LoadFromBytes([]byte(validCharacterYAML))
	require.NoError(t, err)

	poke := ch.HitboxesFor("poke")
	require.Len(t, poke, 1)
	assert.True(t, poke[0].IsLine(), "poke swings a weapon line")
	assert.Equal(t, 0.2, poke[0].ActiveFromFrac)
	assert.Equal(t, 0.5, poke[0].ActiveToFrac)

	// No window on the YAML entry means the default one.
	smash := ch.HitboxesFor("smash")
	require.Len(t, smash, 1)
	assert.False(t, smash[0].IsLine())
	assert.Equal(t, 0.0, smash[0].ActiveFromFrac)
	assert.Equal(t, 0.35, smash[0].ActiveToFrac)

	// A half-specified window keeps the default for the other bound.
	air := ch.HitboxesFor("air_poke")
	require.Len(t, air, 1)
	assert.Equal(t, 0.0, air[0].ActiveFromFrac)
	assert.Equal(t, 0.6, air[0].ActiveToFrac)
}

func TestLoadFromBytesOverrides(t *testing.T) {
	ch, err := character.LoadFromBytes([]byte(validCharacterYAML))
	require.NoError(t, err)

	key := character.OverrideKey{Loadout: "staff", Command: character.CommandLight, State: "jump"}
	assert.Equal(t, "air_poke", ch.Overrides[key], "jump override must route light to air_poke")

	// The grounded default for (staff, light) stays the first catalog entry.
	def, ok := ch.DefaultAttack("staff", character.CommandLight)
	require.True(t, ok)
	assert.Equal(t, "poke", def.ID)
}

func TestLoadFromBytesRejectsGarbage(t *testing.T) {
	_, err := character.LoadFromBytes([]byte("character: [not, a, mapping]"))
	require.Error(t, err, "malformed YAML must not load")
}

func TestLoadFromBytesRejectsInvalidCharacters(t *testing.T) {
	tests := []struct {
		name string
		edit func(doc string) string
		want string
	}{
		{
			name: "engage range inside attack range",
			edit: func(doc string) string {
				return replaceOnce(t, doc, "engage_range: 80", "engage_range: 50")
			},
			want: "engage_range",
		},
		{
			name: "hitbox bone does not resolve",
			edit: func(doc string) string {
				return replaceOnce(t, doc, "bone: staff_tip\n          radius: 12", "bone: tail\n          radius: 12")
			},
			want: "does not resolve",
		},
		{
			name: "override references unknown attack",
			edit: func(doc string) string {
				return replaceOnce(t, doc, "attack: air_poke", "attack: dropkick")
			},
			want: "unknown attack",
		},
		{
			name: "zero max health",
			edit: func(doc string) string {
				return replaceOnce(t, doc, "max_health: 90", "max_health: 0")
			},
			want: "max_health",
		},
		{
			name: "inverted active window",
			edit: func(doc string) string {
				return replaceOnce(t, doc, "active_from: 0.2", "active_from: 0.9")
			},
			want: "active window",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := character.LoadFromBytes([]byte(tt.edit(validCharacterYAML)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsRageBurstWithoutBurstAttack(t *testing.T) {
	doc := validCharacterYAML + `    phases:
      - hp_percent: 30
        rage_burst:
          proximity_threshold: 60
          proximity_ticks: 40
          duration_ticks: 14
          cooldown_ticks: 280
          knockback: 200
`
	_, err := character.LoadFromBytes([]byte(doc))
	require.Error(t, err, "a rage burst phase needs a burst attack in the catalog")
	assert.Contains(t, err.Error(), "burst")
}

func TestLoadRejectsPhaseEngageRangeInsideAttackRange(t *testing.T) {
	doc := validCharacterYAML + `    phases:
      - hp_percent: 40
        range:
          engage_range: 60
`
	_, err := character.LoadFromBytes([]byte(doc))
	require.Error(t, err, "a phase override must keep engage_range beyond every attack range")
	assert.Contains(t, err.Error(), "engage_range")
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sparrow.yaml"), []byte(validCharacterYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	chars, err := character.LoadFromDir(dir)
	require.NoError(t, err)
	require.Len(t, chars, 1, "only .yaml/.yml files count")
	assert.Equal(t, "sparrow", chars[0].ID)
}

func TestLoadFromDirFailsOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(validCharacterYAML), 0o644))
	broken := replaceOnce(t, validCharacterYAML, "max_health: 90", "max_health: -5")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(broken), 0o644))

	_, err := character.LoadFromDir(dir)
	require.Error(t, err, "one broken file fails the whole directory load")
	assert.Contains(t, err.Error(), "broken.yaml")
}

// TestShippedContentLoads keeps the repo's own character files honest.
func TestShippedContentLoads(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "content", "characters")
	if _, err := os.Stat(dir); err != nil {
		t.Skipf("content directory not present: %v", err)
	}

	chars, err := character.LoadFromDir(dir)
	require.NoError(t, err, "shipped character content must validate")
	require.NotEmpty(t, chars)

	reg, err := character.NewRegistry(chars)
	require.NoError(t, err)
	for _, id := range []string{"vanguard", "ironfist", "wraith"} {
		_, ok := reg.ByID(id)
		assert.True(t, ok, "expected shipped character %q", id)
	}
}

func replaceOnce(t *testing.T, doc, old, new string) string {
	t.Helper()
	require.Contains(t, doc, old, "fixture edit target not found")
	return strings.Replace(doc, old, new, 1)
}
