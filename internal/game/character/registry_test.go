package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringsidegames/ringd/internal/game/character"
)

func TestRegistry(t *testing.T) {
	a, err := character.LoadFromBytes([]byte(validCharacterYAML))
	require.NoError(t, err)
	b, err := character.LoadFromBytes([]byte(replaceOnce(t, validCharacterYAML, "id: sparrow", "id: magpie")))
	require.NoError(t, err)

	reg, err := character.NewRegistry([]*character.Character{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Count())
	assert.Equal(t, []string{"sparrow", "magpie"}, reg.IDs(), "ids keep registration order")

	got, ok := reg.ByID("magpie")
	require.True(t, ok)
	assert.Equal(t, "magpie", got.ID)

	_, ok = reg.ByID("raven")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	a, err := character.LoadFromBytes([]byte(validCharacterYAML))
	require.NoError(t, err)
	b, err := character.LoadFromBytes([]byte(validCharacterYAML))
	require.NoError(t, err)

	_, err = character.NewRegistry([]*character.Character{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}
