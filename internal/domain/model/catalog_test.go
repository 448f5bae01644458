package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCapabilities(t *testing.T) {
	all := All()
	require.Len(t, all, 5)
	assert.Equal(t, MistralLarge, all[0].ID)

	pixtral, ok := Lookup(PixtralLarge)
	require.True(t, ok)
	assert.True(t, pixtral.SupportsVision)
	assert.True(t, pixtral.SupportsDocuments)

	small, ok := Lookup(MistralSmall)
	require.True(t, ok)
	assert.False(t, small.SupportsVision)
	assert.False(t, small.SupportsDocuments)

	assert.False(t, Known("gpt-4o"))
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "mutated"

	info, _ := Lookup(MistralLarge)
	assert.Equal(t, "Mistral Large", info.Name)
}

func TestVisionModelFor(t *testing.T) {
	assert.Equal(t, PixtralLarge, VisionModelFor(PixtralLarge))
	assert.Equal(t, PixtralLarge, VisionModelFor(MistralSmall))
	assert.Equal(t, PixtralLarge, VisionModelFor("unknown"))
}
