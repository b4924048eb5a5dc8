package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKnownThemes(t *testing.T) {
	for _, id := range []ID{Default, Minimal, Creative, Modern} {
		b := Resolve(string(id))
		assert.Equal(t, id, b.ID)
		assert.NotEmpty(t, b.Hero)
		assert.NotEmpty(t, b.Card)
		assert.NotEmpty(t, b.Badge)
		assert.NotEmpty(t, b.Button)
		assert.NotEmpty(t, b.Text.Primary)
		assert.NotEmpty(t, b.Text.Secondary)
		assert.NotEmpty(t, b.Text.Accent)
		assert.NotEmpty(t, b.Spacing.Section)
		assert.NotEmpty(t, b.Layout.Container)
		assert.NotEmpty(t, b.Layout.Grid)
		assert.NotEmpty(t, b.Page.MainGrid)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	for _, id := range []string{"", "light", "dark", "DEFAULTS", "creative ", "<script>"} {
		got := Resolve(id)
		if id == "creative " {
			assert.Equal(t, Creative, got.ID, "surrounding whitespace is ignored")
			continue
		}
		assert.Equal(t, Resolve("default"), got, id)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Minimal, Resolve("Minimal").ID)
	assert.True(t, IsKnown("MODERN"))
	assert.False(t, IsKnown("light"))
	assert.Equal(t, Default, Normalize("light"))
}

func TestResolveReturnsIndependentCopies(t *testing.T) {
	b := Resolve("creative")
	b.Hero = "mutated"
	b.Text.Accent = "mutated"

	fresh := Resolve("creative")
	assert.NotEqual(t, "mutated", fresh.Hero)
	assert.NotEqual(t, "mutated", fresh.Text.Accent)
}

func TestAllIsStableAndComplete(t *testing.T) {
	all := All()
	ids := make([]ID, 0, len(all))
	for _, b := range all {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []ID{Default, Minimal, Creative, Modern}, ids)
}

func TestThemesDifferInPresentation(t *testing.T) {
	assert.NotEqual(t, Resolve("minimal").Page.MainGrid, Resolve("default").Page.MainGrid)
	assert.NotEqual(t, Resolve("creative").Scale.Title, Resolve("default").Scale.Title)
	assert.Empty(t, Resolve("default").Motion.Card)
	assert.NotEmpty(t, Resolve("creative").Motion.Card)
}
