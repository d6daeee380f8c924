package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexai/cardgen/internal/common"
)

func TestAll_FixedTable(t *testing.T) {
	all := All()
	require.Len(t, all, 10)

	// Regression guard on the fixed table: every entry is 16:9, described,
	// and carries all four personalization placeholders.
	for _, tpl := range all {
		assert.Equal(t, "16:9", tpl.AspectRatio, tpl.Name)
		assert.NotEmpty(t, tpl.Description, tpl.Name)
		assert.NotEmpty(t, tpl.Prompt, tpl.Name)
		for _, ph := range []string{"{recipient}", "{message}", "{date}", "{details}"} {
			assert.True(t, strings.Contains(tpl.Prompt, ph), "%s missing %s", tpl.Name, ph)
		}
	}
}

func TestNames_Order(t *testing.T) {
	want := []string{
		"Birthday", "Christmas", "Halloween", "Easter", "Valentine's Day",
		"Thanksgiving", "New Year", "Graduation", "Wedding", "Thank You",
	}
	assert.Equal(t, want, Names())
}

func TestLookup(t *testing.T) {
	tpl, err := Lookup("Birthday")
	require.NoError(t, err)
	assert.Equal(t, "Birthday", tpl.Name)

	_, err = Lookup("Anniversary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTemplateNotFound))
}
