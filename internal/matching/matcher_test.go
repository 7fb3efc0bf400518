package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesEmptyRequirement(t *testing.T) {
	assert.True(t, Matches("Carpenter", ""))
	assert.True(t, Matches("", ""))
	assert.True(t, Matches("anything at all", "   "))
}

func TestMatchesEmptyWorkerSkill(t *testing.T) {
	assert.False(t, Matches("", "Nursing"))
	assert.False(t, Matches("   ", "Nursing"))
}

func TestMatchesExactCaseInsensitive(t *testing.T) {
	assert.True(t, Matches("Carpenter", "carpenter"))
	assert.True(t, Matches("  FARM LABOURER ", "farm labourer"))
}

func TestMatchesSubstring(t *testing.T) {
	assert.True(t, Matches("Construction Worker", "Construction"))
	// containment in the other direction
	assert.True(t, Matches("Driver", "Delivery Driver"))
}

func TestMatchesCategoryBucket(t *testing.T) {
	// "carpent" and "construct" are both construction-category fragments
	assert.True(t, Matches("Carpenter", "Construction"))
	assert.True(t, Matches("Mason", "Building work"))
	assert.True(t, Matches("Hotel cleaner", "Housekeeping"))
	assert.True(t, Matches("Boda rider", "Delivery"))
}

func TestMatchesDifferentCategories(t *testing.T) {
	assert.False(t, Matches("Chef", "Nursing"))
	assert.False(t, Matches("Accountant", "Welding"))
}

func TestMatchesIdempotent(t *testing.T) {
	first := Matches("Painter", "Construction")
	second := Matches("Painter", "Construction")
	assert.Equal(t, first, second)
	assert.True(t, first)
}

// The substring and category rules are symmetric by construction; exact match
// trivially so. Verify over a sample of realistic labels that flipping the
// arguments never changes the outcome when both sides are non-empty.
func TestMatchesPracticalSymmetry(t *testing.T) {
	labels := []string{
		"Carpenter", "Construction", "Mason", "Chef", "Nursing",
		"Farm hand", "Factory assembly", "Shop attendant", "Driver",
		"Cleaner", "General labourer",
	}
	for _, a := range labels {
		for _, b := range labels {
			assert.Equal(t, Matches(a, b), Matches(b, a), "asymmetry for %q / %q", a, b)
		}
	}
}

func TestLoadCategories(t *testing.T) {
	in := strings.NewReader(`{"Tailoring": ["tailor", " SEW ", ""], "empty": []}`)
	cats, err := LoadCategories(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"tailor", "sew"}, cats["tailoring"])
	_, ok := cats["empty"]
	assert.False(t, ok, "categories with no fragments should be dropped")

	m := NewMatcher(cats)
	assert.True(t, m.Matches("Tailor", "Sewing work"))
	// custom tables replace the default one entirely
	assert.False(t, m.Matches("Carpenter", "Construction"))
}

func TestLoadCategoriesBadJSON(t *testing.T) {
	_, err := LoadCategories(strings.NewReader(`{not json`))
	assert.Error(t, err)
}

func TestNewMatcherNilFallsBackToDefault(t *testing.T) {
	m := NewMatcher(nil)
	assert.True(t, m.Matches("Plumber", "Construction"))
}
