package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tresorier-server/src/models"
)

func TestQuickMatch(t *testing.T) {
	rule := models.Rule{Pattern: "carte fnac"}

	assert.True(t, QuickMatch(rule, "Paiement CARTE FNAC Paris"))
	assert.True(t, QuickMatch(rule, "carte fnac"))
	assert.False(t, QuickMatch(rule, "Paiement carte chez fnac"))
	assert.False(t, QuickMatch(models.Rule{Pattern: ""}, "anything"))
	assert.False(t, QuickMatch(models.Rule{Pattern: "   "}, "anything"))
}

func TestFirstQuickMatchOrder(t *testing.T) {
	list := []models.Rule{
		{ID: 1, Pattern: "fnac", CategoryID: 10},
		{ID: 2, Pattern: "carte", CategoryID: 20},
	}

	match := FirstQuickMatch(list, "Paiement carte FNAC")
	require.NotNil(t, match)
	assert.Equal(t, 1, match.ID)

	match = FirstQuickMatch(list, "Paiement carte boulangerie")
	require.NotNil(t, match)
	assert.Equal(t, 2, match.ID)

	assert.Nil(t, FirstQuickMatch(list, "Virement salaire"))
}

func TestRetroactiveMatch(t *testing.T) {
	rule := models.Rule{Pattern: "carte fnac"}

	// Tokens may be separated by anything, but order matters.
	assert.True(t, RetroactiveMatch(rule, "Paiement carte chez FNAC Paris"))
	assert.True(t, RetroactiveMatch(rule, "carte fnac"))
	assert.False(t, RetroactiveMatch(rule, "FNAC paiement carte"))
	assert.False(t, RetroactiveMatch(models.Rule{Pattern: "  "}, "anything"))
}

func TestQuickAndRetroactiveDiffer(t *testing.T) {
	rule := models.Rule{Pattern: "carte fnac"}
	label := "Paiement carte chez FNAC"

	assert.False(t, QuickMatch(rule, label))
	assert.True(t, RetroactiveMatch(rule, label))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%carte%fnac%", LikePattern("Carte  FNAC"))
	assert.Equal(t, "%edf%", LikePattern("EDF"))
	assert.Equal(t, "", LikePattern("   "))
}
