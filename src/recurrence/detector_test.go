package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tresorier-server/src/models"
)

func tx(id int, date string, label string, amount float64) models.Transaction {
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{ID: id, Date: d, Label: label, Amount: amount}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "abonnement", NormalizeKey("Abonnement 01/2021"))
	assert.Equal(t, "loyerjanvier", NormalizeKey("LOYER janvier"))
	assert.Equal(t, "", NormalizeKey("12345 67"))
}

func TestDetectMonthlyGroup(t *testing.T) {
	txns := []models.Transaction{
		tx(1, "2021-01-05", "Abonnement 01/2021", -50),
		tx(2, "2021-02-05", "Abonnement 02/2021", -50.5),
		tx(3, "2021-03-05", "Abonnement 03/2021", -49.5),
	}

	groups := Detect(txns, DefaultOptions())

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "abonnement", g.Key)
	assert.Equal(t, Monthly, g.Frequency)
	assert.InDelta(t, -50, g.AverageAmount, 1e-9)
	assert.Equal(t, 5, g.Day)
	assert.Equal(t, "2021-03-05", g.LastDate.String())
	assert.Len(t, g.Transactions, 3)
}

func TestDetectFuzzyLabelJoin(t *testing.T) {
	txns := []models.Transaction{
		tx(1, "2021-01-10", "Abos mensuel", -20),
		tx(2, "2021-02-10", "Abos  mensuel.", -20),
	}

	groups := Detect(txns, DefaultOptions())

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Transactions, 2)
}

func TestDetectRejectsSingleton(t *testing.T) {
	txns := []models.Transaction{
		tx(1, "2021-01-05", "Loyer", -700),
		tx(2, "2021-02-05", "Loyer", -700),
		tx(3, "2021-02-20", "Restaurant", -30),
	}

	groups := Detect(txns, DefaultOptions())

	require.Len(t, groups, 1)
	assert.Equal(t, "loyer", groups[0].Key)
}

func TestDetectRejectsUnstableAmounts(t *testing.T) {
	txns := []models.Transaction{
		tx(1, "2021-01-05", "Courses", -50),
		tx(2, "2021-02-05", "Courses", -50),
		tx(3, "2021-03-05", "Courses", -100),
	}

	groups := Detect(txns, DefaultOptions())

	assert.Empty(t, groups)
}

func TestDetectFrequencyBuckets(t *testing.T) {
	cases := []struct {
		name  string
		dates []string
		want  Frequency
	}{
		{"weekly", []string{"2021-01-04", "2021-01-11", "2021-01-18"}, Weekly},
		{"biweekly", []string{"2021-01-04", "2021-01-18", "2021-02-01"}, Biweekly},
		{"monthly", []string{"2021-01-04", "2021-02-04", "2021-03-04"}, Monthly},
		{"bimonthly", []string{"2021-01-04", "2021-03-04", "2021-05-04"}, Bimonthly},
		{"quarterly", []string{"2021-01-04", "2021-04-06", "2021-07-06"}, Quarterly},
		{"semiannual", []string{"2021-01-04", "2021-07-05"}, Semiannual},
		{"annual", []string{"2020-01-04", "2021-01-04"}, Annual},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var txns []models.Transaction
			for i, d := range c.dates {
				txns = append(txns, tx(i+1, d, "Paiement fixe", -10))
			}
			groups := Detect(txns, DefaultOptions())
			require.Len(t, groups, 1)
			assert.Equal(t, c.want, groups[0].Frequency)
		})
	}
}

func TestDetectGroupsSortedByDay(t *testing.T) {
	txns := []models.Transaction{
		tx(1, "2021-01-20", "Assurance", -30),
		tx(2, "2021-02-20", "Assurance", -30),
		tx(3, "2021-01-05", "Loyer", -700),
		tx(4, "2021-02-05", "Loyer", -700),
	}

	groups := Detect(txns, DefaultOptions())

	require.Len(t, groups, 2)
	assert.Equal(t, 5, groups[0].Day)
	assert.Equal(t, 20, groups[1].Day)
}

func TestDetectGroupCarriesEarliestCategory(t *testing.T) {
	catID := 7
	a := tx(1, "2021-01-05", "Loyer", -700)
	a.CategoryID = &catID
	b := tx(2, "2021-02-05", "Loyer", -700)

	groups := Detect([]models.Transaction{a, b}, DefaultOptions())

	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].CategoryID)
	assert.Equal(t, 7, *groups[0].CategoryID)
	assert.Equal(t, "2021-02-05", groups[0].LastDate.String())
}
