package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tresorier-server/src/models"
)

func TestCategorySeriesIncludesIdleCategories(t *testing.T) {
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	categories := map[int]models.Category{
		1: {ID: 1, Name: "Courses"},
		2: {ID: 2, Name: "Voyages"},
	}
	totals := map[int]map[string]float64{
		1: {"2021-01": -30},
	}

	series := categorySeries(totals, categories, start, 3)

	require.Len(t, series, 2)
	assert.Equal(t, []float64{-30, 0, 0}, series[1])
	assert.Equal(t, []float64{0, 0, 0}, series[2])
}

func TestCategoryForecastRowJSON(t *testing.T) {
	row := categoryForecastRow{
		Category: models.Category{ID: 1, Name: "Courses"},
		Values:   []float64{1, 2},
		Mean:     1.5,
	}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"values":[1,2]`)
	assert.NotContains(t, string(data), `"forecast"`)
}
