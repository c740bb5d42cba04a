package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftMonth(t *testing.T) {
	base := time.Date(2021, time.March, 31, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, time.Date(2021, time.April, 1, 0, 0, 0, 0, time.UTC), ShiftMonth(base, 1))
	assert.Equal(t, time.Date(2021, time.February, 1, 0, 0, 0, 0, time.UTC), ShiftMonth(base, -1))
	assert.Equal(t, time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC), ShiftMonth(base, -3))
}

func TestSeriesZeroFills(t *testing.T) {
	totals := map[string]float64{
		"2021-01": 10,
		"2021-03": 30,
	}
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

	s := Series(totals, start, 4)

	assert.Equal(t, []float64{10, 0, 30, 0}, s)
}

func TestExtrapolateConstant(t *testing.T) {
	future := Extrapolate([]float64{10, 10, 10, 10}, 3)
	assert.Equal(t, []float64{10, 10, 10}, future)
}

func TestExtrapolateLinearTrend(t *testing.T) {
	history := []float64{1, 2, 3, 4}
	future := Extrapolate(history, 2)

	require.Len(t, future, 2)
	assert.InDelta(t, 5, future[0], 1e-9)
	assert.InDelta(t, 6, future[1], 1e-9)
}

func TestExtrapolateEmptyHistory(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, Extrapolate(nil, 3))
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2, Mean([]float64{1, 2, 3}), 1e-9)
	assert.Equal(t, 0.0, Mean(nil))
}

func TestWindowLabel(t *testing.T) {
	start := time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2021-07 to 2022-06", WindowLabel(start, 12))
}
