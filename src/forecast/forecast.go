package forecast

import (
	"fmt"
	"time"
)

const monthKeyLayout = "2006-01"

// MonthKey formats a date as its YYYY-MM bucket key.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// ShiftMonth returns the first day of the month offset months away from
// t's month. Shifting from the first of the month avoids the day-31
// overflow of AddDate.
func ShiftMonth(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
}

// Series materializes n consecutive monthly values starting at start,
// zero-filling months absent from totals.
func Series(totals map[string]float64, start time.Time, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = totals[MonthKey(ShiftMonth(start, i))]
	}
	return out
}

// Extrapolate fits a least-squares line through history and evaluates it
// over the f periods that follow. A flat history extrapolates as a
// constant; an empty one as zeros.
func Extrapolate(history []float64, f int) []float64 {
	out := make([]float64, f)
	n := len(history)
	if n == 0 {
		return out
	}

	flat := true
	for _, v := range history[1:] {
		if v != history[0] {
			flat = false
			break
		}
	}
	if flat {
		for i := range out {
			out[i] = history[0]
		}
		return out
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range history {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	for i := range out {
		out[i] = intercept + slope*float64(n+i)
	}
	return out
}

// Mean averages a series; an empty series averages to zero.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// WindowLabel names an n-month window starting at start, as
// "YYYY-MM to YYYY-MM".
func WindowLabel(start time.Time, n int) string {
	return fmt.Sprintf("%s to %s", MonthKey(start), MonthKey(ShiftMonth(start, n-1)))
}

// MonthKeys lists the n month keys starting at start, aligned with the
// values Series and Extrapolate produce.
func MonthKeys(start time.Time, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = MonthKey(ShiftMonth(start, i))
	}
	return out
}
