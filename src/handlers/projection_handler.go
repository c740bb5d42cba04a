package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	db "tresorier-server/src/db/sql"
	"tresorier-server/src/forecast"
	"tresorier-server/src/models"
)

const (
	historyMonths = 12
	futureMonths  = 12
)

func projectionAnchor(r *http.Request) (time.Time, error) {
	if m := r.URL.Query().Get("month"); m != "" {
		anchor, err := time.Parse("2006-01", m)
		if err != nil {
			return time.Time{}, errors.New("invalid month")
		}
		return anchor, nil
	}
	return time.Now(), nil
}

// categorySeries zero-fills a monthly series for every known category.
// A category with no activity gets an all-zero series rather than being
// dropped.
func categorySeries(totals map[int]map[string]float64, categories map[int]models.Category, start time.Time, months int) map[int][]float64 {
	series := make(map[int][]float64, len(categories))
	for id := range categories {
		series[id] = forecast.Series(totals[id], start, months)
	}
	return series
}

// analyzedHistory buckets analyzable spending per category over the 12
// full months preceding the anchor month.
func analyzedHistory(r *http.Request, pool *pgxpool.Pool, anchor time.Time) (map[int][]float64, map[int]models.Category, time.Time, error) {
	histStart := forecast.ShiftMonth(anchor, -historyMonths)
	histEnd := forecast.ShiftMonth(anchor, 0).AddDate(0, 0, -1)

	accountID, err := intParam(r, "account_id")
	if err != nil {
		return nil, nil, histStart, errors.New("invalid account_id")
	}

	totals, categories, err := db.AnalyzedCategoryMonthTotals(r.Context(), pool, histStart, histEnd, accountID)
	if err != nil {
		return nil, nil, histStart, err
	}

	return categorySeries(totals, categories, histStart, historyMonths), categories, histStart, nil
}

// Projection extrapolates the overall monthly net flow of analyzable
// categorized activity one year ahead.
func Projection(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		anchor, err := projectionAnchor(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		series, _, histStart, err := analyzedHistory(r, pool, anchor)
		if err != nil {
			log.Printf("ERROR: Failed to load projection history: %v", err)
			http.Error(w, "failed to compute projection", http.StatusInternalServerError)
			return
		}

		history := make([]float64, historyMonths)
		for _, s := range series {
			for i, v := range s {
				history[i] += v
			}
		}
		future := forecast.Extrapolate(history, futureMonths)
		futureStart := forecast.ShiftMonth(anchor, 1)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"period":         forecast.WindowLabel(futureStart, futureMonths),
			"history_window": forecast.WindowLabel(histStart, historyMonths),
			"future_months":  forecast.MonthKeys(futureStart, futureMonths),
			"history":        history,
			"forecast":       future,
		})
	}
}

// CategoryAverage reports each category's mean monthly total over the
// trailing 12 full months.
func CategoryAverage(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		anchor, err := projectionAnchor(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		series, categories, _, err := analyzedHistory(r, pool, anchor)
		if err != nil {
			log.Printf("ERROR: Failed to load category averages: %v", err)
			http.Error(w, "failed to compute averages", http.StatusInternalServerError)
			return
		}

		type categoryAverage struct {
			Category models.Category `json:"category"`
			Average  float64         `json:"average"`
		}
		out := make([]categoryAverage, 0, len(series))
		for id, s := range series {
			out = append(out, categoryAverage{
				Category: categories[id],
				Average:  forecast.Mean(s),
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Category.ID < out[j].Category.ID })

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

type categoryForecastRow struct {
	Category models.Category `json:"category"`
	Values   []float64       `json:"values"`
	Mean     float64         `json:"mean"`
}

// CategoryForecast extrapolates each category's monthly totals one year
// ahead from its trailing-year history.
func CategoryForecast(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		anchor, err := projectionAnchor(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		series, categories, histStart, err := analyzedHistory(r, pool, anchor)
		if err != nil {
			log.Printf("ERROR: Failed to load category forecast history: %v", err)
			http.Error(w, "failed to compute forecast", http.StatusInternalServerError)
			return
		}

		rows := make([]categoryForecastRow, 0, len(series))
		for id, s := range series {
			future := forecast.Extrapolate(s, futureMonths)
			rows = append(rows, categoryForecastRow{
				Category: categories[id],
				Values:   future,
				Mean:     forecast.Mean(future),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Category.ID < rows[j].Category.ID })

		futureStart := forecast.ShiftMonth(anchor, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"period":         forecast.WindowLabel(futureStart, futureMonths),
			"history_window": forecast.WindowLabel(histStart, historyMonths),
			"future_months":  forecast.MonthKeys(futureStart, futureMonths),
			"rows":           rows,
		})
	}
}
