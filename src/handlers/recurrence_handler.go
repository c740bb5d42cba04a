package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	db "tresorier-server/src/db/sql"
	"tresorier-server/src/forecast"
	"tresorier-server/src/models"
	"tresorier-server/src/recurrence"
)

// recurrenceWindow is the six calendar months ending with the anchor
// month: enough history to catch monthly payments several times and
// quarterly ones twice.
func recurrenceWindow(r *http.Request) (start, end time.Time, err error) {
	anchor := time.Now()
	if m := r.URL.Query().Get("month"); m != "" {
		anchor, err = time.Parse("2006-01", m)
		if err != nil {
			return start, end, errors.New("invalid month")
		}
	}
	monthStart := forecast.ShiftMonth(anchor, 0)
	start = forecast.ShiftMonth(anchor, -5)
	end = monthStart.AddDate(0, 1, -1)
	return start, end, nil
}

func detectRecurrents(r *http.Request, pool *pgxpool.Pool) ([]recurrence.Group, error) {
	start, end, err := recurrenceWindow(r)
	if err != nil {
		return nil, err
	}
	accountID, err := intParam(r, "account_id")
	if err != nil {
		return nil, errors.New("invalid account_id")
	}

	txns, err := db.ListTransactionsByDateRange(r.Context(), pool, start, end, accountID)
	if err != nil {
		return nil, err
	}
	return recurrence.Detect(txns, recurrence.DefaultOptions()), nil
}

func categoriesByID(r *http.Request, pool *pgxpool.Pool) (map[int]models.Category, error) {
	list, err := db.GetAllCategories(r.Context(), pool)
	if err != nil {
		return nil, err
	}
	index := make(map[int]models.Category, len(list))
	for _, c := range list {
		c.Subcategories = nil
		index[c.ID] = c
	}
	return index, nil
}

func GetRecurrents(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := detectRecurrents(r, pool)
		if err != nil {
			log.Printf("ERROR: Failed to detect recurrents: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		index, err := categoriesByID(r, pool)
		if err != nil {
			log.Printf("ERROR: Failed to load categories for recurrents: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		type recurrentGroup struct {
			recurrence.Group
			Category *models.Category `json:"category"`
		}
		out := make([]recurrentGroup, 0, len(groups))
		for _, g := range groups {
			rg := recurrentGroup{Group: g}
			if g.CategoryID != nil {
				if c, ok := index[*g.CategoryID]; ok {
					rg.Category = &c
				}
			}
			out = append(out, rg)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

// RecurrentsSummary condenses the anchor month: income, spending, total
// balance across accounts, and the recurring load (sum of the absolute
// average amounts of every detected group).
func RecurrentsSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := detectRecurrents(r, pool)
		if err != nil {
			log.Printf("ERROR: Failed to detect recurrents for summary: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		_, end, _ := recurrenceWindow(r)
		monthStart := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
		accountID, _ := intParam(r, "account_id")

		positive, negative, err := db.MonthFlow(r.Context(), pool, monthStart, end, accountID)
		if err != nil {
			log.Printf("ERROR: Failed to compute month flow: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		balance, err := db.TotalBalance(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to compute total balance: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var recurrent float64
		for _, g := range groups {
			recurrent += math.Abs(g.AverageAmount)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]float64{
			"positive":  positive,
			"negative":  negative,
			"balance":   balance,
			"recurrent": recurrent,
		})
	}
}

// RecurrentsCategories totals the recurring load per category.
func RecurrentsCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := detectRecurrents(r, pool)
		if err != nil {
			log.Printf("ERROR: Failed to detect recurrents for categories: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		index, err := categoriesByID(r, pool)
		if err != nil {
			log.Printf("ERROR: Failed to load categories for recurrents: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		totals := make(map[int]float64)
		var uncategorized float64
		for _, g := range groups {
			if g.CategoryID == nil {
				uncategorized += math.Abs(g.AverageAmount)
				continue
			}
			totals[*g.CategoryID] += math.Abs(g.AverageAmount)
		}

		type categoryTotal struct {
			Category *models.Category `json:"category"`
			Total    float64          `json:"total"`
		}
		out := make([]categoryTotal, 0, len(totals)+1)
		for id, total := range totals {
			c, ok := index[id]
			if !ok {
				continue
			}
			out = append(out, categoryTotal{Category: &c, Total: total})
		}
		if uncategorized > 0 {
			out = append(out, categoryTotal{Total: uncategorized})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
