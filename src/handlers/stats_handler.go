package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	db "tresorier-server/src/db/sql"
	"tresorier-server/src/models"
	"tresorier-server/src/util"
)

// statsRange resolves the date window of a stats request: a named period,
// explicit start/end bounds, or the current month by default.
func statsRange(r *http.Request) (start, end time.Time, err error) {
	if p := r.URL.Query().Get("period"); p != "" {
		start, end, ok := util.PeriodDates(p, time.Now())
		if !ok {
			return start, end, errors.New("unknown period")
		}
		return start, end, nil
	}

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr != "" && endStr != "" {
		s, err := models.ParseDate(startStr)
		if err != nil {
			return start, end, errors.New("invalid start date")
		}
		e, err := models.ParseDate(endStr)
		if err != nil {
			return start, end, errors.New("invalid end date")
		}
		return s.Time, e.Time, nil
	}

	start, end, _ = util.PeriodDates("current-month", time.Now())
	return start, end, nil
}

func GetStats(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := statsRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		accountID, err := intParam(r, "account_id")
		if err != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}

		totals, err := db.MonthlyTotals(r.Context(), pool, start, end, accountID)
		if err != nil {
			log.Printf("ERROR: Failed to compute monthly totals: %v", err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		balance, err := db.TotalBalance(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to compute total balance: %v", err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"monthly_totals": totals,
			"balance":        balance,
		})
	}
}

func GetCategoryStats(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := statsRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		accountID, err := intParam(r, "account_id")
		if err != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}

		totals, err := db.CategoryTotals(r.Context(), pool, start, end, accountID)
		if err != nil {
			log.Printf("ERROR: Failed to compute category totals: %v", err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(totals)
	}
}

func GetSankeyStats(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := statsRange(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		accountID, err := intParam(r, "account_id")
		if err != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}

		rows, err := db.SankeyRows(r.Context(), pool, start, end, accountID)
		if err != nil {
			log.Printf("ERROR: Failed to compute sankey rows: %v", err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	}
}
