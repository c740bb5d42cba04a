package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "tresorier-server/src/db/sql"
	"tresorier-server/src/models"
	"tresorier-server/src/util"
)

func intParam(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func boolParam(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func buildTransactionFilter(r *http.Request) (db.TransactionFilter, error) {
	var filter db.TransactionFilter
	var err error

	if filter.AccountID, err = intParam(r, "account_id"); err != nil {
		return filter, errors.New("invalid account_id")
	}
	if filter.CategoryID, err = intParam(r, "category_id"); err != nil {
		return filter, errors.New("invalid category_id")
	}
	if filter.SubcategoryID, err = intParam(r, "subcategory_id"); err != nil {
		return filter, errors.New("invalid subcategory_id")
	}
	if filter.ToAnalyze, err = boolParam(r, "to_analyze"); err != nil {
		return filter, errors.New("invalid to_analyze")
	}
	if filter.Reconciled, err = boolParam(r, "reconciled"); err != nil {
		return filter, errors.New("invalid reconciled")
	}
	if filter.Favorite, err = boolParam(r, "favorite"); err != nil {
		return filter, errors.New("invalid favorite")
	}

	filter.CategoryNone = r.URL.Query().Get("category_none") == "true"
	filter.TxType = r.URL.Query().Get("type")
	filter.PaymentMethod = r.URL.Query().Get("payment_method")
	filter.Search = r.URL.Query().Get("search")

	if s := r.URL.Query().Get("amount_min"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filter, errors.New("invalid amount_min")
		}
		filter.AmountMin = &v
	}
	if s := r.URL.Query().Get("amount_max"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filter, errors.New("invalid amount_max")
		}
		filter.AmountMax = &v
	}

	if s := r.URL.Query().Get("start"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			return filter, errors.New("invalid start date")
		}
		filter.Start = &d
	}
	if s := r.URL.Query().Get("end"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			return filter, errors.New("invalid end date")
		}
		filter.End = &d
	}

	// A named period overrides explicit start/end bounds.
	if p := r.URL.Query().Get("period"); p != "" {
		start, end, ok := util.PeriodDates(p, time.Now())
		if !ok {
			return filter, errors.New("unknown period")
		}
		s, e := models.DateOf(start), models.DateOf(end)
		filter.Start, filter.End = &s, &e
	}

	filter.Sort, err = models.ParseSortField(r.URL.Query().Get("sort"))
	if err != nil {
		return filter, err
	}
	filter.Desc = r.URL.Query().Get("order") == "desc"

	return filter, nil
}

func GetAllTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := buildTransactionFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		list, err := db.ListTransactions(r.Context(), pool, filter)
		if err != nil {
			log.Printf("ERROR: Failed to list transactions: %v", err)
			http.Error(w, "failed to get transactions", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func GetTransactionByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "transaction_id"))
		if err != nil {
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}
		tx, err := db.GetTransactionByID(r.Context(), pool, id)
		if err != nil {
			log.Printf("ERROR: Transaction id %d not found: %v", id, err)
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tx)
	}
}

func UpdateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "transaction_id"))
		if err != nil {
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		existing, err := db.GetTransactionByID(r.Context(), pool, id)
		if err != nil {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		req := existing.Transaction
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update transaction request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		req.ID = id

		if req.CategoryID != nil {
			if _, err := db.GetCategoryByID(r.Context(), pool, *req.CategoryID); err != nil {
				http.Error(w, "category not found", http.StatusBadRequest)
				return
			}
		}
		if req.SubcategoryID != nil {
			sub, err := db.GetSubcategoryByID(r.Context(), pool, *req.SubcategoryID)
			if err != nil {
				http.Error(w, "subcategory not found", http.StatusBadRequest)
				return
			}
			if req.CategoryID == nil || sub.CategoryID != *req.CategoryID {
				http.Error(w, "subcategory does not belong to category", http.StatusBadRequest)
				return
			}
		}

		updated, err := db.UpdateTransaction(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to update transaction id %d: %v", id, err)
			http.Error(w, "failed to update transaction", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated transaction id %d", updated.ID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

// DeleteUnassigned removes transactions left without a bank account.
func DeleteUnassigned(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := db.DeleteUnassignedTransactions(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to delete unassigned transactions: %v", err)
			http.Error(w, "failed to delete transactions", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted %d unassigned transactions", deleted)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"deleted": deleted})
	}
}

// Reset wipes transactions and bank accounts so a fresh set of exports
// can be imported from scratch.
func Reset(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.ResetData(r.Context(), pool); err != nil {
			log.Printf("ERROR: Failed to reset data: %v", err)
			http.Error(w, "failed to reset", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Data reset")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "reset done"})
	}
}
