package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "tresorier-server/src/db/sql"
	"tresorier-server/src/models"
)

func CreateBankAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.BankAccount
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create bank account request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		created, err := db.CreateBankAccount(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to create bank account: %v", err)
			http.Error(w, "failed to create bank account", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created bank account id %d (%s %s)", created.ID, created.AccountType, created.Number)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllBankAccounts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := db.GetAllBankAccounts(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to get bank accounts: %v", err)
			http.Error(w, "failed to get bank accounts", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(accounts)
	}
}

func GetBankAccountByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "account_id"))
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		account, err := db.GetBankAccountByID(r.Context(), pool, id)
		if err != nil {
			log.Printf("ERROR: Bank account id %d not found: %v", id, err)
			http.Error(w, "bank account not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(account)
	}
}

func GetBankAccountBalance(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "account_id"))
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		balance, err := db.GetBankAccountBalance(r.Context(), pool, id)
		if err != nil {
			log.Printf("ERROR: Failed to compute balance for bank account id %d: %v", id, err)
			http.Error(w, "bank account not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]float64{"balance": balance})
	}
}

func UpdateBankAccountBalance(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "account_id"))
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		var req struct {
			Balance float64      `json:"balance"`
			Date    *models.Date `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update balance request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := db.SetBankAccountBalance(r.Context(), pool, id, req.Balance, req.Date); err != nil {
			log.Printf("ERROR: Failed to set balance for bank account id %d: %v", id, err)
			http.Error(w, "bank account not found", http.StatusNotFound)
			return
		}
		log.Printf("INFO: Set balance for bank account id %d", id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "balance updated"})
	}
}

func UpdateBankAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "account_id"))
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		var req models.BankAccount
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update bank account request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		req.ID = id
		updated, err := db.UpdateBankAccount(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to update bank account id %d: %v", id, err)
			http.Error(w, "failed to update bank account", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated bank account id %d", updated.ID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteBankAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "account_id"))
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		if err := db.DeleteBankAccount(r.Context(), pool, id); err != nil {
			log.Printf("ERROR: Failed to delete bank account id %d: %v", id, err)
			http.Error(w, "bank account not found", http.StatusNotFound)
			return
		}
		log.Printf("INFO: Deleted bank account id %d", id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "bank account deleted"})
	}
}
