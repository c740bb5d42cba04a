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

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Category
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		created, err := db.CreateCategory(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to create category: %v", err)
			http.Error(w, "failed to create category", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created category id %d, name %s", created.ID, created.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := db.GetAllCategories(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to get categories: %v", err)
			http.Error(w, "failed to get categories", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(categories)
	}
}

func UpdateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "category_id"))
		if err != nil {
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		var req models.Category
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update category request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		req.ID = id
		updated, err := db.UpdateCategory(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to update category id %d: %v", id, err)
			http.Error(w, "failed to update category", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated category id %d", updated.ID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "category_id"))
		if err != nil {
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		if err := db.DeleteCategory(r.Context(), pool, id); err != nil {
			log.Printf("ERROR: Failed to delete category id %d: %v", id, err)
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("INFO: Deleted category id %d", id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "category deleted"})
	}
}

func CreateSubcategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Subcategory
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create subcategory request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.CategoryID == 0 {
			http.Error(w, "name and category_id are required", http.StatusBadRequest)
			return
		}
		if _, err := db.GetCategoryByID(r.Context(), pool, req.CategoryID); err != nil {
			http.Error(w, "category not found", http.StatusBadRequest)
			return
		}
		created, err := db.CreateSubcategory(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to create subcategory: %v", err)
			http.Error(w, "failed to create subcategory", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created subcategory id %d, name %s", created.ID, created.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func UpdateSubcategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "subcategory_id"))
		if err != nil {
			http.Error(w, "invalid subcategory id", http.StatusBadRequest)
			return
		}
		var req models.Subcategory
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update subcategory request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		req.ID = id
		updated, err := db.UpdateSubcategory(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to update subcategory id %d: %v", id, err)
			http.Error(w, "failed to update subcategory", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated subcategory id %d", updated.ID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteSubcategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "subcategory_id"))
		if err != nil {
			http.Error(w, "invalid subcategory id", http.StatusBadRequest)
			return
		}
		if err := db.DeleteSubcategory(r.Context(), pool, id); err != nil {
			log.Printf("ERROR: Failed to delete subcategory id %d: %v", id, err)
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("INFO: Deleted subcategory id %d", id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "subcategory deleted"})
	}
}
