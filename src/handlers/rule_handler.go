package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "tresorier-server/src/db/sql"
	"tresorier-server/src/models"
)

// validateRuleTargets checks that the rule points at an existing category
// and, when set, a subcategory belonging to it.
func validateRuleTargets(ctx context.Context, pool *pgxpool.Pool, rule *models.Rule) (string, bool) {
	if rule.Pattern == "" {
		return "pattern is required", false
	}
	if _, err := db.GetCategoryByID(ctx, pool, rule.CategoryID); err != nil {
		return "category not found", false
	}
	if rule.SubcategoryID != nil {
		sub, err := db.GetSubcategoryByID(ctx, pool, *rule.SubcategoryID)
		if err != nil {
			return "subcategory not found", false
		}
		if sub.CategoryID != rule.CategoryID {
			return "subcategory does not belong to category", false
		}
	}
	return "", true
}

func CreateRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Rule
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create rule request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if msg, ok := validateRuleTargets(r.Context(), pool, &req); !ok {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		created, err := db.CreateRule(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to create rule: %v", err)
			http.Error(w, "failed to create rule", http.StatusInternalServerError)
			return
		}

		updated, err := db.ApplyRule(r.Context(), pool, created)
		if err != nil {
			log.Printf("ERROR: Failed to apply rule id %d retroactively: %v", created.ID, err)
			http.Error(w, "failed to apply rule", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Created rule id %d, pattern %q, %d transactions recategorized", created.ID, created.Pattern, updated)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"rule":    created,
			"updated": updated,
		})
	}
}

func GetAllRules(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := db.GetAllRules(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to get rules: %v", err)
			http.Error(w, "failed to get rules", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func GetRuleByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "rule_id"))
		if err != nil {
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		rule, err := db.GetRuleByID(r.Context(), pool, id)
		if err != nil {
			log.Printf("ERROR: Rule id %d not found: %v", id, err)
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rule)
	}
}

func UpdateRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "rule_id"))
		if err != nil {
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var req models.Rule
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update rule request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		req.ID = id
		if msg, ok := validateRuleTargets(r.Context(), pool, &req); !ok {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		updatedRule, err := db.UpdateRule(r.Context(), pool, &req)
		if err != nil {
			log.Printf("ERROR: Failed to update rule id %d: %v", id, err)
			http.Error(w, "failed to update rule", http.StatusInternalServerError)
			return
		}

		updated, err := db.ApplyRule(r.Context(), pool, updatedRule)
		if err != nil {
			log.Printf("ERROR: Failed to apply rule id %d retroactively: %v", id, err)
			http.Error(w, "failed to apply rule", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Updated rule id %d, %d transactions recategorized", updatedRule.ID, updated)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"rule":    updatedRule,
			"updated": updated,
		})
	}
}

func DeleteRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "rule_id"))
		if err != nil {
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		if err := db.DeleteRule(r.Context(), pool, id); err != nil {
			log.Printf("ERROR: Failed to delete rule id %d: %v", id, err)
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		log.Printf("INFO: Deleted rule id %d", id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "rule deleted"})
	}
}
