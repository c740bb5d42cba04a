package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/db"
	"tresorier-server/src/models"
	"tresorier-server/src/rules"
)

func CreateRule(ctx context.Context, pool *pgxpool.Pool, rule *models.Rule) (*models.Rule, error) {
	query := `
		INSERT INTO rules (pattern, category_id, subcategory_id)
		VALUES ($1, $2, $3)
		RETURNING id, pattern, category_id, subcategory_id
	`
	var r models.Rule
	err := pool.QueryRow(ctx, query, rule.Pattern, rule.CategoryID, rule.SubcategoryID).
		Scan(&r.ID, &r.Pattern, &r.CategoryID, &r.SubcategoryID)
	if err != nil {
		return nil, err
	}
	db.ClearAllRuleCaches()
	return &r, nil
}

// GetAllRules returns rules in id order, the order they match in.
func GetAllRules(ctx context.Context, q Querier) ([]models.Rule, error) {
	cacheKey := "rules:all"
	if cached, found := db.Cache.Get(cacheKey); found {
		if list, ok := cached.([]models.Rule); ok {
			return list, nil
		}
	}

	query := `
		SELECT id, pattern, category_id, subcategory_id
		FROM rules
		ORDER BY id
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Rule
	for rows.Next() {
		var r models.Rule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.CategoryID, &r.SubcategoryID); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetRuleCache(cacheKey, list)
	return list, nil
}

func GetRuleByID(ctx context.Context, pool *pgxpool.Pool, id int) (*models.Rule, error) {
	query := `SELECT id, pattern, category_id, subcategory_id FROM rules WHERE id = $1`
	var r models.Rule
	err := pool.QueryRow(ctx, query, id).Scan(&r.ID, &r.Pattern, &r.CategoryID, &r.SubcategoryID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func UpdateRule(ctx context.Context, pool *pgxpool.Pool, rule *models.Rule) (*models.Rule, error) {
	query := `
		UPDATE rules
		SET pattern = $1, category_id = $2, subcategory_id = $3
		WHERE id = $4
		RETURNING id, pattern, category_id, subcategory_id
	`
	var r models.Rule
	err := pool.QueryRow(ctx, query, rule.Pattern, rule.CategoryID, rule.SubcategoryID, rule.ID).
		Scan(&r.ID, &r.Pattern, &r.CategoryID, &r.SubcategoryID)
	if err != nil {
		return nil, err
	}
	db.ClearAllRuleCaches()
	return &r, nil
}

func DeleteRule(ctx context.Context, pool *pgxpool.Pool, id int) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("rule not found")
	}
	db.ClearAllRuleCaches()
	return nil
}

// ApplyRule recategorizes every existing transaction whose label matches
// the rule's tokens in order, and returns how many rows changed. The
// token semantic is looser than the import-time whole-pattern match.
func ApplyRule(ctx context.Context, pool *pgxpool.Pool, rule *models.Rule) (int, error) {
	like := rules.LikePattern(rule.Pattern)
	if like == "" {
		return 0, nil
	}

	query := `
		UPDATE transactions
		SET category_id = $1, subcategory_id = $2
		WHERE lower(label) LIKE $3
	`
	cmd, err := pool.Exec(ctx, query, rule.CategoryID, rule.SubcategoryID, like)
	if err != nil {
		return 0, err
	}
	if cmd.RowsAffected() > 0 {
		db.ClearAllTransactionCaches()
	}
	return int(cmd.RowsAffected()), nil
}
