package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/models"
)

// MonthlyTotals sums amounts per YYYY-MM bucket over [start, end].
func MonthlyTotals(ctx context.Context, pool *pgxpool.Pool, start, end time.Time, accountID *int) (map[string]float64, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM'), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE date >= $1 AND date <= $2
	`
	args := []any{start, end}
	if accountID != nil {
		args = append(args, *accountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	query += " GROUP BY 1"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var month string
		var total float64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		totals[month] = total
	}
	return totals, rows.Err()
}

type CategoryTotal struct {
	CategoryID *int    `json:"category_id"`
	Category   *string `json:"category"`
	Color      *string `json:"color"`
	Positive   float64 `json:"positive"`
	Negative   float64 `json:"negative"`
}

// CategoryTotals splits each category's activity over [start, end] into
// income and spending. Uncategorized rows come back with a nil category.
func CategoryTotals(ctx context.Context, pool *pgxpool.Pool, start, end time.Time, accountID *int) ([]CategoryTotal, error) {
	query := `
		SELECT t.category_id, c.name, c.color,
		       COALESCE(SUM(t.amount) FILTER (WHERE t.amount > 0), 0),
		       COALESCE(SUM(t.amount) FILTER (WHERE t.amount < 0), 0)
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.date >= $1 AND t.date <= $2
	`
	args := []any{start, end}
	if accountID != nil {
		args = append(args, *accountID)
		query += fmt.Sprintf(" AND t.account_id = $%d", len(args))
	}
	query += " GROUP BY t.category_id, c.name, c.color ORDER BY c.name NULLS LAST"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Category, &ct.Color, &ct.Positive, &ct.Negative); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

type SankeyRow struct {
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	Total       float64 `json:"total"`
}

// SankeyRows feeds the income-to-spending flow chart: spending per
// (category, subcategory) pair over [start, end].
func SankeyRows(ctx context.Context, pool *pgxpool.Pool, start, end time.Time, accountID *int) ([]SankeyRow, error) {
	query := `
		SELECT c.name, s.name, COALESCE(SUM(t.amount), 0)
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		LEFT JOIN subcategories s ON t.subcategory_id = s.id
		WHERE t.date >= $1 AND t.date <= $2 AND t.amount < 0
	`
	args := []any{start, end}
	if accountID != nil {
		args = append(args, *accountID)
		query += fmt.Sprintf(" AND t.account_id = $%d", len(args))
	}
	query += " GROUP BY c.name, s.name ORDER BY c.name NULLS LAST, s.name NULLS LAST"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SankeyRow
	for rows.Next() {
		var r SankeyRow
		if err := rows.Scan(&r.Category, &r.Subcategory, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AnalyzedCategoryMonthTotals buckets analyzable spending per category
// and month. Rows flagged out of analysis are excluded so projections
// ignore one-off transfers. Every category is returned, idle ones with
// an empty bucket map.
func AnalyzedCategoryMonthTotals(ctx context.Context, pool *pgxpool.Pool, start, end time.Time, accountID *int) (map[int]map[string]float64, map[int]models.Category, error) {
	catRows, err := pool.Query(ctx, `SELECT id, name, color FROM categories`)
	if err != nil {
		return nil, nil, err
	}
	defer catRows.Close()

	totals := make(map[int]map[string]float64)
	categories := make(map[int]models.Category)
	for catRows.Next() {
		var c models.Category
		if err := catRows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, nil, err
		}
		categories[c.ID] = c
		totals[c.ID] = make(map[string]float64)
	}
	if err := catRows.Err(); err != nil {
		return nil, nil, err
	}

	query := `
		SELECT category_id, to_char(date, 'YYYY-MM'), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE date >= $1 AND date <= $2 AND to_analyze AND category_id IS NOT NULL
	`
	args := []any{start, end}
	if accountID != nil {
		args = append(args, *accountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	query += " GROUP BY category_id, 2"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var month string
		var total float64
		if err := rows.Scan(&id, &month, &total); err != nil {
			return nil, nil, err
		}
		if _, ok := totals[id]; !ok {
			continue
		}
		totals[id][month] = total
	}
	return totals, categories, rows.Err()
}

// MonthFlow returns income and absolute spending over [start, end],
// analyzable rows only.
func MonthFlow(ctx context.Context, pool *pgxpool.Pool, start, end time.Time, accountID *int) (positive, negative float64, err error) {
	query := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0),
		       COALESCE(-SUM(amount) FILTER (WHERE amount < 0), 0)
		FROM transactions
		WHERE date >= $1 AND date <= $2 AND to_analyze
	`
	args := []any{start, end}
	if accountID != nil {
		args = append(args, *accountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	err = pool.QueryRow(ctx, query, args...).Scan(&positive, &negative)
	return positive, negative, err
}

// TotalBalance is the sum of every account's opening balance plus every
// posted amount.
func TotalBalance(ctx context.Context, pool *pgxpool.Pool) (float64, error) {
	query := `
		SELECT COALESCE((SELECT SUM(initial_balance) FROM bank_accounts), 0)
		     + COALESCE((SELECT SUM(amount) FROM transactions), 0)
	`
	var balance float64
	err := pool.QueryRow(ctx, query).Scan(&balance)
	return balance, err
}
