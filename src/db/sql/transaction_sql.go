package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/db"
	"tresorier-server/src/models"
)

// TransactionFilter narrows a transaction listing. Nil pointers leave a
// dimension unfiltered.
type TransactionFilter struct {
	AccountID     *int
	CategoryID    *int
	CategoryNone  bool
	SubcategoryID *int
	TxType        string
	PaymentMethod string
	Search        string
	Start         *models.Date
	End           *models.Date
	AmountMin     *float64
	AmountMax     *float64
	ToAnalyze     *bool
	Reconciled    *bool
	Favorite      *bool
	Sort          models.SortField
	Desc          bool
}

// cacheKey renders the filter canonically, pointer fields by value, so
// two filters built from the same parameters share one cache entry.
func (f TransactionFilter) cacheKey() string {
	parts := []string{
		"transactions",
		fmtIntPtr(f.AccountID),
		fmtIntPtr(f.CategoryID),
		strconv.FormatBool(f.CategoryNone),
		fmtIntPtr(f.SubcategoryID),
		f.TxType,
		f.PaymentMethod,
		f.Search,
		fmtDatePtr(f.Start),
		fmtDatePtr(f.End),
		fmtFloatPtr(f.AmountMin),
		fmtFloatPtr(f.AmountMax),
		fmtBoolPtr(f.ToAnalyze),
		fmtBoolPtr(f.Reconciled),
		fmtBoolPtr(f.Favorite),
		string(f.Sort),
		strconv.FormatBool(f.Desc),
	}
	return strings.Join(parts, "|")
}

func fmtIntPtr(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func fmtFloatPtr(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func fmtBoolPtr(p *bool) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatBool(*p)
}

func fmtDatePtr(p *models.Date) string {
	if p == nil {
		return "-"
	}
	return p.String()
}

const transactionDetailColumns = `
	t.id, t.date, t.tx_type, t.payment_method, t.label, t.amount,
	t.account_id, t.favorite, t.category_id, t.subcategory_id, t.reconciled, t.to_analyze,
	c.name, c.color, s.name, s.color
`

func scanTransactionDetail(row interface{ Scan(dest ...any) error }) (models.TransactionDetail, error) {
	var d models.TransactionDetail
	err := row.Scan(
		&d.ID, &d.Date, &d.TxType, &d.PaymentMethod, &d.Label, &d.Amount,
		&d.BankAccountID, &d.Favorite, &d.CategoryID, &d.SubcategoryID, &d.Reconciled, &d.ToAnalyze,
		&d.Category, &d.CategoryColor, &d.Subcategory, &d.SubcategoryColor)
	return d, err
}

func ListTransactions(ctx context.Context, pool *pgxpool.Pool, filter TransactionFilter) ([]models.TransactionDetail, error) {
	cacheKey := filter.cacheKey()
	if cached, found := db.Cache.Get(cacheKey); found {
		if list, ok := cached.([]models.TransactionDetail); ok {
			return list, nil
		}
	}

	query := `
		SELECT ` + transactionDetailColumns + `
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		LEFT JOIN subcategories s ON t.subcategory_id = s.id
		WHERE 1=1
	`
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+clause, len(args))
	}

	if filter.AccountID != nil {
		add("t.account_id = $%d", *filter.AccountID)
	}
	if filter.CategoryID != nil {
		add("t.category_id = $%d", *filter.CategoryID)
	}
	if filter.CategoryNone {
		query += " AND t.category_id IS NULL"
	}
	if filter.SubcategoryID != nil {
		add("t.subcategory_id = $%d", *filter.SubcategoryID)
	}
	if filter.TxType != "" {
		add("t.tx_type = $%d", filter.TxType)
	}
	if filter.PaymentMethod != "" {
		add("t.payment_method = $%d", filter.PaymentMethod)
	}
	if filter.Search != "" {
		add("t.label ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.Start != nil {
		add("t.date >= $%d", *filter.Start)
	}
	if filter.End != nil {
		add("t.date <= $%d", *filter.End)
	}
	if filter.AmountMin != nil {
		add("t.amount >= $%d", *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		add("t.amount <= $%d", *filter.AmountMax)
	}
	if filter.ToAnalyze != nil {
		add("t.to_analyze = $%d", *filter.ToAnalyze)
	}
	if filter.Reconciled != nil {
		add("t.reconciled = $%d", *filter.Reconciled)
	}
	if filter.Favorite != nil {
		add("t.favorite = $%d", *filter.Favorite)
	}

	sort := filter.Sort
	if sort == "" {
		sort = models.SortByDate
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY t.%s %s, t.id %s", sort.Column(), direction, direction)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.TransactionDetail
	for rows.Next() {
		d, err := scanTransactionDetail(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetTransactionCache(cacheKey, list)
	return list, nil
}

func GetTransactionByID(ctx context.Context, pool *pgxpool.Pool, id int) (*models.TransactionDetail, error) {
	query := `
		SELECT ` + transactionDetailColumns + `
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		LEFT JOIN subcategories s ON t.subcategory_id = s.id
		WHERE t.id = $1
	`
	d, err := scanTransactionDetail(pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func UpdateTransaction(ctx context.Context, pool *pgxpool.Pool, tx *models.Transaction) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET date = $1, tx_type = $2, payment_method = $3, label = $4, amount = $5,
		    account_id = $6, favorite = $7, category_id = $8, subcategory_id = $9,
		    reconciled = $10, to_analyze = $11
		WHERE id = $12
		RETURNING id, date, tx_type, payment_method, label, amount,
		          account_id, favorite, category_id, subcategory_id, reconciled, to_analyze
	`
	var t models.Transaction
	err := pool.QueryRow(ctx, query,
		tx.Date, tx.TxType, tx.PaymentMethod, tx.Label, tx.Amount,
		tx.BankAccountID, tx.Favorite, tx.CategoryID, tx.SubcategoryID,
		tx.Reconciled, tx.ToAnalyze, tx.ID).
		Scan(&t.ID, &t.Date, &t.TxType, &t.PaymentMethod, &t.Label, &t.Amount,
			&t.BankAccountID, &t.Favorite, &t.CategoryID, &t.SubcategoryID, &t.Reconciled, &t.ToAnalyze)
	if err != nil {
		return nil, err
	}
	db.ClearAllTransactionCaches()
	return &t, nil
}

// TransactionExists checks the persisted duplicate key for an import row.
func TransactionExists(ctx context.Context, q Querier, accountID int, date models.Date, label string, amount float64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE account_id = $1 AND date = $2 AND label = $3 AND amount = $4
		)
	`
	var exists bool
	err := q.QueryRow(ctx, query, accountID, date, label, amount).Scan(&exists)
	return exists, err
}

func InsertTransaction(ctx context.Context, q Querier, tx *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (date, tx_type, payment_method, label, amount,
		                          account_id, favorite, category_id, subcategory_id, reconciled, to_analyze)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, date, tx_type, payment_method, label, amount,
		          account_id, favorite, category_id, subcategory_id, reconciled, to_analyze
	`
	var t models.Transaction
	err := q.QueryRow(ctx, query,
		tx.Date, tx.TxType, tx.PaymentMethod, tx.Label, tx.Amount,
		tx.BankAccountID, tx.Favorite, tx.CategoryID, tx.SubcategoryID, tx.Reconciled, tx.ToAnalyze).
		Scan(&t.ID, &t.Date, &t.TxType, &t.PaymentMethod, &t.Label, &t.Amount,
			&t.BankAccountID, &t.Favorite, &t.CategoryID, &t.SubcategoryID, &t.Reconciled, &t.ToAnalyze)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransactionsByDateRange returns plain rows ordered by date then id,
// the order the recurrence detector expects.
func ListTransactionsByDateRange(ctx context.Context, pool *pgxpool.Pool, start, end time.Time, accountID *int) ([]models.Transaction, error) {
	query := `
		SELECT id, date, tx_type, payment_method, label, amount,
		       account_id, favorite, category_id, subcategory_id, reconciled, to_analyze
		FROM transactions
		WHERE date >= $1 AND date <= $2
	`
	args := []any{start, end}
	if accountID != nil {
		args = append(args, *accountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	query += " ORDER BY date, id"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.Date, &t.TxType, &t.PaymentMethod, &t.Label, &t.Amount,
			&t.BankAccountID, &t.Favorite, &t.CategoryID, &t.SubcategoryID, &t.Reconciled, &t.ToAnalyze)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// DeleteUnassignedTransactions removes every transaction not attached
// to a bank account and returns how many went away.
func DeleteUnassignedTransactions(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	cmd, err := pool.Exec(ctx, `DELETE FROM transactions WHERE account_id IS NULL`)
	if err != nil {
		return 0, err
	}
	if cmd.RowsAffected() > 0 {
		db.ClearAllTransactionCaches()
	}
	return int(cmd.RowsAffected()), nil
}

// ResetData wipes transactions and bank accounts. Categories,
// subcategories and rules survive a reset.
func ResetData(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DELETE FROM transactions`); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `DELETE FROM bank_accounts`); err != nil {
		return err
	}
	db.ClearAllTransactionCaches()
	db.ClearAllAccountCaches()
	return nil
}
