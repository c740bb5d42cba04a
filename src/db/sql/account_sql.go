package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/db"
	"tresorier-server/src/models"
)

func CreateBankAccount(ctx context.Context, q Querier, account *models.BankAccount) (*models.BankAccount, error) {
	query := `
		INSERT INTO bank_accounts (name, account_type, number, export_date, initial_balance, balance_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, account_type, number, export_date, initial_balance, balance_date
	`
	var a models.BankAccount
	err := q.QueryRow(ctx, query,
		account.Name, account.AccountType, account.Number,
		account.ExportDate, account.InitialBalance, account.BalanceDate).
		Scan(&a.ID, &a.Name, &a.AccountType, &a.Number, &a.ExportDate, &a.InitialBalance, &a.BalanceDate)
	if err != nil {
		return nil, err
	}
	db.ClearAllAccountCaches()
	return &a, nil
}

func GetBankAccountByID(ctx context.Context, pool *pgxpool.Pool, id int) (*models.BankAccount, error) {
	query := `
		SELECT id, name, account_type, number, export_date, initial_balance, balance_date
		FROM bank_accounts
		WHERE id = $1
	`
	var a models.BankAccount
	err := pool.QueryRow(ctx, query, id).
		Scan(&a.ID, &a.Name, &a.AccountType, &a.Number, &a.ExportDate, &a.InitialBalance, &a.BalanceDate)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetBankAccountByTypeAndNumber finds the persisted account an import
// file belongs to. Returns pgx.ErrNoRows when none exists yet.
func GetBankAccountByTypeAndNumber(ctx context.Context, q Querier, accountType, number string) (*models.BankAccount, error) {
	query := `
		SELECT id, name, account_type, number, export_date, initial_balance, balance_date
		FROM bank_accounts
		WHERE account_type = $1 AND number = $2
	`
	var a models.BankAccount
	err := q.QueryRow(ctx, query, accountType, number).
		Scan(&a.ID, &a.Name, &a.AccountType, &a.Number, &a.ExportDate, &a.InitialBalance, &a.BalanceDate)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func GetAllBankAccounts(ctx context.Context, pool *pgxpool.Pool) ([]models.BankAccount, error) {
	cacheKey := "bank_accounts:all"
	if cached, found := db.Cache.Get(cacheKey); found {
		if accounts, ok := cached.([]models.BankAccount); ok {
			return accounts, nil
		}
	}

	query := `
		SELECT id, name, account_type, number, export_date, initial_balance, balance_date
		FROM bank_accounts
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.BankAccount
	for rows.Next() {
		var a models.BankAccount
		err := rows.Scan(&a.ID, &a.Name, &a.AccountType, &a.Number, &a.ExportDate, &a.InitialBalance, &a.BalanceDate)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetAccountCache(cacheKey, accounts)
	return accounts, nil
}

func UpdateBankAccount(ctx context.Context, pool *pgxpool.Pool, account *models.BankAccount) (*models.BankAccount, error) {
	query := `
		UPDATE bank_accounts
		SET name = $1, account_type = $2, number = $3, export_date = $4, initial_balance = $5, balance_date = $6
		WHERE id = $7
		RETURNING id, name, account_type, number, export_date, initial_balance, balance_date
	`
	var a models.BankAccount
	err := pool.QueryRow(ctx, query,
		account.Name, account.AccountType, account.Number,
		account.ExportDate, account.InitialBalance, account.BalanceDate, account.ID).
		Scan(&a.ID, &a.Name, &a.AccountType, &a.Number, &a.ExportDate, &a.InitialBalance, &a.BalanceDate)
	if err != nil {
		return nil, err
	}
	db.ClearAllAccountCaches()
	return &a, nil
}

// UpdateBankAccountSnapshot refreshes the import metadata of an account:
// the name and export date when the file carries them, and the opening
// balance when one is present.
func UpdateBankAccountSnapshot(ctx context.Context, q Querier, id int, name string, exportDate *models.Date, initialBalance *float64, balanceDate *models.Date) error {
	if initialBalance != nil {
		query := `
			UPDATE bank_accounts
			SET name = COALESCE(NULLIF($1, ''), name),
			    export_date = COALESCE($2, export_date),
			    initial_balance = $3,
			    balance_date = COALESCE($4, balance_date)
			WHERE id = $5
		`
		if _, err := q.Exec(ctx, query, name, exportDate, *initialBalance, balanceDate, id); err != nil {
			return err
		}
	} else {
		query := `
			UPDATE bank_accounts
			SET name = COALESCE(NULLIF($1, ''), name),
			    export_date = COALESCE($2, export_date)
			WHERE id = $3
		`
		if _, err := q.Exec(ctx, query, name, exportDate, id); err != nil {
			return err
		}
	}
	db.ClearAllAccountCaches()
	return nil
}

// DeleteBankAccount removes an account together with every transaction
// posted to it.
func DeleteBankAccount(ctx context.Context, pool *pgxpool.Pool, id int) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE account_id = $1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("bank account not found")
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	db.ClearAllAccountCaches()
	db.ClearAllTransactionCaches()
	return nil
}

// SetBankAccountBalance records a hand-checked balance: the opening
// balance and the day it was observed.
func SetBankAccountBalance(ctx context.Context, pool *pgxpool.Pool, id int, balance float64, date *models.Date) error {
	query := `
		UPDATE bank_accounts
		SET initial_balance = $1, balance_date = COALESCE($2, balance_date)
		WHERE id = $3
	`
	cmd, err := pool.Exec(ctx, query, balance, date, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("bank account not found")
	}
	db.ClearAllAccountCaches()
	return nil
}

// GetBankAccountBalance is the account's opening balance plus every
// posted amount.
func GetBankAccountBalance(ctx context.Context, pool *pgxpool.Pool, id int) (float64, error) {
	query := `
		SELECT a.initial_balance + COALESCE(SUM(t.amount), 0)
		FROM bank_accounts a
		LEFT JOIN transactions t ON t.account_id = a.id
		WHERE a.id = $1
		GROUP BY a.initial_balance
	`
	var balance float64
	err := pool.QueryRow(ctx, query, id).Scan(&balance)
	if err != nil {
		return 0, err
	}
	return balance, nil
}
