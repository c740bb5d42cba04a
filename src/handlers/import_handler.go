package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/csvparse"
	dbcache "tresorier-server/src/db"
	db "tresorier-server/src/db/sql"
	"tresorier-server/src/models"
	"tresorier-server/src/rules"
)

var errAccountRequired = errors.New("account_id is required")

func readUploadedFile(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return "", err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// mappingFromForm reads an explicit column layout from the form fields
// col_date, col_type, col_payment_method, col_label and col_amount. When
// none are present the default bank layout applies.
func mappingFromForm(r *http.Request) (csvparse.ColumnMapping, error) {
	mapping := csvparse.DefaultMapping
	fields := map[string]*int{
		"col_date":           &mapping.Date,
		"col_type":           &mapping.TxType,
		"col_payment_method": &mapping.PaymentMethod,
		"col_label":          &mapping.Label,
		"col_amount":         &mapping.Amount,
	}
	for name, dst := range fields {
		s := r.FormValue(name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return mapping, errors.New("invalid " + name)
		}
		*dst = v
	}
	return mapping, nil
}

// findOrCreateAccount resolves the account an export belongs to by its
// (type, number) pair, creating it on first import.
func findOrCreateAccount(r *http.Request, tx pgx.Tx, info csvparse.AccountInfo) (*models.BankAccount, error) {
	account, err := db.GetBankAccountByTypeAndNumber(r.Context(), tx, info.AccountType, info.Number)
	if err == nil {
		if err := db.UpdateBankAccountSnapshot(r.Context(), tx, account.ID, info.Name, info.ExportDate, info.InitialBalance, info.BalanceDate); err != nil {
			return nil, err
		}
		return account, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	name := info.Name
	if name == "" {
		name = info.AccountType
	}
	newAccount := &models.BankAccount{
		Name:        name,
		AccountType: info.AccountType,
		Number:      info.Number,
		ExportDate:  info.ExportDate,
		BalanceDate: info.BalanceDate,
	}
	if info.InitialBalance != nil {
		newAccount.InitialBalance = *info.InitialBalance
	}
	return db.CreateBankAccount(r.Context(), tx, newAccount)
}

// importRows inserts parsed rows through q. Rows already persisted for
// the account are held back as duplicates, the rest run through the
// quick-match rules before insert.
func importRows(ctx context.Context, q db.Querier, account *models.BankAccount, rows []models.Transaction, ruleList []models.Rule) (int, []csvparse.Duplicate, error) {
	imported := 0
	var duplicates []csvparse.Duplicate
	for i := range rows {
		row := &rows[i]
		row.BankAccountID = &account.ID

		exists, err := db.TransactionExists(ctx, q, account.ID, row.Date, row.Label, row.Amount)
		if err != nil {
			return imported, duplicates, err
		}
		if exists {
			duplicates = append(duplicates, csvparse.Duplicate{
				Date:          row.Date,
				TxType:        row.TxType,
				PaymentMethod: row.PaymentMethod,
				Label:         row.Label,
				Amount:        row.Amount,
				AccountID:     account.ID,
			})
			continue
		}

		if rule := rules.FirstQuickMatch(ruleList, row.Label); rule != nil {
			row.CategoryID = &rule.CategoryID
			row.SubcategoryID = rule.SubcategoryID
		}

		if _, err := db.InsertTransaction(ctx, q, row); err != nil {
			return imported, duplicates, err
		}
		imported++
	}
	return imported, duplicates, nil
}

// importResponse assembles every channel of an import result: inserted
// count, the resolved account, rows held back as duplicates and the
// malformed lines. Parse errors turn the status into a 400 while the
// valid rows stay imported.
func importResponse(imported int, account *models.BankAccount, duplicates []csvparse.Duplicate, parseErrors []string) (int, map[string]any) {
	resp := map[string]any{
		"imported": imported,
		"account":  account,
	}
	if len(duplicates) > 0 {
		resp["duplicates"] = duplicates
	}
	if len(parseErrors) == 0 {
		return http.StatusOK, resp
	}
	resp["errors"] = parseErrors
	return http.StatusBadRequest, resp
}

// ImportCSV parses an uploaded bank export, resolves its account, skips
// already-persisted rows, categorizes the rest through the rules and
// inserts everything in a single transaction.
func ImportCSV(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := readUploadedFile(r)
		if err != nil {
			log.Printf("ERROR: Failed to read import file: %v", err)
			http.Error(w, "file is required", http.StatusBadRequest)
			return
		}
		mapping, err := mappingFromForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		parsed := csvparse.ParseWithMapping(content, mapping)

		ruleList, err := db.GetAllRules(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to load rules for import: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		tx, err := pool.Begin(r.Context())
		if err != nil {
			log.Printf("ERROR: Failed to begin import transaction: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback(r.Context())

		account, err := findOrCreateAccount(r, tx, parsed.Account)
		if err != nil {
			log.Printf("ERROR: Failed to resolve account for import: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		imported, persisted, err := importRows(r.Context(), tx, account, parsed.Transactions, ruleList)
		if err != nil {
			log.Printf("ERROR: Failed to insert imported transactions: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		duplicates := append(parsed.Duplicates, persisted...)

		if err := tx.Commit(r.Context()); err != nil {
			log.Printf("ERROR: Failed to commit import: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		dbcache.ClearAllTransactionCaches()

		log.Printf("INFO: Imported %d transactions into account id %d (%d duplicates, %d malformed lines)",
			imported, account.ID, len(duplicates), len(parsed.Errors))
		status, resp := importResponse(imported, account, duplicates, parsed.Errors)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}

// confirmRows inserts rows the user confirmed as intentional repeats.
// A row that landed in the meantime through another import is skipped
// rather than doubled.
func confirmRows(ctx context.Context, q db.Querier, rows []csvparse.Duplicate, fallbackAccountID int, ruleList []models.Rule) (int, error) {
	imported := 0
	for _, row := range rows {
		// Rows from an in-file duplicate report carry no account id of
		// their own; the request-level one fills it in.
		accountID := row.AccountID
		if accountID == 0 {
			accountID = fallbackAccountID
		}
		if accountID == 0 {
			return imported, errAccountRequired
		}

		exists, err := db.TransactionExists(ctx, q, accountID, row.Date, row.Label, row.Amount)
		if err != nil {
			return imported, err
		}
		if exists {
			continue
		}

		t := models.Transaction{
			Date:          row.Date,
			TxType:        row.TxType,
			PaymentMethod: row.PaymentMethod,
			Label:         row.Label,
			Amount:        row.Amount,
			BankAccountID: &accountID,
			ToAnalyze:     true,
		}
		if rule := rules.FirstQuickMatch(ruleList, t.Label); rule != nil {
			t.CategoryID = &rule.CategoryID
			t.SubcategoryID = rule.SubcategoryID
		}
		if _, err := db.InsertTransaction(ctx, q, &t); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// ConfirmImport force-inserts rows previously reported as duplicates.
func ConfirmImport(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccountID    int                  `json:"account_id"`
			Transactions []csvparse.Duplicate `json:"transactions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode confirm import request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if len(req.Transactions) == 0 {
			http.Error(w, "transactions are required", http.StatusBadRequest)
			return
		}

		ruleList, err := db.GetAllRules(r.Context(), pool)
		if err != nil {
			log.Printf("ERROR: Failed to load rules for confirm import: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		tx, err := pool.Begin(r.Context())
		if err != nil {
			log.Printf("ERROR: Failed to begin confirm import transaction: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback(r.Context())

		imported, err := confirmRows(r.Context(), tx, req.Transactions, req.AccountID, ruleList)
		if err != nil {
			if errors.Is(err, errAccountRequired) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Printf("ERROR: Failed to insert confirmed transactions: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(r.Context()); err != nil {
			log.Printf("ERROR: Failed to commit confirm import: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		dbcache.ClearAllTransactionCaches()

		log.Printf("INFO: Confirmed import of %d duplicate transactions", imported)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"imported": imported})
	}
}

// ImportPreset inspects an uploaded file and reports its detected shape
// plus a short preview so the client can map columns before importing.
func ImportPreset(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := readUploadedFile(r)
		if err != nil {
			log.Printf("ERROR: Failed to read preset file: %v", err)
			http.Error(w, "file is required", http.StatusBadRequest)
			return
		}

		st := csvparse.DetectStructure(content)
		parsed := csvparse.Parse(content)

		preview := parsed.Transactions
		if len(preview) > 5 {
			preview = preview[:5]
		}

		var headerIndex *int
		if st.HeaderIndex >= 0 {
			headerIndex = &st.HeaderIndex
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"delimiter":    string(st.Delimiter),
			"header_index": headerIndex,
			"data_index":   st.DataIndex,
			"columns":      st.Columns,
			"account":      parsed.Account,
			"preview":      preview,
		})
	}
}
