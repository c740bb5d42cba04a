package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tresorier-server/src/csvparse"
	"tresorier-server/src/models"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

// stubStore satisfies db.Querier with an in-memory duplicate key set, so
// the import row loops run without a database.
type stubStore struct {
	existing map[string]bool
	inserted int
}

func newStubStore() *stubStore {
	return &stubStore{existing: make(map[string]bool)}
}

func (s *stubStore) key(accountID int, date models.Date, label string, amount float64) string {
	return fmt.Sprintf("%d|%s|%s|%v", accountID, date, label, amount)
}

func (s *stubStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (s *stubStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "SELECT EXISTS") {
		exists := s.existing[s.key(args[0].(int), args[1].(models.Date), args[2].(string), args[3].(float64))]
		return stubRow{func(dest ...any) error {
			*(dest[0].(*bool)) = exists
			return nil
		}}
	}

	// INSERT ... RETURNING; argument order mirrors InsertTransaction.
	s.inserted++
	s.existing[s.key(*(args[5].(*int)), args[0].(models.Date), args[3].(string), args[4].(float64))] = true
	return stubRow{func(dest ...any) error { return nil }}
}

func importDate(d int) models.Date {
	return models.NewDate(2021, 1, d)
}

func TestImportRowsHoldsBackPersistedDuplicates(t *testing.T) {
	store := newStubStore()
	account := &models.BankAccount{ID: 7}
	store.existing[store.key(7, importDate(2), "Achat", -12.34)] = true

	rows := []models.Transaction{
		{Date: importDate(2), Label: "Achat", Amount: -12.34, ToAnalyze: true},
		{Date: importDate(3), Label: "Salaire", Amount: 1000, ToAnalyze: true},
	}
	imported, duplicates, err := importRows(context.Background(), store, account, rows, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, store.inserted)
	require.Len(t, duplicates, 1)
	assert.Equal(t, "Achat", duplicates[0].Label)
	assert.Equal(t, 7, duplicates[0].AccountID)
}

func TestConfirmRowsSkipsRowsAlreadyLanded(t *testing.T) {
	store := newStubStore()
	store.existing[store.key(7, importDate(2), "Achat", -12.34)] = true

	rows := []csvparse.Duplicate{
		{Date: importDate(2), Label: "Achat", Amount: -12.34, AccountID: 7},
		{Date: importDate(2), Label: "Loyer", Amount: -800, AccountID: 7},
	}
	imported, err := confirmRows(context.Background(), store, rows, 0, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, store.inserted)
}

func TestConfirmRowsRequiresAnAccount(t *testing.T) {
	store := newStubStore()
	rows := []csvparse.Duplicate{{Date: importDate(2), Label: "Achat", Amount: -12.34}}

	_, err := confirmRows(context.Background(), store, rows, 0, nil)
	assert.ErrorIs(t, err, errAccountRequired)

	imported, err := confirmRows(context.Background(), store, rows, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
}

func TestImportResponseKeepsValidRowsOnParseErrors(t *testing.T) {
	account := &models.BankAccount{ID: 7}

	status, resp := importResponse(2, account, nil, []string{"line 3: invalid date"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 2, resp["imported"])
	assert.Equal(t, []string{"line 3: invalid date"}, resp["errors"])

	status, resp = importResponse(2, account, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	_, hasErrors := resp["errors"]
	assert.False(t, hasErrors)
}
