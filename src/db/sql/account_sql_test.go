package db

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "tresorier-server/src/db"
	"tresorier-server/src/models"
)

func TestMain(m *testing.M) {
	cache.InitCache()
	os.Exit(m.Run())
}

// captureQuerier records the statements and arguments it receives.
type captureQuerier struct {
	sqls []string
	args [][]any
}

func (c *captureQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.sqls = append(c.sqls, sql)
	c.args = append(c.args, args)
	return pgconn.CommandTag{}, nil
}

func (c *captureQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (c *captureQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func TestUpdateBankAccountSnapshotCarriesName(t *testing.T) {
	q := &captureQuerier{}
	exportDate := models.NewDate(2021, 6, 1)

	err := UpdateBankAccountSnapshot(context.Background(), q, 7, "Mon Compte", &exportDate, nil, nil)
	require.NoError(t, err)
	require.Len(t, q.sqls, 1)

	// An empty name leaves the stored one untouched, a non-empty one
	// replaces it.
	assert.Contains(t, q.sqls[0], "name = COALESCE(NULLIF($1, ''), name)")
	assert.Equal(t, "Mon Compte", q.args[0][0])
}

func TestUpdateBankAccountSnapshotWithBalance(t *testing.T) {
	q := &captureQuerier{}
	exportDate := models.NewDate(2021, 6, 1)
	balance := 1234.56

	err := UpdateBankAccountSnapshot(context.Background(), q, 7, "", &exportDate, &balance, &exportDate)
	require.NoError(t, err)
	require.Len(t, q.sqls, 1)

	assert.Contains(t, q.sqls[0], "name = COALESCE(NULLIF($1, ''), name)")
	assert.Contains(t, q.sqls[0], "initial_balance = $3")
	assert.Equal(t, "", q.args[0][0])
	assert.Equal(t, balance, q.args[0][2])
}
