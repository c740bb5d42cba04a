package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tresorier-server/src/models"
)

func TestTransactionFilterCacheKeyComparesByValue(t *testing.T) {
	a1, a2 := 3, 3
	min1, min2 := 10.5, 10.5
	d1, _ := models.ParseDate("2021-01-01")
	d2, _ := models.ParseDate("2021-01-01")

	f1 := TransactionFilter{AccountID: &a1, AmountMin: &min1, Start: &d1, TxType: "Debit"}
	f2 := TransactionFilter{AccountID: &a2, AmountMin: &min2, Start: &d2, TxType: "Debit"}
	assert.Equal(t, f1.cacheKey(), f2.cacheKey())

	other := 4
	f3 := TransactionFilter{AccountID: &other, AmountMin: &min1, Start: &d1, TxType: "Debit"}
	assert.NotEqual(t, f1.cacheKey(), f3.cacheKey())
}

func TestTransactionFilterCacheKeyDistinguishesNilFromZero(t *testing.T) {
	zero := 0
	unfiltered := TransactionFilter{}
	filtered := TransactionFilter{AccountID: &zero}
	assert.NotEqual(t, unfiltered.cacheKey(), filtered.cacheKey())

	f := false
	assert.NotEqual(t,
		TransactionFilter{}.cacheKey(),
		TransactionFilter{Reconciled: &f}.cacheKey())
}
