package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortField(t *testing.T) {
	field, err := ParseSortField("amount")
	require.NoError(t, err)
	assert.Equal(t, SortByAmount, field)

	field, err = ParseSortField("type")
	require.NoError(t, err)
	assert.Equal(t, SortByType, field)
	assert.Equal(t, "tx_type", field.Column())
}

func TestParseSortFieldDefault(t *testing.T) {
	field, err := ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortByDate, field)
}

func TestParseSortFieldUnknown(t *testing.T) {
	_, err := ParseSortField("label; DROP TABLE transactions")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSortField)
}
