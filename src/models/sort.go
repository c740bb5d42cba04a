package models

import (
	"errors"
	"fmt"
)

// SortField is the set of transaction columns a list request may sort on.
// Unknown names are rejected instead of silently falling back to date.
type SortField string

const (
	SortByID            SortField = "id"
	SortByDate          SortField = "date"
	SortByLabel         SortField = "label"
	SortByAmount        SortField = "amount"
	SortByType          SortField = "tx_type"
	SortByPaymentMethod SortField = "payment_method"
	SortByCategory      SortField = "category_id"
)

var ErrUnknownSortField = errors.New("unknown sort field")

var sortFields = map[string]SortField{
	"id":             SortByID,
	"date":           SortByDate,
	"label":          SortByLabel,
	"amount":         SortByAmount,
	"type":           SortByType,
	"payment_method": SortByPaymentMethod,
	"category_id":    SortByCategory,
}

// ParseSortField maps a query-string sort name to its column. The empty
// string defaults to date.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortByDate, nil
	}
	field, ok := sortFields[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortField, s)
	}
	return field, nil
}

// Column returns the SQL column name for ORDER BY clauses.
func (f SortField) Column() string {
	return string(f)
}
