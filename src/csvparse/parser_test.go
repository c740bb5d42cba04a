package csvparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreambleFile(t *testing.T) {
	content := "Compte courant 12345678 2021-01-01\n" +
		"2021-01-02;Debit;CB;Achat supermarche;-12,34\n" +
		"03/01/2021;Credit;Virement;Salaire;1000,00\n"

	res := Parse(content)

	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 2)

	assert.Equal(t, "Compte courant", res.Account.AccountType)
	assert.Equal(t, "12345678", res.Account.Number)
	require.NotNil(t, res.Account.ExportDate)
	assert.Equal(t, "2021-01-01", res.Account.ExportDate.String())

	first := res.Transactions[0]
	assert.Equal(t, "2021-01-02", first.Date.String())
	assert.Equal(t, "Debit", first.TxType)
	assert.Equal(t, "CB", first.PaymentMethod)
	assert.Equal(t, "Achat supermarche", first.Label)
	assert.InDelta(t, -12.34, first.Amount, 1e-9)
	assert.True(t, first.ToAnalyze)
	assert.False(t, first.Reconciled)

	second := res.Transactions[1]
	assert.Equal(t, "2021-01-03", second.Date.String())
	assert.InDelta(t, 1000.00, second.Amount, 1e-9)
}

func TestParseHeaderBlockFile(t *testing.T) {
	content := "Compte;Mon Compte;12345678;2021-06-01;;1 234,56\n" +
		"Date operation;Type;Mode de paiement;Libelle;Montant\n" +
		"2021-05-30;Debit;CB;Achat;-10,00\n"

	res := Parse(content)

	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 1)

	assert.Equal(t, "Compte", res.Account.AccountType)
	assert.Equal(t, "Mon Compte", res.Account.Name)
	assert.Equal(t, "12345678", res.Account.Number)
	require.NotNil(t, res.Account.ExportDate)
	assert.Equal(t, "2021-06-01", res.Account.ExportDate.String())
	require.NotNil(t, res.Account.InitialBalance)
	assert.InDelta(t, 1234.56, *res.Account.InitialBalance, 1e-9)
}

func TestParseDuplicateRows(t *testing.T) {
	content := "Compte courant 12345678 2021-01-01\n" +
		"2021-01-02;Debit;CB;Achat;-12,34\n" +
		"2021-01-02;Debit;CB;Achat;-12,34\n"

	res := Parse(content)

	require.Len(t, res.Transactions, 1)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, 3, res.Duplicates[0].LineNo)
	assert.Equal(t, "Achat", res.Duplicates[0].Label)
	assert.InDelta(t, -12.34, res.Duplicates[0].Amount, 1e-9)
}

func TestParseMalformedRows(t *testing.T) {
	content := "Compte courant 12345678 2021-01-01\n" +
		"2021-01-02;Debit;CB\n" +
		"not-a-date;Debit;CB;Achat;-12,34\n" +
		"2021-01-04;Debit;CB;Achat;abc\n" +
		"2021-01-05;Debit;CB;Achat;-5,00\n"

	res := Parse(content)

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, []string{
		"line 2: missing columns",
		"line 3: invalid date",
		"line 4: invalid amount",
	}, res.Errors)
}

func TestParseDuplicateLineNumberSkipsBlankLines(t *testing.T) {
	content := "Compte;Mon Compte;12345678;2021-06-01;;1 234,56\n" +
		"\n" +
		"Date operation;Type;Mode de paiement;Libelle;Montant\n" +
		"2021-05-30;Debit;CB;Achat;-10,00\n" +
		"2021-05-30;Debit;CB;Achat;-10,00\n"

	res := Parse(content)

	require.Len(t, res.Transactions, 1)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, 5, res.Duplicates[0].LineNo)
}

func TestParseErrorLineNumbersSkipBlankLines(t *testing.T) {
	content := "Compte courant 12345678 2021-01-01\n" +
		"\n" +
		"not-a-date;Debit;CB;Achat;-12,34\n" +
		"\n" +
		"2021-01-04;Debit;CB;Achat;abc\n"

	res := Parse(content)

	assert.Equal(t, []string{
		"line 3: invalid date",
		"line 5: invalid amount",
	}, res.Errors)
}

func TestParseEmptyFile(t *testing.T) {
	res := Parse("")
	assert.Equal(t, []string{"file empty"}, res.Errors)
	assert.Empty(t, res.Transactions)
}

func TestParseLabelSanitization(t *testing.T) {
	content := "Compte courant 12345678 2021-01-01\n" +
		"2021-01-02;Debit;CB;=1+2;-1,00\n" +
		"2021-01-03;Debit;CB;@SUM(A1);-2,00\n" +
		"2021-01-04;Debit;CB;+test;-3,00\n"

	res := Parse(content)

	require.Len(t, res.Transactions, 3)
	assert.Equal(t, "'=1+2", res.Transactions[0].Label)
	assert.Equal(t, "'@SUM(A1)", res.Transactions[1].Label)
	assert.Equal(t, "'+test", res.Transactions[2].Label)
}

func TestParseWithExplicitMapping(t *testing.T) {
	content := "Export 98765432 2021-02-01\n" +
		"-12,34;Achat;2021-01-02\n"

	mapping := ColumnMapping{Date: 2, TxType: -1, PaymentMethod: -1, Label: 1, Amount: 0}
	res := ParseWithMapping(content, mapping)

	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]
	assert.Equal(t, "2021-01-02", tx.Date.String())
	assert.Equal(t, "Achat", tx.Label)
	assert.InDelta(t, -12.34, tx.Amount, 1e-9)
	assert.Empty(t, tx.TxType)
	assert.Empty(t, tx.PaymentMethod)
}

func TestParseAmountFormats(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"-12,34", -12.34},
		{"1000,00", 1000},
		{"123,45-", -123.45},
		{"(50,00)", -50},
		{"1 234,56", 1234.56},
		{"1 234,56", 1234.56},
		{"0,10", 0.1},
	}
	for _, c := range cases {
		got, err := parseAmount(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, got, 1e-9, c.in)
	}

	_, err := parseAmount("abc")
	assert.Error(t, err)
}
