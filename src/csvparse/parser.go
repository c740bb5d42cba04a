package csvparse

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tresorier-server/src/models"
)

// ColumnMapping assigns record fields to column indexes. A negative index
// marks the field as absent from the file.
type ColumnMapping struct {
	Date          int
	TxType        int
	PaymentMethod int
	Label         int
	Amount        int
}

// DefaultMapping is the column order of the supported bank exports:
// date;type;payment method;label;amount.
var DefaultMapping = ColumnMapping{Date: 0, TxType: 1, PaymentMethod: 2, Label: 3, Amount: 4}

// AccountInfo is the account metadata carried in an export's preamble or
// header block. It is matched against persisted accounts by
// (account type, number).
type AccountInfo struct {
	AccountType    string       `json:"account_type"`
	Name           string       `json:"name"`
	Number         string       `json:"number"`
	ExportDate     *models.Date `json:"export_date"`
	InitialBalance *float64     `json:"initial_balance,omitempty"`
	BalanceDate    *models.Date `json:"balance_date,omitempty"`
}

// Duplicate is a parsed row whose (date, label, amount) key collides with
// one already seen. Duplicates are reported, never inserted without
// explicit confirmation.
type Duplicate struct {
	LineNo        int         `json:"line_no,omitempty"`
	Date          models.Date `json:"date"`
	TxType        string      `json:"type"`
	PaymentMethod string      `json:"payment_method"`
	Label         string      `json:"label"`
	Amount        float64     `json:"amount"`
	AccountID     int         `json:"account_id,omitempty"`
}

type Result struct {
	Transactions []models.Transaction
	Duplicates   []Duplicate
	Errors       []string
	Account      AccountInfo
}

var (
	dateRe   = regexp.MustCompile(`(\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2})`)
	numberRe = regexp.MustCompile(`\d{4,}`)
)

// Parse reads a bank CSV export using the embedded format heuristics.
func Parse(content string) Result {
	return ParseWithMapping(content, DefaultMapping)
}

// ParseWithMapping parses a bank CSV export with an explicit column
// layout. Parsing is best-effort: malformed rows are skipped and reported
// with their 1-based line number, and in-file duplicates go to a separate
// channel.
func ParseWithMapping(content string, mapping ColumnMapping) Result {
	rows := readRows(content)
	if len(rows) == 0 {
		return Result{Errors: []string{"file empty"}}
	}

	res := Result{}
	startIdx := 1

	switch {
	case isHeaderRow(rows[0].fields):
		// Bare header, no account metadata to extract.
	case len(rows) > 1 && isHeaderRow(rows[1].fields) && len(rows[0].fields) >= 4:
		res.Account = parseHeaderBlockAccount(rows[0].fields)
		startIdx = 2
	default:
		res.Account = parsePreambleAccount(rows[0].fields)
	}

	seen := make(map[string]struct{})
	for _, rec := range rows[startIdx:] {
		lineNo := rec.lineNo
		row := rec.fields
		if blankRow(row) {
			continue
		}
		if len(row) < mapping.width() {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: missing columns", lineNo))
			continue
		}

		dateStr := strings.TrimSpace(field(row, mapping.Date))
		label := sanitizeLabel(strings.TrimSpace(field(row, mapping.Label)))
		amountStr := strings.TrimSpace(field(row, mapping.Amount))
		if dateStr == "" || label == "" || amountStr == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: missing columns", lineNo))
			continue
		}

		date, err := parseDate(dateStr)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: invalid date", lineNo))
			continue
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: invalid amount", lineNo))
			continue
		}

		txType := strings.TrimSpace(field(row, mapping.TxType))
		payment := strings.TrimSpace(field(row, mapping.PaymentMethod))

		key := fmt.Sprintf("%s\x00%s\x00%v", date, label, amount)
		if _, dup := seen[key]; dup {
			res.Duplicates = append(res.Duplicates, Duplicate{
				LineNo:        lineNo,
				Date:          date,
				TxType:        txType,
				PaymentMethod: payment,
				Label:         label,
				Amount:        amount,
			})
			continue
		}
		seen[key] = struct{}{}

		res.Transactions = append(res.Transactions, models.Transaction{
			Date:          date,
			TxType:        txType,
			PaymentMethod: payment,
			Label:         label,
			Amount:        amount,
			Reconciled:    false,
			ToAnalyze:     true,
		})
	}

	return res
}

// isHeaderRow reports whether a row is a column-title line running from
// a date column to an amount column.
func isHeaderRow(row []string) bool {
	if len(row) < 2 {
		return false
	}
	first := strings.ToLower(row[0])
	last := strings.ToLower(row[len(row)-1])
	return strings.Contains(first, "date") &&
		(strings.Contains(last, "montant") || strings.Contains(last, "amount"))
}

// parseHeaderBlockAccount reads the structured account row:
// type;name;number;export date;;opening balance.
func parseHeaderBlockAccount(row []string) AccountInfo {
	info := AccountInfo{
		AccountType: strings.TrimSpace(row[0]),
		Name:        strings.TrimSpace(row[1]),
		Number:      strings.TrimSpace(row[2]),
	}
	if s := strings.TrimSpace(row[3]); s != "" {
		if d, err := parseDate(s); err == nil {
			info.ExportDate = &d
		}
	}
	if len(row) > 5 {
		if s := strings.TrimSpace(row[5]); s != "" {
			if bal, err := parseAmount(s); err == nil {
				info.InitialBalance = &bal
				info.BalanceDate = info.ExportDate
			}
		}
	}
	return info
}

// parsePreambleAccount extracts metadata from a free-text first line: the
// first date-shaped substring is the export date, the first run of 4+
// digits the account number, and what precedes them the account type.
func parsePreambleAccount(row []string) AccountInfo {
	infoStr := strings.Join(row, " ")
	info := AccountInfo{AccountType: strings.TrimSpace(infoStr)}

	accountType := infoStr
	if loc := dateRe.FindStringIndex(infoStr); loc != nil {
		if d, err := parseDate(infoStr[loc[0]:loc[1]]); err == nil {
			info.ExportDate = &d
		}
		accountType = strings.TrimSpace(infoStr[:loc[0]])
	}
	if loc := numberRe.FindStringIndex(infoStr); loc != nil {
		info.Number = infoStr[loc[0]:loc[1]]
		if loc[0] < len(accountType) {
			accountType = strings.TrimSpace(infoStr[:loc[0]])
		}
	}
	info.AccountType = strings.TrimSpace(accountType)
	return info
}

// sanitizeLabel neutralizes spreadsheet formula injection: labels opening
// with =, +, - or @ gain a leading single quote.
func sanitizeLabel(label string) string {
	if label == "" {
		return label
	}
	switch label[0] {
	case '=', '+', '-', '@':
		return "'" + label
	}
	return label
}

func parseDate(s string) (models.Date, error) {
	var lastErr error
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return models.DateOf(t), nil
		}
		lastErr = err
	}
	return models.Date{}, lastErr
}

// parseAmount handles locale quirks of bank exports: non-breaking or
// regular spaces as thousands separators, a decimal comma, and negatives
// written as a trailing minus or parenthesized value.
func parseAmount(s string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", " ", "").Replace(s)
	negative := false
	switch {
	case strings.HasSuffix(cleaned, "-"):
		negative = true
		cleaned = strings.TrimSuffix(cleaned, "-")
	case strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")"):
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// width is the minimum field count a data row must have under this
// mapping.
func (m ColumnMapping) width() int {
	max := 0
	for _, idx := range []int{m.Date, m.TxType, m.PaymentMethod, m.Label, m.Amount} {
		if idx+1 > max {
			max = idx + 1
		}
	}
	return max
}

// record is one non-blank physical line of the file with its 1-based
// line number. Blank lines are skipped but still count toward the
// numbering, so diagnostics point at the line a text editor shows.
type record struct {
	lineNo int
	fields []string
}

func readRows(content string) []record {
	var rows []record
	for i, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		reader := csv.NewReader(strings.NewReader(line))
		reader.Comma = ';'
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		fields, err := reader.Read()
		if err != nil {
			fields = strings.Split(line, ";")
		}
		rows = append(rows, record{lineNo: i + 1, fields: fields})
	}
	return rows
}
