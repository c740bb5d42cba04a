package models

type BankAccount struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	AccountType    string  `json:"account_type"`
	Number         string  `json:"number"`
	ExportDate     *Date   `json:"export_date"`
	InitialBalance float64 `json:"initial_balance"`
	BalanceDate    *Date   `json:"balance_date"`
}
