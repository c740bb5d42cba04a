package models

type Transaction struct {
	ID            int     `json:"id"`
	Date          Date    `json:"date"`
	TxType        string  `json:"type"`
	PaymentMethod string  `json:"payment_method"`
	Label         string  `json:"label"`
	Amount        float64 `json:"amount"`
	BankAccountID *int    `json:"account_id"`
	Favorite      bool    `json:"favorite"`
	CategoryID    *int    `json:"category_id"`
	SubcategoryID *int    `json:"subcategory_id"`
	Reconciled    bool    `json:"reconciled"`
	ToAnalyze     bool    `json:"to_analyze"`
}

// TransactionDetail is a Transaction joined with its category and
// subcategory names/colors for list responses.
type TransactionDetail struct {
	Transaction
	Category         *string `json:"category"`
	CategoryColor    *string `json:"category_color"`
	Subcategory      *string `json:"subcategory"`
	SubcategoryColor *string `json:"subcategory_color"`
}
