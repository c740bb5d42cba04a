package models

// Rule categorizes transactions whose label matches its pattern. Rules are
// tried in insertion (id) order; the first match wins at import time.
type Rule struct {
	ID            int    `json:"id"`
	Pattern       string `json:"pattern"`
	CategoryID    int    `json:"category_id"`
	SubcategoryID *int   `json:"subcategory_id"`
}
