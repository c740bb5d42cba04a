package models

type Category struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Color         string        `json:"color"`
	Favorite      bool          `json:"favorite"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

type Subcategory struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Favorite   bool   `json:"favorite"`
	CategoryID int    `json:"category_id"`
}
