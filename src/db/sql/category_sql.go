package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/models"
)

func CreateCategory(ctx context.Context, pool *pgxpool.Pool, category *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, color, favorite)
		VALUES ($1, $2, $3)
		RETURNING id, name, color, favorite
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, category.Name, category.Color, category.Favorite).
		Scan(&c.ID, &c.Name, &c.Color, &c.Favorite)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetCategoryByID(ctx context.Context, pool *pgxpool.Pool, id int) (*models.Category, error) {
	query := `SELECT id, name, color, favorite FROM categories WHERE id = $1`
	var c models.Category
	err := pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Color, &c.Favorite)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAllCategories returns every category with its subcategories nested.
func GetAllCategories(ctx context.Context, pool *pgxpool.Pool) ([]models.Category, error) {
	rows, err := pool.Query(ctx, `SELECT id, name, color, favorite FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	index := make(map[int]int)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Favorite); err != nil {
			return nil, err
		}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subRows, err := pool.Query(ctx, `SELECT id, name, color, favorite, category_id FROM subcategories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		var s models.Subcategory
		if err := subRows.Scan(&s.ID, &s.Name, &s.Color, &s.Favorite, &s.CategoryID); err != nil {
			return nil, err
		}
		if i, ok := index[s.CategoryID]; ok {
			categories[i].Subcategories = append(categories[i].Subcategories, s)
		}
	}
	return categories, subRows.Err()
}

// UpdateCategory also propagates a color change to subcategories that
// shared the old color.
func UpdateCategory(ctx context.Context, pool *pgxpool.Pool, category *models.Category) (*models.Category, error) {
	var oldColor string
	err := pool.QueryRow(ctx, `SELECT color FROM categories WHERE id = $1`, category.ID).Scan(&oldColor)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE categories
		SET name = $1, color = $2, favorite = $3
		WHERE id = $4
		RETURNING id, name, color, favorite
	`
	var c models.Category
	err = pool.QueryRow(ctx, query, category.Name, category.Color, category.Favorite, category.ID).
		Scan(&c.ID, &c.Name, &c.Color, &c.Favorite)
	if err != nil {
		return nil, err
	}

	if oldColor != c.Color {
		_, err = pool.Exec(ctx,
			`UPDATE subcategories SET color = $1 WHERE category_id = $2 AND color = $3`,
			c.Color, c.ID, oldColor)
		if err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func DeleteCategory(ctx context.Context, pool *pgxpool.Pool, id int) error {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM subcategories WHERE category_id = $1)
		      + (SELECT COUNT(*) FROM transactions WHERE category_id = $1)
		      + (SELECT COUNT(*) FROM rules WHERE category_id = $1)`, id).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("category in use")
	}

	cmd, err := pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}
