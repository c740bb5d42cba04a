package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tresorier-server/src/models"
)

func CreateSubcategory(ctx context.Context, pool *pgxpool.Pool, sub *models.Subcategory) (*models.Subcategory, error) {
	// Inherit the parent color when none is given.
	color := sub.Color
	if color == "" {
		err := pool.QueryRow(ctx, `SELECT color FROM categories WHERE id = $1`, sub.CategoryID).Scan(&color)
		if err != nil {
			return nil, err
		}
	}

	query := `
		INSERT INTO subcategories (name, color, favorite, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, color, favorite, category_id
	`
	var s models.Subcategory
	err := pool.QueryRow(ctx, query, sub.Name, color, sub.Favorite, sub.CategoryID).
		Scan(&s.ID, &s.Name, &s.Color, &s.Favorite, &s.CategoryID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func GetSubcategoryByID(ctx context.Context, pool *pgxpool.Pool, id int) (*models.Subcategory, error) {
	query := `SELECT id, name, color, favorite, category_id FROM subcategories WHERE id = $1`
	var s models.Subcategory
	err := pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Color, &s.Favorite, &s.CategoryID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func UpdateSubcategory(ctx context.Context, pool *pgxpool.Pool, sub *models.Subcategory) (*models.Subcategory, error) {
	query := `
		UPDATE subcategories
		SET name = $1, color = $2, favorite = $3, category_id = $4
		WHERE id = $5
		RETURNING id, name, color, favorite, category_id
	`
	var s models.Subcategory
	err := pool.QueryRow(ctx, query, sub.Name, sub.Color, sub.Favorite, sub.CategoryID, sub.ID).
		Scan(&s.ID, &s.Name, &s.Color, &s.Favorite, &s.CategoryID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func DeleteSubcategory(ctx context.Context, pool *pgxpool.Pool, id int) error {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM transactions WHERE subcategory_id = $1)
		      + (SELECT COUNT(*) FROM rules WHERE subcategory_id = $1)`, id).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("subcategory in use")
	}

	cmd, err := pool.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("subcategory not found")
	}
	return nil
}
