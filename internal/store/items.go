package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const itemColumns = `id, slug, title, description, price, created_at`

func scanItem(row interface{ Scan(...any) error }, item *models.Item) error {
	return row.Scan(
		&item.ID,
		&item.Slug,
		&item.Title,
		&item.Description,
		&item.Price,
		&item.CreatedAt,
	)
}

func (s *Store) CreateItem(ctx context.Context, slug, title, description string, price decimal.Decimal) (*models.Item, error) {
	item := &models.Item{}

	query := `
		INSERT INTO items (slug, title, description, price, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + itemColumns

	if err := scanItem(s.q.QueryRowContext(ctx, query, slug, title, description, price), item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	return item, nil
}

func (s *Store) GetItemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	item := &models.Item{}

	query := `SELECT ` + itemColumns + ` FROM items WHERE slug = $1`

	if err := scanItem(s.q.QueryRowContext(ctx, query, slug), item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

func (s *Store) ListItems(ctx context.Context, page, pageSize int) (*OffsetPage[models.Item], error) {
	var total int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	if page < 1 {
		page = 1
	}
	// Pages past the end are empty and issue no query.
	result := newOffsetPage[models.Item](nil, total, page, pageSize)
	if page > result.TotalPages {
		return result, nil
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + itemColumns + `
		FROM items
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.q.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(items, total, page, pageSize), nil
}
