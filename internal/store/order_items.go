package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

const orderItemColumns = `id, user_id, item_id, order_id, quantity, ordered`

func scanOrderItem(row interface{ Scan(...any) error }, oi *models.OrderItem) error {
	var orderID sql.NullInt64
	err := row.Scan(
		&oi.ID,
		&oi.UserID,
		&oi.ItemID,
		&orderID,
		&oi.Quantity,
		&oi.Ordered,
	)
	if err != nil {
		return err
	}
	oi.OrderID = nullableID(orderID)
	return nil
}

// GetOrCreateOrderItem returns the open line for (user, item), creating it
// with quantity 1 when none exists. The bool reports whether it was created.
func (s *Store) GetOrCreateOrderItem(ctx context.Context, userID, itemID int64) (*models.OrderItem, bool, error) {
	oi := &models.OrderItem{}

	insert := `
		INSERT INTO order_items (user_id, item_id, quantity, ordered)
		VALUES ($1, $2, 1, FALSE)
		ON CONFLICT (user_id, item_id) WHERE NOT ordered DO NOTHING
		RETURNING ` + orderItemColumns

	err := scanOrderItem(s.q.QueryRowContext(ctx, insert, userID, itemID), oi)
	if err == nil {
		return oi, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create order item: %w", err)
	}

	oi, err = s.FindOrderItem(ctx, userID, itemID)
	if err != nil {
		return nil, false, err
	}
	return oi, false, nil
}

// FindOrderItem returns the first open line for (user, item).
func (s *Store) FindOrderItem(ctx context.Context, userID, itemID int64) (*models.OrderItem, error) {
	oi := &models.OrderItem{}

	query := `
		SELECT ` + orderItemColumns + `
		FROM order_items
		WHERE user_id = $1 AND item_id = $2 AND NOT ordered
		ORDER BY id
		LIMIT 1`

	if err := scanOrderItem(s.q.QueryRowContext(ctx, query, userID, itemID), oi); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("find order item: %w", err)
	}

	return oi, nil
}

func (s *Store) AttachOrderItem(ctx context.Context, orderID, orderItemID int64) error {
	return s.execOne(ctx, "attach order item", database.ErrOrderItemNotFound,
		`UPDATE order_items SET order_id = $1 WHERE id = $2 AND NOT ordered`,
		orderID, orderItemID)
}

// DetachOrderItem removes the line from its order but keeps the row.
func (s *Store) DetachOrderItem(ctx context.Context, orderItemID int64) error {
	return s.execOne(ctx, "detach order item", database.ErrOrderItemNotFound,
		`UPDATE order_items SET order_id = NULL WHERE id = $1 AND NOT ordered`,
		orderItemID)
}

// AdjustOrderItemQuantity adds delta to the line quantity and returns the
// new value.
func (s *Store) AdjustOrderItemQuantity(ctx context.Context, orderItemID int64, delta int) (int, error) {
	var quantity int

	err := s.q.QueryRowContext(ctx,
		`UPDATE order_items
		 SET quantity = quantity + $1
		 WHERE id = $2 AND NOT ordered
		 RETURNING quantity`,
		delta, orderItemID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrOrderItemNotFound
		}
		return 0, fmt.Errorf("adjust order item quantity: %w", err)
	}

	return quantity, nil
}

func (s *Store) DeleteOrderItem(ctx context.Context, orderItemID int64) error {
	return s.execOne(ctx, "delete order item", database.ErrOrderItemNotFound,
		`DELETE FROM order_items WHERE id = $1 AND NOT ordered`,
		orderItemID)
}

func (s *Store) MarkOrderItemsOrdered(ctx context.Context, orderID int64) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE order_items SET ordered = TRUE WHERE order_id = $1`,
		orderID)
	if err != nil {
		return fmt.Errorf("mark order items ordered: %w", err)
	}
	return nil
}

func (s *Store) execOne(ctx context.Context, op string, notFound error, query string, args ...any) error {
	result, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
