package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

const orderColumns = `id, user_id, ordered, ordered_date, billing_address_id, coupon_id, payment_id, created_at`

func scanOrder(row interface{ Scan(...any) error }, order *models.Order) error {
	var billingID, couponID, paymentID sql.NullInt64
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Ordered,
		&order.OrderedDate,
		&billingID,
		&couponID,
		&paymentID,
		&order.CreatedAt,
	)
	if err != nil {
		return err
	}
	order.BillingAddressID = nullableID(billingID)
	order.CouponID = nullableID(couponID)
	order.PaymentID = nullableID(paymentID)
	return nil
}

// FindActiveOrder returns the user's unordered order with its lines, coupon
// and billing address loaded, or ErrNoActiveOrder. The order row is locked
// for the rest of the surrounding transaction.
func (s *Store) FindActiveOrder(ctx context.Context, userID int64) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND NOT ordered
		FOR UPDATE`

	if err := scanOrder(s.q.QueryRowContext(ctx, query, userID), order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrNoActiveOrder
		}
		return nil, fmt.Errorf("find active order: %w", err)
	}

	if err := s.loadOrderRelations(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// CreateOrder opens a new active order for the user. If a concurrent request
// already opened one, that order is returned instead.
func (s *Store) CreateOrder(ctx context.Context, userID int64, orderedDate time.Time) (*models.Order, error) {
	order := &models.Order{}

	query := `
		INSERT INTO orders (user_id, ordered, ordered_date, created_at)
		VALUES ($1, FALSE, $2, NOW())
		ON CONFLICT (user_id) WHERE NOT ordered DO NOTHING
		RETURNING ` + orderColumns

	err := scanOrder(s.q.QueryRowContext(ctx, query, userID, orderedDate), order)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return s.FindActiveOrder(ctx, userID)
}

// DeleteOrder removes an unordered order. Its lines stay behind detached.
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	return s.execOne(ctx, "delete order", database.ErrNoActiveOrder,
		`DELETE FROM orders WHERE id = $1 AND NOT ordered`,
		orderID)
}

func (s *Store) SetOrderBillingAddress(ctx context.Context, orderID, billingAddressID int64) error {
	return s.execOne(ctx, "set order billing address", database.ErrNoActiveOrder,
		`UPDATE orders SET billing_address_id = $1 WHERE id = $2 AND NOT ordered`,
		billingAddressID, orderID)
}

func (s *Store) SetOrderCoupon(ctx context.Context, orderID, couponID int64) error {
	return s.execOne(ctx, "set order coupon", database.ErrNoActiveOrder,
		`UPDATE orders SET coupon_id = $1 WHERE id = $2 AND NOT ordered`,
		couponID, orderID)
}

// MarkOrderPaid flips the order to ordered and links the payment. It fails
// with ErrOrderAlreadyPaid when the order was finalized concurrently.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID, paymentID int64) error {
	return s.execOne(ctx, "mark order paid", database.ErrOrderAlreadyPaid,
		`UPDATE orders SET ordered = TRUE, payment_id = $1 WHERE id = $2 AND NOT ordered`,
		paymentID, orderID)
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	if err := scanOrder(s.q.QueryRowContext(ctx, query, id), order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := s.loadOrderRelations(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// ListPaidOrdersCursor pages through the user's finalized orders, newest
// first.
func (s *Store) ListPaidOrdersCursor(ctx context.Context, userID int64, cursor string, limit int) (*CursorPage[models.Order], error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND ordered
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := s.q.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	for i := range orders {
		if err := s.loadOrderRelations(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage[models.Order]{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (s *Store) loadOrderRelations(ctx context.Context, order *models.Order) error {
	lines, err := s.listOrderLines(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Items = lines

	if order.CouponID != nil {
		coupon := &models.Coupon{}
		err := s.q.QueryRowContext(ctx,
			`SELECT id, code, amount FROM coupons WHERE id = $1`,
			*order.CouponID).Scan(&coupon.ID, &coupon.Code, &coupon.Amount)
		if err != nil {
			return fmt.Errorf("get order coupon: %w", err)
		}
		order.Coupon = coupon
	}

	if order.BillingAddressID != nil {
		addr := &models.BillingAddress{}
		err := s.q.QueryRowContext(ctx,
			`SELECT id, user_id, address, address_2, country, zip, created_at
			 FROM billing_addresses WHERE id = $1`,
			*order.BillingAddressID).Scan(
			&addr.ID,
			&addr.UserID,
			&addr.Address,
			&addr.Address2,
			&addr.Country,
			&addr.Zip,
			&addr.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("get order billing address: %w", err)
		}
		order.BillingAddress = addr
	}

	if order.PaymentID != nil {
		payment, err := s.GetPayment(ctx, *order.PaymentID)
		if err != nil {
			return err
		}
		order.Payment = payment
	}

	return nil
}

func (s *Store) listOrderLines(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.user_id, oi.item_id, oi.order_id, oi.quantity, oi.ordered,
		       i.id, i.slug, i.title, i.description, i.price, i.created_at
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := s.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderItem
	for rows.Next() {
		var (
			line     models.OrderItem
			item     models.Item
			parentID sql.NullInt64
		)
		err := rows.Scan(
			&line.ID,
			&line.UserID,
			&line.ItemID,
			&parentID,
			&line.Quantity,
			&line.Ordered,
			&item.ID,
			&item.Slug,
			&item.Title,
			&item.Description,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		line.OrderID = nullableID(parentID)
		line.Item = &item
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}
