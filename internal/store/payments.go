package store

import (
	"context"
	"fmt"

	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func (s *Store) CreatePayment(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Payment, error) {
	payment := &models.Payment{}

	err := s.q.QueryRowContext(ctx,
		`INSERT INTO payments (user_id, amount, created_at)
		 VALUES ($1, $2, NOW())
		 RETURNING id, user_id, amount, created_at`,
		userID, amount).Scan(&payment.ID, &payment.UserID, &payment.Amount, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return payment, nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment := &models.Payment{}

	err := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, amount, created_at FROM payments WHERE id = $1`,
		id).Scan(&payment.ID, &payment.UserID, &payment.Amount, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return payment, nil
}
