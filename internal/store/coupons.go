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

func (s *Store) CreateCoupon(ctx context.Context, code string, amount decimal.Decimal) (*models.Coupon, error) {
	coupon := &models.Coupon{}

	err := s.q.QueryRowContext(ctx,
		`INSERT INTO coupons (code, amount) VALUES ($1, $2) RETURNING id, code, amount`,
		code, amount).Scan(&coupon.ID, &coupon.Code, &coupon.Amount)
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	return coupon, nil
}

// GetCouponByCode matches the code exactly. Codes are not unique, so the
// oldest coupon with the code wins.
func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon := &models.Coupon{}

	err := s.q.QueryRowContext(ctx,
		`SELECT id, code, amount FROM coupons WHERE code = $1 ORDER BY id LIMIT 1`,
		code).Scan(&coupon.ID, &coupon.Code, &coupon.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return coupon, nil
}
