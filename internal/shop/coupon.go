package shop

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/forms"
)

const (
	msgInvalidCoupon = "Please enter a valid coupon code"
	msgCouponMissing = "This coupon does not exist"
	msgCouponAdded   = "Successfully added coupon"
)

// AddCoupon attaches the coupon with the submitted code to the active order.
// Every outcome returns to checkout.
func (s *Service) AddCoupon(ctx context.Context, req Request, values url.Values) (Redirect, error) {
	form := forms.ValidateCoupon(values)
	if !form.Valid() {
		req.Messages.Warning(msgInvalidCoupon)
		return redirectTo(RouteCheckout), nil
	}

	coupon, err := s.store.GetCouponByCode(ctx, form.Value.Code)
	if errors.Is(err, database.ErrCouponNotFound) {
		req.Messages.Info(msgCouponMissing)
		return redirectTo(RouteCheckout), nil
	}
	if err != nil {
		return Redirect{}, fmt.Errorf("add coupon: %w", err)
	}

	var attached bool
	err = s.store.Tx(ctx, func(repo Repository) error {
		attached = false

		order, err := activeOrder(ctx, repo, req.UserID)
		if err != nil || order == nil {
			return err
		}

		attached = true
		return repo.SetOrderCoupon(ctx, order.ID, coupon.ID)
	})
	if err != nil {
		return Redirect{}, fmt.Errorf("add coupon: %w", err)
	}

	if !attached {
		req.Messages.Info(msgNoOrder)
		return redirectTo(RouteCheckout), nil
	}

	req.Messages.Success(msgCouponAdded)
	return redirectTo(RouteCheckout), nil
}
