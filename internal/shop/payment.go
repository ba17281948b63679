package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

const (
	msgNoBillingAddress = "You have not added a billing address"
	msgOrderSuccessful  = "Your order was successful"
	msgAlreadyPaid      = "This order has already been paid"
)

// PaymentOrder returns the active order for the payment page. The order
// must already carry a billing address.
func (s *Service) PaymentOrder(ctx context.Context, req Request) (*models.Order, Redirect, error) {
	order, err := activeOrder(ctx, s.store, req.UserID)
	if err != nil {
		return nil, Redirect{}, fmt.Errorf("payment: %w", err)
	}
	if order == nil || !order.HasBillingAddress() {
		req.Messages.Warning(msgNoBillingAddress)
		return nil, redirectTo(RouteCheckout), nil
	}
	return order, Redirect{}, nil
}

type finalizeOutcome int

const (
	finalizeNoOrder finalizeOutcome = iota
	finalizeNoBilling
	finalizePaid
)

// FinalizePayment records a payment for the order total and flips the order
// and its lines to ordered in one serializable transaction. A second
// submission for the same order is rejected.
func (s *Service) FinalizePayment(ctx context.Context, req Request) (Redirect, error) {
	var (
		outcome finalizeOutcome
		order   *models.Order
		payment *models.Payment
	)
	err := s.store.RetryTx(ctx, func(repo Repository) error {
		outcome = finalizeNoOrder

		var err error
		order, err = activeOrder(ctx, repo, req.UserID)
		if err != nil || order == nil {
			return err
		}
		if !order.HasBillingAddress() {
			outcome = finalizeNoBilling
			return nil
		}

		payment, err = repo.CreatePayment(ctx, req.UserID, order.Total())
		if err != nil {
			return err
		}
		if err := repo.MarkOrderItemsOrdered(ctx, order.ID); err != nil {
			return err
		}
		if err := repo.MarkOrderPaid(ctx, order.ID, payment.ID); err != nil {
			return err
		}

		outcome = finalizePaid
		return nil
	})
	if errors.Is(err, database.ErrOrderAlreadyPaid) {
		req.Messages.Warning(msgAlreadyPaid)
		return redirectTo(RouteHome), nil
	}
	if err != nil {
		return Redirect{}, fmt.Errorf("finalize payment: %w", err)
	}

	switch outcome {
	case finalizeNoOrder:
		req.Messages.Warning(msgNoOrder)
		return redirectTo(RouteHome), nil
	case finalizeNoBilling:
		req.Messages.Warning(msgNoBillingAddress)
		return redirectTo(RouteCheckout), nil
	}

	s.log.Info().
		Int64("user_id", req.UserID).
		Int64("order_id", order.ID).
		Int64("payment_id", payment.ID).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("order paid")

	req.Messages.Success(msgOrderSuccessful)
	return redirectTo(RouteHome), nil
}
