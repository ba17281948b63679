package shop

import (
	"context"
	"fmt"
	"net/url"

	"github.com/safar/storefront/internal/forms"
	"github.com/safar/storefront/internal/models"
)

const (
	msgCheckoutFailed       = "Checkout failed"
	msgInvalidPaymentOption = "Invalid payment option selected"
)

// CheckoutOrder returns the active order for the billing page. Without one
// the user is sent home.
func (s *Service) CheckoutOrder(ctx context.Context, req Request) (*models.Order, Redirect, error) {
	order, err := activeOrder(ctx, s.store, req.UserID)
	if err != nil {
		return nil, Redirect{}, fmt.Errorf("checkout: %w", err)
	}
	if order == nil {
		req.Messages.Info(msgNoOrder)
		return nil, redirectTo(RouteHome), nil
	}
	return order, Redirect{}, nil
}

type billingOutcome int

const (
	billingNoOrder billingOutcome = iota
	billingInvalid
	billingSaved
)

// SubmitBilling validates the checkout form, stores a new billing address on
// the active order and routes to the confirmation step of the chosen
// payment method.
func (s *Service) SubmitBilling(ctx context.Context, req Request, values url.Values) (Redirect, error) {
	form := forms.ValidateCheckout(values)

	var outcome billingOutcome
	err := s.store.Tx(ctx, func(repo Repository) error {
		outcome = billingNoOrder

		order, err := activeOrder(ctx, repo, req.UserID)
		if err != nil || order == nil {
			return err
		}

		if !form.Valid() {
			outcome = billingInvalid
			return nil
		}

		addr, err := repo.CreateBillingAddress(ctx, models.BillingAddress{
			UserID:   req.UserID,
			Address:  form.Value.Address,
			Address2: form.Value.Address2,
			Country:  form.Value.Country,
			Zip:      form.Value.Zip,
		})
		if err != nil {
			return err
		}

		outcome = billingSaved
		return repo.SetOrderBillingAddress(ctx, order.ID, addr.ID)
	})
	if err != nil {
		return Redirect{}, fmt.Errorf("submit billing: %w", err)
	}

	switch outcome {
	case billingNoOrder:
		req.Messages.Error(msgNoActiveOrder)
		return redirectTo(RouteOrderSummary), nil
	case billingInvalid:
		req.Messages.Warning(msgCheckoutFailed)
		for _, fe := range form.Errors {
			req.Messages.Warning(fe.String())
		}
		return redirectTo(RouteCheckout), nil
	}

	switch form.Value.PaymentOption {
	case models.PaymentOptionDebitCard:
		return Redirect{Route: RoutePayment, Arg: PaymentPathDebitCard}, nil
	case models.PaymentOptionPaypal:
		return Redirect{Route: RoutePayment, Arg: PaymentPathPaypal}, nil
	default:
		req.Messages.Warning(msgInvalidPaymentOption)
		return redirectTo(RouteCheckout), nil
	}
}
