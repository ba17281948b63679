package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

const (
	msgItemAdded       = "This item was added to your cart."
	msgQuantityUpdated = "This item quantity was updated."
	msgItemRemoved     = "This item was removed from your cart."
	msgItemNotInCart   = "This item was not in your cart."
	msgNoActiveOrder   = "You do not have any active order"
	msgNoOrder         = "You do not have an active order"
)

// AddToCart puts one unit of the item into the user's active order, opening
// the order if needed. A repeat add increments the existing line.
func (s *Service) AddToCart(ctx context.Context, req Request, slug string) (Redirect, error) {
	item, err := s.store.GetItemBySlug(ctx, slug)
	if err != nil {
		return Redirect{}, err
	}

	var updated bool
	err = s.store.Tx(ctx, func(repo Repository) error {
		updated = false

		line, _, err := repo.GetOrCreateOrderItem(ctx, req.UserID, item.ID)
		if err != nil {
			return err
		}

		order, err := repo.FindActiveOrder(ctx, req.UserID)
		if errors.Is(err, database.ErrNoActiveOrder) {
			order, err = repo.CreateOrder(ctx, req.UserID, s.now())
			if err != nil {
				return err
			}
			return repo.AttachOrderItem(ctx, order.ID, line.ID)
		}
		if err != nil {
			return err
		}

		if order.HasItem(item.ID) {
			updated = true
			_, err := repo.AdjustOrderItemQuantity(ctx, line.ID, 1)
			return err
		}
		return repo.AttachOrderItem(ctx, order.ID, line.ID)
	})
	if err != nil {
		return Redirect{}, fmt.Errorf("add to cart: %w", err)
	}

	if updated {
		req.Messages.Info(msgQuantityUpdated)
	} else {
		req.Messages.Info(msgItemAdded)
	}
	s.log.Debug().Int64("user_id", req.UserID).Str("slug", slug).Bool("updated", updated).Msg("item added to cart")

	return redirectTo(RouteOrderSummary), nil
}

type removal int

const (
	removalNoOrder removal = iota
	removalDone
	removalAbsent
)

// RemoveFromCart drops the item's line entirely. When the item is not in
// the cart the whole active order is deleted.
func (s *Service) RemoveFromCart(ctx context.Context, req Request, slug string) (Redirect, error) {
	item, err := s.store.GetItemBySlug(ctx, slug)
	if err != nil {
		return Redirect{}, err
	}

	var outcome removal
	err = s.store.Tx(ctx, func(repo Repository) error {
		outcome = removalNoOrder

		order, err := activeOrder(ctx, repo, req.UserID)
		if err != nil || order == nil {
			return err
		}

		if !order.HasItem(item.ID) {
			outcome = removalAbsent
			return repo.DeleteOrder(ctx, order.ID)
		}

		line, err := repo.FindOrderItem(ctx, req.UserID, item.ID)
		if err != nil {
			return err
		}
		outcome = removalDone
		return repo.DeleteOrderItem(ctx, line.ID)
	})
	if err != nil {
		return Redirect{}, fmt.Errorf("remove from cart: %w", err)
	}

	switch outcome {
	case removalDone:
		req.Messages.Info(msgItemRemoved)
		return redirectTo(RouteOrderSummary), nil
	case removalAbsent:
		s.log.Info().Int64("user_id", req.UserID).Str("slug", slug).Msg("active order deleted on removal of absent item")
		req.Messages.Info(msgItemNotInCart)
	default:
		req.Messages.Info(msgNoActiveOrder)
	}
	return Redirect{Route: RouteProduct, Arg: slug}, nil
}

// RemoveSingleItem decrements the item's quantity, detaching the line when
// it reaches zero.
func (s *Service) RemoveSingleItem(ctx context.Context, req Request, slug string) (Redirect, error) {
	item, err := s.store.GetItemBySlug(ctx, slug)
	if err != nil {
		return Redirect{}, err
	}

	var outcome removal
	err = s.store.Tx(ctx, func(repo Repository) error {
		outcome = removalNoOrder

		order, err := activeOrder(ctx, repo, req.UserID)
		if err != nil || order == nil {
			return err
		}

		if !order.HasItem(item.ID) {
			outcome = removalAbsent
			return nil
		}

		line, err := repo.FindOrderItem(ctx, req.UserID, item.ID)
		if err != nil {
			return err
		}
		outcome = removalDone

		if line.Quantity > 1 {
			_, err := repo.AdjustOrderItemQuantity(ctx, line.ID, -1)
			return err
		}
		return repo.DetachOrderItem(ctx, line.ID)
	})
	if err != nil {
		return Redirect{}, fmt.Errorf("remove single item: %w", err)
	}

	switch outcome {
	case removalDone:
		req.Messages.Info(msgQuantityUpdated)
	case removalAbsent:
		req.Messages.Info(msgItemNotInCart)
	default:
		req.Messages.Info(msgNoActiveOrder)
	}
	return redirectTo(RouteOrderSummary), nil
}

// OrderSummary returns the active order to render, or a redirect home when
// there is none.
func (s *Service) OrderSummary(ctx context.Context, req Request) (*models.Order, Redirect, error) {
	order, err := activeOrder(ctx, s.store, req.UserID)
	if err != nil {
		return nil, Redirect{}, fmt.Errorf("order summary: %w", err)
	}
	if order == nil {
		req.Messages.Error(msgNoActiveOrder)
		return nil, redirectTo(RouteHome), nil
	}
	return order, Redirect{}, nil
}

// activeOrder maps ErrNoActiveOrder to a nil order.
func activeOrder(ctx context.Context, repo Repository, userID int64) (*models.Order, error) {
	order, err := repo.FindActiveOrder(ctx, userID)
	if errors.Is(err, database.ErrNoActiveOrder) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}
