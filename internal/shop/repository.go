package shop

import (
	"context"
	"time"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
	"github.com/shopspring/decimal"
)

// Repository is the persistence surface the cart and checkout flows need.
// Lookups report absence with the sentinel errors from package database.
type Repository interface {
	GetItemBySlug(ctx context.Context, slug string) (*models.Item, error)

	GetOrCreateOrderItem(ctx context.Context, userID, itemID int64) (*models.OrderItem, bool, error)
	FindOrderItem(ctx context.Context, userID, itemID int64) (*models.OrderItem, error)
	AttachOrderItem(ctx context.Context, orderID, orderItemID int64) error
	DetachOrderItem(ctx context.Context, orderItemID int64) error
	AdjustOrderItemQuantity(ctx context.Context, orderItemID int64, delta int) (int, error)
	DeleteOrderItem(ctx context.Context, orderItemID int64) error
	MarkOrderItemsOrdered(ctx context.Context, orderID int64) error

	FindActiveOrder(ctx context.Context, userID int64) (*models.Order, error)
	CreateOrder(ctx context.Context, userID int64, orderedDate time.Time) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	SetOrderBillingAddress(ctx context.Context, orderID, billingAddressID int64) error
	SetOrderCoupon(ctx context.Context, orderID, couponID int64) error
	MarkOrderPaid(ctx context.Context, orderID, paymentID int64) error

	CreateBillingAddress(ctx context.Context, addr models.BillingAddress) (*models.BillingAddress, error)
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	CreatePayment(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Payment, error)
}

// Store is a Repository that can also scope work to a transaction.
type Store interface {
	Repository
	Tx(ctx context.Context, fn func(Repository) error) error
	RetryTx(ctx context.Context, fn func(Repository) error) error
}

type sqlStore struct {
	*store.Store
}

func NewSQLStore(st *store.Store) Store {
	return sqlStore{Store: st}
}

func (s sqlStore) Tx(ctx context.Context, fn func(Repository) error) error {
	return s.Store.Tx(ctx, func(tx *store.Store) error {
		return fn(sqlStore{Store: tx})
	})
}

func (s sqlStore) RetryTx(ctx context.Context, fn func(Repository) error) error {
	return s.Store.RetryTx(ctx, func(tx *store.Store) error {
		return fn(sqlStore{Store: tx})
	})
}
