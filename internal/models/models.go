package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Item is a catalog entry. Cart operations never modify it.
type Item struct {
	ID          int64           `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Coupon struct {
	ID     int64           `json:"id"`
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

type BillingAddress struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Address   string    `json:"address"`
	Address2  string    `json:"address_2,omitempty"`
	Country   string    `json:"country"`
	Zip       string    `json:"zip"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderItem is one cart line. OrderID is nil while the line is detached
// from any order.
type OrderItem struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	ItemID   int64  `json:"item_id"`
	OrderID  *int64 `json:"order_id,omitempty"`
	Quantity int    `json:"quantity"`
	Ordered  bool   `json:"ordered"`
	Item     *Item  `json:"item,omitempty"`
}

func (oi *OrderItem) TotalPrice() decimal.Decimal {
	if oi.Item == nil {
		return decimal.Zero
	}
	return oi.Item.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

type Order struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	Ordered          bool            `json:"ordered"`
	OrderedDate      time.Time       `json:"ordered_date"`
	BillingAddressID *int64          `json:"billing_address_id,omitempty"`
	CouponID         *int64          `json:"coupon_id,omitempty"`
	PaymentID        *int64          `json:"payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	Items            []OrderItem     `json:"items,omitempty"`
	Coupon           *Coupon         `json:"coupon,omitempty"`
	BillingAddress   *BillingAddress `json:"billing_address,omitempty"`
	Payment          *Payment        `json:"payment,omitempty"`
}

func (o *Order) HasBillingAddress() bool {
	return o.BillingAddressID != nil
}

// HasItem reports whether the order holds a line for the given catalog item.
func (o *Order) HasItem(itemID int64) bool {
	for _, line := range o.Items {
		if line.ItemID == itemID {
			return true
		}
	}
	return false
}

func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].TotalPrice())
	}
	return total
}

// Total is the subtotal minus the flat coupon amount, never below zero.
func (o *Order) Total() decimal.Decimal {
	total := o.Subtotal()
	if o.Coupon != nil {
		total = total.Sub(o.Coupon.Amount)
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

const (
	PaymentOptionDebitCard = "D"
	PaymentOptionPaypal    = "P"
)
