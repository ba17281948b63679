package shop

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type memoryState struct {
	nextID     int64
	items      map[int64]models.Item
	orderItems map[int64]models.OrderItem
	orders     map[int64]models.Order
	coupons    map[int64]models.Coupon
	billing    map[int64]models.BillingAddress
	payments   map[int64]models.Payment
}

func (st memoryState) clone() memoryState {
	return memoryState{
		nextID:     st.nextID,
		items:      maps.Clone(st.items),
		orderItems: maps.Clone(st.orderItems),
		orders:     maps.Clone(st.orders),
		coupons:    maps.Clone(st.coupons),
		billing:    maps.Clone(st.billing),
		payments:   maps.Clone(st.payments),
	}
}

// memoryStore is an in-memory Store mirroring the SQL store's semantics,
// including rollback of a failed transaction.
type memoryStore struct {
	st memoryState
}

func newMemoryStore() *memoryStore {
	return &memoryStore{st: memoryState{
		items:      map[int64]models.Item{},
		orderItems: map[int64]models.OrderItem{},
		orders:     map[int64]models.Order{},
		coupons:    map[int64]models.Coupon{},
		billing:    map[int64]models.BillingAddress{},
		payments:   map[int64]models.Payment{},
	}}
}

func (m *memoryStore) id() int64 {
	m.st.nextID++
	return m.st.nextID
}

func (m *memoryStore) Tx(ctx context.Context, fn func(Repository) error) error {
	snapshot := m.st.clone()
	if err := fn(m); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (m *memoryStore) RetryTx(ctx context.Context, fn func(Repository) error) error {
	return m.Tx(ctx, fn)
}

func (m *memoryStore) addItem(slug, price string) models.Item {
	item := models.Item{ID: m.id(), Slug: slug, Title: slug, Price: decimal.RequireFromString(price)}
	m.st.items[item.ID] = item
	return item
}

func (m *memoryStore) addCoupon(code, amount string) models.Coupon {
	c := models.Coupon{ID: m.id(), Code: code, Amount: decimal.RequireFromString(amount)}
	m.st.coupons[c.ID] = c
	return c
}

func (m *memoryStore) activeOrders(userID int64) []models.Order {
	var out []models.Order
	for _, o := range m.st.orders {
		if o.UserID == userID && !o.Ordered {
			out = append(out, o)
		}
	}
	return out
}

func (m *memoryStore) GetItemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	for _, item := range m.st.items {
		if item.Slug == slug {
			return &item, nil
		}
	}
	return nil, database.ErrItemNotFound
}

func (m *memoryStore) GetOrCreateOrderItem(ctx context.Context, userID, itemID int64) (*models.OrderItem, bool, error) {
	if oi, err := m.FindOrderItem(ctx, userID, itemID); err == nil {
		return oi, false, nil
	}
	oi := models.OrderItem{ID: m.id(), UserID: userID, ItemID: itemID, Quantity: 1}
	m.st.orderItems[oi.ID] = oi
	return &oi, true, nil
}

func (m *memoryStore) FindOrderItem(ctx context.Context, userID, itemID int64) (*models.OrderItem, error) {
	var ids []int64
	for id, oi := range m.st.orderItems {
		if oi.UserID == userID && oi.ItemID == itemID && !oi.Ordered {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, database.ErrOrderItemNotFound
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	oi := m.st.orderItems[ids[0]]
	return &oi, nil
}

func (m *memoryStore) updateOrderItem(id int64, fn func(*models.OrderItem)) error {
	oi, ok := m.st.orderItems[id]
	if !ok || oi.Ordered {
		return database.ErrOrderItemNotFound
	}
	fn(&oi)
	m.st.orderItems[id] = oi
	return nil
}

func (m *memoryStore) AttachOrderItem(ctx context.Context, orderID, orderItemID int64) error {
	return m.updateOrderItem(orderItemID, func(oi *models.OrderItem) { oi.OrderID = &orderID })
}

func (m *memoryStore) DetachOrderItem(ctx context.Context, orderItemID int64) error {
	return m.updateOrderItem(orderItemID, func(oi *models.OrderItem) { oi.OrderID = nil })
}

func (m *memoryStore) AdjustOrderItemQuantity(ctx context.Context, orderItemID int64, delta int) (int, error) {
	var quantity int
	err := m.updateOrderItem(orderItemID, func(oi *models.OrderItem) {
		oi.Quantity += delta
		quantity = oi.Quantity
	})
	return quantity, err
}

func (m *memoryStore) DeleteOrderItem(ctx context.Context, orderItemID int64) error {
	if _, ok := m.st.orderItems[orderItemID]; !ok {
		return database.ErrOrderItemNotFound
	}
	delete(m.st.orderItems, orderItemID)
	return nil
}

func (m *memoryStore) MarkOrderItemsOrdered(ctx context.Context, orderID int64) error {
	for id, oi := range m.st.orderItems {
		if oi.OrderID != nil && *oi.OrderID == orderID {
			oi.Ordered = true
			m.st.orderItems[id] = oi
		}
	}
	return nil
}

func (m *memoryStore) load(order models.Order) *models.Order {
	order.Items = nil
	var ids []int64
	for id, oi := range m.st.orderItems {
		if oi.OrderID != nil && *oi.OrderID == order.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		oi := m.st.orderItems[id]
		item := m.st.items[oi.ItemID]
		oi.Item = &item
		order.Items = append(order.Items, oi)
	}

	order.Coupon = nil
	if order.CouponID != nil {
		c := m.st.coupons[*order.CouponID]
		order.Coupon = &c
	}
	order.BillingAddress = nil
	if order.BillingAddressID != nil {
		b := m.st.billing[*order.BillingAddressID]
		order.BillingAddress = &b
	}
	return &order
}

func (m *memoryStore) FindActiveOrder(ctx context.Context, userID int64) (*models.Order, error) {
	active := m.activeOrders(userID)
	if len(active) == 0 {
		return nil, database.ErrNoActiveOrder
	}
	return m.load(active[0]), nil
}

func (m *memoryStore) CreateOrder(ctx context.Context, userID int64, orderedDate time.Time) (*models.Order, error) {
	if len(m.activeOrders(userID)) > 0 {
		return m.FindActiveOrder(ctx, userID)
	}
	o := models.Order{ID: m.id(), UserID: userID, OrderedDate: orderedDate, CreatedAt: orderedDate}
	m.st.orders[o.ID] = o
	return m.load(o), nil
}

func (m *memoryStore) DeleteOrder(ctx context.Context, orderID int64) error {
	o, ok := m.st.orders[orderID]
	if !ok || o.Ordered {
		return database.ErrNoActiveOrder
	}
	delete(m.st.orders, orderID)
	for id, oi := range m.st.orderItems {
		if oi.OrderID != nil && *oi.OrderID == orderID {
			oi.OrderID = nil
			m.st.orderItems[id] = oi
		}
	}
	return nil
}

func (m *memoryStore) updateOrder(orderID int64, notFound error, fn func(*models.Order)) error {
	o, ok := m.st.orders[orderID]
	if !ok || o.Ordered {
		return notFound
	}
	fn(&o)
	m.st.orders[orderID] = o
	return nil
}

func (m *memoryStore) SetOrderBillingAddress(ctx context.Context, orderID, billingAddressID int64) error {
	return m.updateOrder(orderID, database.ErrNoActiveOrder, func(o *models.Order) { o.BillingAddressID = &billingAddressID })
}

func (m *memoryStore) SetOrderCoupon(ctx context.Context, orderID, couponID int64) error {
	return m.updateOrder(orderID, database.ErrNoActiveOrder, func(o *models.Order) { o.CouponID = &couponID })
}

func (m *memoryStore) MarkOrderPaid(ctx context.Context, orderID, paymentID int64) error {
	return m.updateOrder(orderID, database.ErrOrderAlreadyPaid, func(o *models.Order) {
		o.Ordered = true
		o.PaymentID = &paymentID
	})
}

func (m *memoryStore) CreateBillingAddress(ctx context.Context, addr models.BillingAddress) (*models.BillingAddress, error) {
	addr.ID = m.id()
	m.st.billing[addr.ID] = addr
	return &addr, nil
}

func (m *memoryStore) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var found *models.Coupon
	for _, c := range m.st.coupons {
		if c.Code == code && (found == nil || c.ID < found.ID) {
			c := c
			found = &c
		}
	}
	if found == nil {
		return nil, database.ErrCouponNotFound
	}
	return found, nil
}

func (m *memoryStore) CreatePayment(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Payment, error) {
	p := models.Payment{ID: m.id(), UserID: userID, Amount: amount}
	m.st.payments[p.ID] = p
	return &p, nil
}
