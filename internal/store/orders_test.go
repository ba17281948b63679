package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func TestGetOrCreateOrderItem(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx := context.Background()
	itemID := f.item(t, "shirt", "10.00")

	first, created, err := f.store.GetOrCreateOrderItem(ctx, f.userID, itemID)
	if err != nil {
		t.Fatalf("Get or create order item: %v", err)
	}
	if !created || first.Quantity != 1 || first.OrderID != nil {
		t.Fatalf("Expected new detached line with quantity 1, got created=%v %+v", created, first)
	}

	second, created, err := f.store.GetOrCreateOrderItem(ctx, f.userID, itemID)
	if err != nil {
		t.Fatalf("Get or create order item again: %v", err)
	}
	if created || second.ID != first.ID {
		t.Errorf("Expected existing line %d, got %d (created=%v)", first.ID, second.ID, created)
	}
}

func TestConcurrentGetOrCreateOrderItem(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx := context.Background()
	itemID := f.item(t, "shirt", "10.00")

	concurrency := 10
	var wg sync.WaitGroup
	ids := make(chan int64, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			oi, _, err := f.store.GetOrCreateOrderItem(ctx, f.userID, itemID)
			if err != nil {
				t.Errorf("Get or create order item: %v", err)
				return
			}
			ids <- oi.ID
		}()
	}

	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("Expected one open line, got %d", len(seen))
	}
}

func TestOneActiveOrderPerUser(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx := context.Background()

	concurrency := 10
	var wg sync.WaitGroup
	ids := make(chan int64, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := f.store.Tx(ctx, func(tx *Store) error {
				order, err := tx.CreateOrder(ctx, f.userID, time.Now())
				if err != nil {
					return err
				}
				ids <- order.ID
				return nil
			})
			if err != nil {
				t.Errorf("Create order: %v", err)
			}
		}()
	}

	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("Expected a single active order, got %d", len(seen))
	}
}

func TestActiveOrderLifecycle(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx := context.Background()
	shirtID := f.item(t, "shirt", "10.00")
	hatID := f.item(t, "hat", "5.00")

	if _, err := f.store.FindActiveOrder(ctx, f.userID); !errors.Is(err, database.ErrNoActiveOrder) {
		t.Fatalf("Expected ErrNoActiveOrder, got %v", err)
	}

	order, err := f.store.CreateOrder(ctx, f.userID, time.Now())
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	for _, itemID := range []int64{shirtID, hatID} {
		oi, _, err := f.store.GetOrCreateOrderItem(ctx, f.userID, itemID)
		if err != nil {
			t.Fatalf("Create line: %v", err)
		}
		if err := f.store.AttachOrderItem(ctx, order.ID, oi.ID); err != nil {
			t.Fatalf("Attach line: %v", err)
		}
	}

	shirtLine, err := f.store.FindOrderItem(ctx, f.userID, shirtID)
	if err != nil {
		t.Fatalf("Find shirt line: %v", err)
	}
	quantity, err := f.store.AdjustOrderItemQuantity(ctx, shirtLine.ID, 1)
	if err != nil || quantity != 2 {
		t.Fatalf("Expected quantity 2, got %d (%v)", quantity, err)
	}

	coupon, err := f.store.CreateCoupon(ctx, "SAVE5", decimal.RequireFromString("5.00"))
	if err != nil {
		t.Fatalf("Create coupon: %v", err)
	}
	if err := f.store.SetOrderCoupon(ctx, order.ID, coupon.ID); err != nil {
		t.Fatalf("Set coupon: %v", err)
	}

	active, err := f.store.FindActiveOrder(ctx, f.userID)
	if err != nil {
		t.Fatalf("Find active order: %v", err)
	}
	if len(active.Items) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(active.Items))
	}
	if !active.HasItem(shirtID) || active.Items[0].Item == nil {
		t.Errorf("Expected lines joined with their items")
	}
	if want := decimal.RequireFromString("20.00"); !active.Total().Equal(want) {
		t.Errorf("Expected total %s, got %s", want, active.Total())
	}

	if err := f.store.DetachOrderItem(ctx, shirtLine.ID); err != nil {
		t.Fatalf("Detach line: %v", err)
	}
	active, err = f.store.FindActiveOrder(ctx, f.userID)
	if err != nil {
		t.Fatalf("Find active order: %v", err)
	}
	if active.HasItem(shirtID) {
		t.Errorf("Detached line still listed on the order")
	}

	orphan, err := f.store.FindOrderItem(ctx, f.userID, shirtID)
	if err != nil {
		t.Fatalf("Find orphan line: %v", err)
	}
	if orphan.OrderID != nil || orphan.Quantity != 2 {
		t.Errorf("Expected detached line with quantity 2, got %+v", orphan)
	}

	if err := f.store.DeleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("Delete order: %v", err)
	}
	hatLine, err := f.store.FindOrderItem(ctx, f.userID, hatID)
	if err != nil {
		t.Fatalf("Lines should survive order deletion: %v", err)
	}
	if hatLine.OrderID != nil {
		t.Errorf("Expected hat line to be detached, got order %d", *hatLine.OrderID)
	}

	if err := f.store.DeleteOrderItem(ctx, hatLine.ID); err != nil {
		t.Fatalf("Delete line: %v", err)
	}
	if _, err := f.store.FindOrderItem(ctx, f.userID, hatID); !errors.Is(err, database.ErrOrderItemNotFound) {
		t.Errorf("Expected ErrOrderItemNotFound, got %v", err)
	}
}

// finalize mirrors checkout: pay for the active order inside one
// serializable transaction.
func finalize(ctx context.Context, st *Store, userID int64) error {
	return st.RetryTx(ctx, func(tx *Store) error {
		order, err := tx.FindActiveOrder(ctx, userID)
		if err != nil {
			return err
		}

		payment, err := tx.CreatePayment(ctx, userID, order.Total())
		if err != nil {
			return err
		}

		if err := tx.MarkOrderItemsOrdered(ctx, order.ID); err != nil {
			return err
		}
		return tx.MarkOrderPaid(ctx, order.ID, payment.ID)
	})
}

func openOrderWithItem(t *testing.T, f *fixture, itemID int64) *models.Order {
	t.Helper()
	ctx := context.Background()

	order, err := f.store.CreateOrder(ctx, f.userID, time.Now())
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}
	oi, _, err := f.store.GetOrCreateOrderItem(ctx, f.userID, itemID)
	if err != nil {
		t.Fatalf("Create line: %v", err)
	}
	if err := f.store.AttachOrderItem(ctx, order.ID, oi.ID); err != nil {
		t.Fatalf("Attach line: %v", err)
	}
	return order
}

func TestConcurrentFinalizationPaysOnce(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx := context.Background()
	order := openOrderWithItem(t, f, f.item(t, "shirt", "10.00"))

	concurrency := 10
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- finalize(ctx, f.store, f.userID)
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, database.ErrNoActiveOrder), errors.Is(err, database.ErrOrderAlreadyPaid):
		default:
			t.Logf("Unexpected error: %v", err)
		}
	}

	if successCount != 1 {
		t.Errorf("Expected exactly 1 successful payment, got %d", successCount)
	}

	var payments int
	if err := f.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&payments); err != nil {
		t.Fatalf("Count payments: %v", err)
	}
	if payments != 1 {
		t.Errorf("Expected 1 payment row, got %d", payments)
	}

	paid, err := f.store.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if !paid.Ordered || paid.Payment == nil || !paid.Payment.Amount.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Expected paid order with a 10.00 payment, got %+v", paid)
	}
	for _, line := range paid.Items {
		if !line.Ordered {
			t.Errorf("Line %d not marked ordered", line.ID)
		}
	}
}

func TestMarkOrderPaidTwice(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx := context.Background()
	order := openOrderWithItem(t, f, f.item(t, "shirt", "10.00"))

	payment, err := f.store.CreatePayment(ctx, f.userID, decimal.RequireFromString("10.00"))
	if err != nil {
		t.Fatalf("Create payment: %v", err)
	}
	if err := f.store.MarkOrderPaid(ctx, order.ID, payment.ID); err != nil {
		t.Fatalf("Mark order paid: %v", err)
	}
	if err := f.store.MarkOrderPaid(ctx, order.ID, payment.ID); !errors.Is(err, database.ErrOrderAlreadyPaid) {
		t.Errorf("Expected ErrOrderAlreadyPaid, got %v", err)
	}

	if _, err := f.store.GetOrder(ctx, order.ID+1000); !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}
}

func TestListPaidOrdersCursor(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx := context.Background()
	itemID := f.item(t, "shirt", "10.00")

	for i := 0; i < 3; i++ {
		openOrderWithItem(t, f, itemID)
		if err := finalize(ctx, f.store, f.userID); err != nil {
			t.Fatalf("Finalize order %d: %v", i, err)
		}
	}
	openOrderWithItem(t, f, itemID)

	page, err := f.store.ListPaidOrdersCursor(ctx, f.userID, "", 2)
	if err != nil {
		t.Fatalf("List first page: %v", err)
	}
	if len(page.Items) != 2 || !page.HasMore || page.NextCursor == "" {
		t.Fatalf("Expected 2 orders and a next cursor, got %d (has more %v)", len(page.Items), page.HasMore)
	}
	if page.Items[0].ID < page.Items[1].ID {
		t.Errorf("Expected newest order first")
	}

	rest, err := f.store.ListPaidOrdersCursor(ctx, f.userID, page.NextCursor, 2)
	if err != nil {
		t.Fatalf("List second page: %v", err)
	}
	if len(rest.Items) != 1 || rest.HasMore {
		t.Errorf("Expected 1 remaining order, got %d (has more %v)", len(rest.Items), rest.HasMore)
	}
	for _, o := range append(page.Items, rest.Items...) {
		if !o.Ordered || o.Payment == nil {
			t.Errorf("Order %d listed without payment", o.ID)
		}
	}
}
