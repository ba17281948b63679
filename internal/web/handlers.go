package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/shop"
	"github.com/safar/storefront/internal/store"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.renderError(w, r, http.StatusNotFound)
			return
		}
		page = n
	}

	items, err := s.catalog.ListItems(r.Context(), page, s.pageSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if page > 1 && page > items.TotalPages {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	s.page(w, r, "home", items)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	item, err := s.catalog.GetItemBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, "product", item)
}

func (s *Server) handleOrderSummary(w http.ResponseWriter, r *http.Request) {
	req := shopRequest(r)

	order, to, err := s.shop.OrderSummary(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !to.IsZero() {
		s.redirect(w, r, req, to)
		return
	}

	s.page(w, r, "order_summary", order)
}

type checkoutPage struct {
	Order *models.Order
}

func (s *Server) handleCheckoutForm(w http.ResponseWriter, r *http.Request) {
	req := shopRequest(r)

	order, to, err := s.shop.CheckoutOrder(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !to.IsZero() {
		s.redirect(w, r, req, to)
		return
	}

	s.page(w, r, "checkout", checkoutPage{Order: order})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}
	req := shopRequest(r)

	to, err := s.shop.SubmitBilling(r.Context(), req, r.PostForm)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirect(w, r, req, to)
}

var paymentMethods = map[string]string{
	shop.PaymentPathDebitCard: "debit card",
	shop.PaymentPathPaypal:    "PayPal",
}

type paymentPage struct {
	Order  *models.Order
	Option string
	Method string
}

func (s *Server) handlePaymentForm(w http.ResponseWriter, r *http.Request) {
	option := chi.URLParam(r, "paymentOption")
	method, ok := paymentMethods[option]
	if !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}
	req := shopRequest(r)

	order, to, err := s.shop.PaymentOrder(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !to.IsZero() {
		s.redirect(w, r, req, to)
		return
	}

	s.page(w, r, "payment", paymentPage{Order: order, Option: option, Method: method})
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := paymentMethods[chi.URLParam(r, "paymentOption")]; !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}
	req := shopRequest(r)

	to, err := s.shop.FinalizePayment(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirect(w, r, req, to)
}

func (s *Server) handleAddCoupon(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}
	req := shopRequest(r)

	to, err := s.shop.AddCoupon(r.Context(), req, r.PostForm)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirect(w, r, req, to)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	req := shopRequest(r)
	to, err := s.shop.AddToCart(r.Context(), req, chi.URLParam(r, "slug"))
	s.finishCart(w, r, req, to, err)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	req := shopRequest(r)
	to, err := s.shop.RemoveFromCart(r.Context(), req, chi.URLParam(r, "slug"))
	s.finishCart(w, r, req, to, err)
}

func (s *Server) handleRemoveSingleItem(w http.ResponseWriter, r *http.Request) {
	req := shopRequest(r)
	to, err := s.shop.RemoveSingleItem(r.Context(), req, chi.URLParam(r, "slug"))
	s.finishCart(w, r, req, to, err)
}

func (s *Server) finishCart(w http.ResponseWriter, r *http.Request, req shop.Request, to shop.Redirect, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.redirect(w, r, req, to)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	if _, err := store.DecodeCursor(cursor); err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}

	user := auth.UserFrom(r.Context())
	orders, err := s.catalog.ListPaidOrdersCursor(r.Context(), user.ID, cursor, orderHistoryPageSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, "orders", orders)
}

// handleOrderDetail shows one of the user's paid orders. Other users'
// orders and the open cart are reported as missing.
func (s *Server) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	order, err := s.catalog.GetOrder(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	user := auth.UserFrom(r.Context())
	if order.UserID != user.ID || !order.Ordered {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	s.page(w, r, "order_detail", order)
}
