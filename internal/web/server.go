// Package web is the storefront's HTTP surface: routing, middleware and the
// HTML handlers wrapping the shop service.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/flash"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/shop"
	"github.com/safar/storefront/internal/store"
)

// Catalog is the read side the pages need beyond the shop service.
type Catalog interface {
	GetItemBySlug(ctx context.Context, slug string) (*models.Item, error)
	ListItems(ctx context.Context, page, pageSize int) (*store.OffsetPage[models.Item], error)
	ListPaidOrdersCursor(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage[models.Order], error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	Ping(ctx context.Context) error
}

const orderHistoryPageSize = 10

type Server struct {
	shop     *shop.Service
	catalog  Catalog
	auth     *auth.Authenticator
	render   *Renderer
	log      zerolog.Logger
	pageSize int
}

func NewServer(svc *shop.Service, catalog Catalog, authn *auth.Authenticator, render *Renderer, logger zerolog.Logger, pageSize int) *Server {
	return &Server{
		shop:     svc,
		catalog:  catalog,
		auth:     authn,
		render:   render,
		log:      logger,
		pageSize: pageSize,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recoverer(s.log))
	r.Use(s.auth.Middleware)
	r.Use(Logger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Get("/", s.handleHome)
	r.Get("/product/{slug}", s.handleProduct)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Get("/signup", s.handleSignupForm)
		r.Post("/signup", s.handleSignup)
		r.Post("/logout", s.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/order-summary", s.handleOrderSummary)
		r.Get("/checkout", s.handleCheckoutForm)
		r.Post("/checkout", s.handleCheckout)
		r.Get("/payment/{paymentOption}/", s.handlePaymentForm)
		r.Post("/payment/{paymentOption}/", s.handlePayment)
		r.Post("/add-coupon/", s.handleAddCoupon)
		r.Get("/add-to-cart/{slug}", s.handleAddToCart)
		r.Get("/remove-from-cart/{slug}/", s.handleRemoveFromCart)
		r.Get("/remove-item-from-cart/{slug}/", s.handleRemoveSingleItem)
		r.Get("/orders", s.handleOrders)
		r.Get("/orders/{orderID}", s.handleOrderDetail)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound)
	})

	return r
}

// shopRequest builds the shop context for an authenticated request.
func shopRequest(r *http.Request) shop.Request {
	req := shop.Request{Messages: &flash.Messages{}}
	if user := auth.UserFrom(r.Context()); user != nil {
		req.UserID = user.ID
	}
	return req
}

// redirect persists the request's messages and sends the user on.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, req shop.Request, to shop.Redirect) {
	if msg, ok := req.Messages.Last(); ok {
		s.log.Debug().
			Str("request_id", requestIDFrom(r.Context())).
			Str("location", to.Path()).
			Str("level", string(msg.Level)).
			Str("message", msg.Text).
			Msg("redirect with message")
	}
	flash.Save(w, req.Messages)
	http.Redirect(w, r, to.Path(), http.StatusFound)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, database.ErrItemNotFound) || errors.Is(err, database.ErrOrderNotFound) {
		s.renderError(w, r, http.StatusNotFound)
		return
	}

	s.log.Error().
		Err(err).
		Str("request_id", requestIDFrom(r.Context())).
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Msg("request failed")
	s.renderError(w, r, http.StatusInternalServerError)
}

var errorDetails = map[int]string{
	http.StatusNotFound:            "The page you were looking for does not exist.",
	http.StatusBadRequest:          "The request could not be understood.",
	http.StatusInternalServerError: "Something went wrong on our side. Please try again.",
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int) {
	data := struct{ Title, Detail string }{
		Title:  http.StatusText(status),
		Detail: errorDetails[status],
	}
	if err := s.render.Render(w, r, status, "error", data); err != nil {
		s.log.Error().Err(err).Msg("render error page")
		http.Error(w, http.StatusText(status), status)
	}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := s.render.Render(w, r, http.StatusOK, name, data); err != nil {
		s.fail(w, r, err)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("health check")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
