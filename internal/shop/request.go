package shop

import (
	"net/url"

	"github.com/safar/storefront/internal/flash"
)

// Request is the per-request context every shop operation receives: who is
// acting and where user-facing messages go.
type Request struct {
	UserID   int64
	Messages *flash.Messages
}

type Route string

const (
	RouteHome         Route = "home"
	RouteProduct      Route = "product"
	RouteOrderSummary Route = "order-summary"
	RouteCheckout     Route = "checkout"
	RoutePayment      Route = "payment"
)

const (
	PaymentPathDebitCard = "debit-card"
	PaymentPathPaypal    = "paypal"
)

// Redirect names where the user is sent next. The zero value means the
// caller should render its page instead.
type Redirect struct {
	Route Route
	Arg   string
}

func redirectTo(route Route) Redirect {
	return Redirect{Route: route}
}

func (r Redirect) IsZero() bool {
	return r.Route == ""
}

func (r Redirect) Path() string {
	switch r.Route {
	case RouteProduct:
		return "/product/" + url.PathEscape(r.Arg)
	case RouteOrderSummary:
		return "/order-summary"
	case RouteCheckout:
		return "/checkout"
	case RoutePayment:
		return "/payment/" + url.PathEscape(r.Arg) + "/"
	default:
		return "/"
	}
}
