package forms

import (
	"net/url"
	"strings"
)

type Checkout struct {
	Address             string `validate:"required,max=100"`
	Address2            string `validate:"max=100"`
	Country             string `validate:"required,iso3166_1_alpha2"`
	Zip                 string `validate:"required,max=20"`
	SameShippingAddress bool
	SaveInfo            bool
	PaymentOption       string `validate:"required,oneof=D P"`
}

var checkoutLabels = map[string]string{
	"Address":       "address",
	"Address2":      "address_2",
	"Country":       "country",
	"Zip":           "zip",
	"PaymentOption": "payment_option",
}

func ValidateCheckout(values url.Values) Result[Checkout] {
	return check(Checkout{
		Address:             field(values, "address"),
		Address2:            field(values, "address_2"),
		Country:             strings.ToUpper(field(values, "country")),
		Zip:                 field(values, "zip"),
		SameShippingAddress: checkbox(values, "same_shipping_address"),
		SaveInfo:            checkbox(values, "save_info"),
		PaymentOption:       field(values, "payment_option"),
	}, checkoutLabels)
}

type Coupon struct {
	Code string `validate:"required,max=15"`
}

func ValidateCoupon(values url.Values) Result[Coupon] {
	return check(Coupon{Code: field(values, "code")}, map[string]string{"Code": "code"})
}
