package forms

import (
	"net/url"
	"strings"
)

type Login struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func ValidateLogin(values url.Values) Result[Login] {
	return check(Login{
		Email:    strings.ToLower(field(values, "email")),
		Password: values.Get("password"),
	}, map[string]string{"Email": "email", "Password": "password"})
}

type Signup struct {
	Email    string `validate:"required,email,max=255"`
	Name     string `validate:"required,max=255"`
	Password string `validate:"required,min=8,max=72"`
}

func ValidateSignup(values url.Values) Result[Signup] {
	return check(Signup{
		Email:    strings.ToLower(field(values, "email")),
		Name:     field(values, "name"),
		Password: values.Get("password"),
	}, map[string]string{"Email": "email", "Name": "name", "Password": "password"})
}
