package web

import (
	"errors"
	"net/http"

	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/forms"
)

type loginPage struct {
	Next   string
	Email  string
	Errors []forms.FieldError
}

type signupPage struct {
	Email  string
	Name   string
	Errors []forms.FieldError
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, "login", loginPage{Next: auth.SafeNext(r.URL.Query().Get("next"))})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}
	next := auth.SafeNext(r.PostForm.Get("next"))

	form := forms.ValidateLogin(r.PostForm)
	if !form.Valid() {
		s.page(w, r, "login", loginPage{Next: next, Email: form.Value.Email, Errors: form.Errors})
		return
	}

	_, err := s.auth.Login(r.Context(), w, form.Value.Email, form.Value.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.page(w, r, "login", loginPage{
			Next:   next,
			Email:  form.Value.Email,
			Errors: []forms.FieldError{{Field: "email", Message: "Invalid email or password."}},
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, next, http.StatusFound)
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, "signup", signupPage{})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}

	form := forms.ValidateSignup(r.PostForm)
	data := signupPage{Email: form.Value.Email, Name: form.Value.Name, Errors: form.Errors}
	if !form.Valid() {
		s.page(w, r, "signup", data)
		return
	}

	_, err := s.auth.Signup(r.Context(), w, form.Value.Email, form.Value.Name, form.Value.Password)
	if errors.Is(err, database.ErrEmailTaken) {
		data.Errors = []forms.FieldError{{Field: "email", Message: "A user with that email already exists."}}
		s.page(w, r, "signup", data)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), w, r); err != nil {
		s.log.Warn().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("logout")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
