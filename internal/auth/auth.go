// Package auth resolves the session cookie to a user and guards routes that
// need one.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

type Store interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*models.Session, error)
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type ctxKey struct{}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKey{}).(*models.User)
	return user
}

const LoginPath = "/accounts/login"

type Authenticator struct {
	store  Store
	cookie config.SessionConfig
	log    zerolog.Logger
}

func NewAuthenticator(store Store, cfg config.SessionConfig, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		store:  store,
		cookie: cfg,
		log:    logger.With().Str("component", "auth").Logger(),
	}
}

// Middleware attaches the session's user to the request context. Missing or
// stale sessions leave the request anonymous.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(a.cookie.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.resolve(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, database.ErrSessionNotFound) && !errors.Is(err, database.ErrUserNotFound) {
				a.log.Error().Err(err).Msg("resolve session")
			}
			a.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (a *Authenticator) resolve(ctx context.Context, token string) (*models.User, error) {
	session, err := a.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return a.store.GetUser(ctx, session.UserID)
}

// RequireUser sends anonymous requests to the login page, remembering where
// they were headed.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) Signup(ctx context.Context, w http.ResponseWriter, email, name, password string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := a.store.CreateUser(ctx, email, name, hash)
	if err != nil {
		return nil, err
	}

	if err := a.startSession(ctx, w, user); err != nil {
		return nil, err
	}

	a.log.Info().Int64("user_id", user.ID).Msg("user signed up")
	return user, nil
}

func (a *Authenticator) Login(ctx context.Context, w http.ResponseWriter, email, password string) (*models.User, error) {
	user, err := a.store.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	if err := a.startSession(ctx, w, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Authenticator) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer a.clearCookie(w)

	cookie, err := r.Cookie(a.cookie.CookieName)
	if err != nil {
		return nil
	}
	return a.store.DeleteSession(ctx, cookie.Value)
}

func (a *Authenticator) startSession(ctx context.Context, w http.ResponseWriter, user *models.User) error {
	session, err := a.store.CreateSession(ctx, user.ID, a.cookie.TTL)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *Authenticator) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
	})
}

// SafeNext keeps post-login redirects on this site. Paths carrying control
// characters are refused.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.IndexFunc(next, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return "/"
	}
	return next
}
