// Package shop implements the cart, checkout and payment flows on top of a
// Repository. Every operation resolves to a Redirect plus flash messages;
// only a missing catalog item is returned as an error for the caller to map
// to 404.
package shop

import (
	"time"

	"github.com/rs/zerolog"
)

type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   logger.With().Str("component", "shop").Logger(),
		now:   time.Now,
	}
}
