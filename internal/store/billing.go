package store

import (
	"context"
	"fmt"

	"github.com/safar/storefront/internal/models"
)

func (s *Store) CreateBillingAddress(ctx context.Context, addr models.BillingAddress) (*models.BillingAddress, error) {
	created := &models.BillingAddress{}

	query := `
		INSERT INTO billing_addresses (user_id, address, address_2, country, zip, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, address, address_2, country, zip, created_at`

	err := s.q.QueryRowContext(ctx, query,
		addr.UserID, addr.Address, addr.Address2, addr.Country, addr.Zip,
	).Scan(
		&created.ID,
		&created.UserID,
		&created.Address,
		&created.Address2,
		&created.Country,
		&created.Zip,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create billing address: %w", err)
	}

	return created, nil
}
