package repository

import (
	"context"

	"github.com/spotifood/spotifood-api/internal/domain/entity"
)

// AddressRepository defines persistence for a user's address book.
//
// Create and Update must keep the at-most-one-default invariant: when the
// given address has IsDefault set, the default flag on every other address
// of the same user is cleared in the same transaction.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]entity.Address, error)
	Get(ctx context.Context, userID, addressID int64) (*entity.Address, error)
	Create(ctx context.Context, a *entity.Address) error
	Update(ctx context.Context, a *entity.Address) error
	Delete(ctx context.Context, userID, addressID int64) error
}
