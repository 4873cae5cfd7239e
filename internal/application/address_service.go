package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/spotifood/spotifood-api/internal/domain/entity"
	repo "github.com/spotifood/spotifood-api/internal/domain/repository"
)

// AddressService manages a user's address book. Every operation is scoped by
// (userID, addressID); an address owned by another user surfaces as
// ErrAddressNotFound, never as a permission error.
//
// Invariant: after any successful create or update, at most one address per
// user has IsDefault set. The repository clears sibling defaults in the same
// transaction as the write.
type AddressService struct {
	Repo   repo.AddressRepository
	Logger *logrus.Logger
}

func NewAddressService(r repo.AddressRepository, logger *logrus.Logger) *AddressService {
	return &AddressService{Repo: r, Logger: logger}
}

func (s *AddressService) List(ctx context.Context, userID int64) ([]entity.Address, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *AddressService) Get(ctx context.Context, userID, addressID int64) (*entity.Address, error) {
	a, err := s.Repo.Get(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return a, nil
}

type CreateAddressInput struct {
	AddressName string
	Address     string
	Latitude    *float64
	Longitude   *float64
	IsDefault   bool
}

func (s *AddressService) Create(ctx context.Context, userID int64, in CreateAddressInput) (*entity.Address, error) {
	a := &entity.Address{
		UserID:      userID,
		AddressName: in.AddressName,
		Address:     in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		IsDefault:   in.IsDefault,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAddressInput carries a partial update; nil fields are left untouched.
type UpdateAddressInput struct {
	AddressName *string
	Address     *string
	Latitude    *float64
	Longitude   *float64
	IsDefault   *bool
}

func (s *AddressService) Update(ctx context.Context, userID, addressID int64, in UpdateAddressInput) (*entity.Address, error) {
	a, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if in.AddressName != nil {
		a.AddressName = *in.AddressName
	}
	if in.Address != nil {
		a.Address = *in.Address
	}
	if in.Latitude != nil {
		a.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		a.Longitude = in.Longitude
	}
	if in.IsDefault != nil {
		a.IsDefault = *in.IsDefault
	}
	if err := s.Repo.Update(ctx, a); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, userID, addressID int64) error {
	if err := s.Repo.Delete(ctx, userID, addressID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}
