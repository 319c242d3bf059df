package service

import (
	"errors"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound     = errors.New("address not found")
	ErrAddressAccessDenied = errors.New("unauthorized access to address")
	ErrInvalidAddressData  = errors.New("invalid address data")
)

type AddressService interface {
	GetUserAddresses(userID uint) ([]model.Address, error)
	CreateAddress(userID uint, address *model.Address) error
	UpdateAddress(userID, addressID uint, updated *model.Address) error
	DeleteAddress(userID, addressID uint) error
	SetDefaultAddress(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) GetUserAddresses(userID uint) ([]model.Address, error) {
	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return addresses, nil
}

func (s *addressService) CreateAddress(userID uint, address *model.Address) error {
	logger.Info("Creating address", map[string]interface{}{
		"user_id": userID,
	})

	if address.Recipient == "" || address.Street == "" || address.City == "" {
		return ErrInvalidAddressData
	}

	address.UserID = userID

	// First address becomes the default automatically
	existing, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to check existing addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	if len(existing) == 0 {
		address.IsDefault = true
	}

	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	if address.IsDefault && len(existing) > 0 {
		if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
			logger.Error("Failed to set new address as default", err, map[string]interface{}{
				"address_id": address.ID,
			})
			return err
		}
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    userID,
	})
	return nil
}

func (s *addressService) UpdateAddress(userID, addressID uint, updated *model.Address) error {
	address, err := s.findOwnedAddress(userID, addressID)
	if err != nil {
		return err
	}

	address.Recipient = updated.Recipient
	address.Phone = updated.Phone
	address.Street = updated.Street
	address.City = updated.City
	address.State = updated.State
	address.PostalCode = updated.PostalCode
	if updated.Country != "" {
		address.Country = updated.Country
	}

	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return err
	}

	if updated.IsDefault && !address.IsDefault {
		return s.SetDefaultAddress(userID, addressID)
	}
	return nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	address, err := s.findOwnedAddress(userID, addressID)
	if err != nil {
		return err
	}

	if err := s.addressRepo.Delete(address.ID); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

// SetDefaultAddress makes the address the user's single default.
func (s *addressService) SetDefaultAddress(userID, addressID uint) error {
	if err := s.addressRepo.SetDefault(userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		logger.Error("Failed to set default address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}
	return nil
}

func (s *addressService) findOwnedAddress(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Address not found", map[string]interface{}{
				"address_id": addressID,
			})
			return nil, ErrAddressNotFound
		}
		logger.Error("Failed to fetch address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, err
	}

	if address.UserID != userID {
		logger.Warn("Address access denied: ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"owner_id":   address.UserID,
		})
		return nil, ErrAddressAccessDenied
	}
	return address, nil
}
