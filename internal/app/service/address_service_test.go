package service

import (
	"testing"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAddressServiceTest(t *testing.T) (AddressService, *model.User, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	addressRepo := repository.NewAddressRepository(testDB)
	addressService := NewAddressService(addressRepo)

	user := &model.User{Email: "addr@example.com", PasswordHash: "hash", Name: "Addr Tester", Role: model.RoleUser}
	testDB.Create(user)

	return addressService, user, testDB
}

func TestAddressService_CreateAddress_FirstIsDefault(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	first := &model.Address{Recipient: "Addr Tester", Street: "12 MG Road", City: "Bengaluru"}
	require.NoError(t, addressService.CreateAddress(user.ID, first))
	assert.True(t, first.IsDefault)

	second := &model.Address{Recipient: "Addr Tester", Street: "4 Brigade Road", City: "Bengaluru"}
	require.NoError(t, addressService.CreateAddress(user.ID, second))
	assert.False(t, second.IsDefault)
}

func TestAddressService_CreateAddress_Validation(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	err := addressService.CreateAddress(user.ID, &model.Address{Recipient: "No Street"})
	assert.ErrorIs(t, err, ErrInvalidAddressData)
}

func TestAddressService_SetDefault_SingleDefaultInvariant(t *testing.T) {
	addressService, user, testDB := setupAddressServiceTest(t)

	first := &model.Address{Recipient: "A", Street: "12 MG Road", City: "Bengaluru"}
	require.NoError(t, addressService.CreateAddress(user.ID, first))
	second := &model.Address{Recipient: "B", Street: "4 Brigade Road", City: "Bengaluru"}
	require.NoError(t, addressService.CreateAddress(user.ID, second))

	require.NoError(t, addressService.SetDefaultAddress(user.ID, second.ID))

	var defaults []model.Address
	require.NoError(t, testDB.Where("user_id = ? AND is_default = ?", user.ID, true).Find(&defaults).Error)
	require.Len(t, defaults, 1)
	assert.Equal(t, second.ID, defaults[0].ID)
}

func TestAddressService_SetDefault_NotFound(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	err := addressService.SetDefaultAddress(user.ID, 9999)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestAddressService_UpdateAddress_OwnershipEnforced(t *testing.T) {
	addressService, user, testDB := setupAddressServiceTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleUser}
	testDB.Create(other)

	address := &model.Address{Recipient: "A", Street: "12 MG Road", City: "Bengaluru"}
	require.NoError(t, addressService.CreateAddress(user.ID, address))

	err := addressService.UpdateAddress(other.ID, address.ID, &model.Address{
		Recipient: "Hijacked", Street: "1 Elsewhere", City: "Mumbai",
	})
	assert.ErrorIs(t, err, ErrAddressAccessDenied)
}

func TestAddressService_DeleteAddress(t *testing.T) {
	addressService, user, _ := setupAddressServiceTest(t)

	address := &model.Address{Recipient: "A", Street: "12 MG Road", City: "Bengaluru"}
	require.NoError(t, addressService.CreateAddress(user.ID, address))

	require.NoError(t, addressService.DeleteAddress(user.ID, address.ID))

	addresses, err := addressService.GetUserAddresses(user.ID)
	require.NoError(t, err)
	assert.Len(t, addresses, 0)
}
