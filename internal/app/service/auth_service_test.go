package service

import (
	"testing"
	"time"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/creamloft/creamloft-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{
			name:     "Valid registration",
			email:    "test@example.com",
			password: "password123",
			userName: "Test User",
			wantErr:  nil,
		},
		{
			name:     "Duplicate email",
			email:    "test@example.com",
			password: "password456",
			userName: "Another User",
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.email, tt.password, tt.userName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, tt.userName, user.Name)
			assert.Equal(t, model.RoleUser, user.Role)
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("login@example.com", "password123", "Login User")
	require.NoError(t, err)

	t.Run("Valid credentials", func(t *testing.T) {
		user, tokens, err := authService.Login("login@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "login@example.com", user.Email)
		assert.NotEmpty(t, tokens.AccessToken)

		claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, string(model.RoleUser), claims.Role)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, _, err := authService.Login("login@example.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, _, err := authService.Login("nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService := setupAuthServiceTest(t)

	registered, _, err := authService.Register("fetch@example.com", "password123", "Fetch User")
	require.NoError(t, err)

	user, err := authService.GetUserByID(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "fetch@example.com", user.Email)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	registered, _, err := authService.Register("profile@example.com", "password123", "Old Name")
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(registered.ID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	// Empty name leaves the profile untouched
	unchanged, err := authService.UpdateProfile(registered.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "New Name", unchanged.Name)
}

func TestAuthService_RefreshToken(t *testing.T) {
	authService := setupAuthServiceTest(t)

	registered, tokens, err := authService.Register("refresh@example.com", "password123", "Refresh User")
	require.NoError(t, err)

	t.Run("Valid refresh token", func(t *testing.T) {
		refreshed, err := authService.RefreshToken(tokens.RefreshToken)
		require.NoError(t, err)

		claims, err := util.ValidateToken(refreshed.AccessToken, "test-jwt-secret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, "access", claims.Subject)
	})

	t.Run("Access token is rejected", func(t *testing.T) {
		_, err := authService.RefreshToken(tokens.AccessToken)
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	t.Run("Garbage token is rejected", func(t *testing.T) {
		_, err := authService.RefreshToken("not.a.token")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})
}

func TestAuthService_RevokeToken(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("revoke@example.com", "password123", "Revoke User")
	require.NoError(t, err)

	// Succeeds without a Redis connection, revocation degrades to a no-op
	assert.NoError(t, authService.RevokeToken(tokens.RefreshToken))

	// Invalid tokens have nothing to revoke
	assert.NoError(t, authService.RevokeToken("not.a.token"))
}
