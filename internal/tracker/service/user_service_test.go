package service

import (
	"context"
	"testing"
	"time"

	"golang-ratchet-tracker/internal/entity"
	"golang-ratchet-tracker/internal/testutil"
	"golang-ratchet-tracker/internal/tracker/dto"
	"golang-ratchet-tracker/internal/tracker/repository"
	"golang-ratchet-tracker/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

func newUserService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	svc := NewUserService(repository.NewUsersRepository(db), logger.NewNop(), testJWTSecret, time.Hour)
	return svc, db
}

func TestRegister(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc, db := newUserService(t)

		resp, err := svc.Register(context.Background(), dto.RegisterRequest{
			Email:    "Alice@Example.com",
			Password: "correct horse",
		})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)

		// Email is stored lowercased and the password never in the clear.
		var user entity.User
		require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
		assert.NotEqual(t, "correct horse", user.PasswordHash)
		assert.Equal(t, entity.SummaryFrequencyNone, user.SummaryFrequency)
		assert.Equal(t, "alice@example.com", user.NotifyEmail)

		// The token is verifiable with the signing secret and carries the user ID.
		token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		})
		require.NoError(t, err)
		sub, err := token.Claims.GetSubject()
		require.NoError(t, err)
		assert.Equal(t, "1", sub)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		svc, _ := newUserService(t)

		req := dto.RegisterRequest{Email: "bob@example.com", Password: "password123"}
		_, err := svc.Register(context.Background(), req)
		require.NoError(t, err)

		req.Email = "BOB@example.com"
		_, err = svc.Register(context.Background(), req)
		require.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("short_password", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "c@example.com", Password: "short"})
		require.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("missing_email", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.Register(context.Background(), dto.RegisterRequest{Password: "password123"})
		require.ErrorIs(t, err, ErrEmailRequired)
	})
}

func TestLogin(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "dana@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "Dana@Example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "dana@example.com",
			Password: "password124",
		})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPreferences(t *testing.T) {
	t.Run("update_and_get", func(t *testing.T) {
		svc, db := newUserService(t)
		user := testutil.CreateTestUser(t, db)

		resp, err := svc.UpdatePreferences(context.Background(), user.ID, dto.PreferencesRequest{
			NotifyEmail:      "alerts@example.com",
			SummaryFrequency: "daily",
			TelegramChatID:   42,
		})
		require.NoError(t, err)
		assert.Equal(t, "daily", resp.SummaryFrequency)

		got, err := svc.GetPreferences(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alerts@example.com", got.NotifyEmail)
		assert.Equal(t, "daily", got.SummaryFrequency)
		assert.Equal(t, int64(42), got.TelegramChatID)
	})

	t.Run("invalid_frequency", func(t *testing.T) {
		svc, db := newUserService(t)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdatePreferences(context.Background(), user.ID, dto.PreferencesRequest{
			SummaryFrequency: "hourly",
		})
		require.ErrorIs(t, err, ErrInvalidFrequency)
	})

	t.Run("unknown_user", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.GetPreferences(context.Background(), 9999)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}
