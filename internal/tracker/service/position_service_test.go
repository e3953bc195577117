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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPositionService(t *testing.T) (PositionService, *gorm.DB, *entity.User) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	svc := NewPositionService(
		repository.NewPositionsRepository(db),
		repository.NewAlertsRepository(db),
		logger.NewNop(),
	)
	user := testutil.CreateTestUser(t, db)
	return svc, db, user
}

func validCreateRequest() dto.CreatePositionRequest {
	return dto.CreatePositionRequest{
		Symbol:               "aapl",
		EntryPrice:           50,
		CurrentPrice:         100,
		TypicalVolatility:    5,
		VolatilityMultiplier: 2,
	}
}

func TestCreatePosition(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc, _, user := newPositionService(t)

		position, err := svc.Create(context.Background(), user.ID, validCreateRequest())
		require.NoError(t, err)

		assert.Equal(t, "AAPL", position.Symbol)
		assert.Equal(t, "AAPL", position.CompanyName)
		assert.Equal(t, 100.0, position.HighestClose)
		assert.InDelta(t, 90.0, position.ThresholdPrice, 1e-9)
		assert.False(t, position.Triggered)
	})

	t.Run("not_doubled", func(t *testing.T) {
		svc, _, user := newPositionService(t)

		req := validCreateRequest()
		req.CurrentPrice = 99
		_, err := svc.Create(context.Background(), user.ID, req)
		require.ErrorIs(t, err, ErrNotDoubled)

		// Exactly 2x passes the gate.
		req.CurrentPrice = 100
		_, err = svc.Create(context.Background(), user.ID, req)
		require.NoError(t, err)
	})

	t.Run("decline_too_large", func(t *testing.T) {
		svc, _, user := newPositionService(t)

		req := validCreateRequest()
		req.TypicalVolatility = 50
		req.VolatilityMultiplier = 2
		_, err := svc.Create(context.Background(), user.ID, req)
		require.ErrorIs(t, err, ErrDeclineTooLarge)
	})

	t.Run("duplicate_symbol", func(t *testing.T) {
		svc, _, user := newPositionService(t)

		_, err := svc.Create(context.Background(), user.ID, validCreateRequest())
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), user.ID, validCreateRequest())
		require.ErrorIs(t, err, ErrSymbolExists)
	})

	t.Run("missing_symbol", func(t *testing.T) {
		svc, _, user := newPositionService(t)

		req := validCreateRequest()
		req.Symbol = "  "
		_, err := svc.Create(context.Background(), user.ID, req)
		require.ErrorIs(t, err, ErrSymbolRequired)
	})

	t.Run("invalid_prices", func(t *testing.T) {
		svc, _, user := newPositionService(t)

		req := validCreateRequest()
		req.EntryPrice = 0
		_, err := svc.Create(context.Background(), user.ID, req)
		require.ErrorIs(t, err, ErrInvalidPrice)
	})
}

func TestSetPrice(t *testing.T) {
	t.Run("manual_edit_triggers_alert", func(t *testing.T) {
		svc, db, user := newPositionService(t)
		position := testutil.CreateTestPosition(t, db, user.ID, "MSFT")

		// Threshold is 90; 85 breaches it.
		resp, err := svc.SetPrice(context.Background(), user.ID, position.ID, 85)
		require.NoError(t, err)
		assert.True(t, resp.Triggered)
		assert.Equal(t, 85.0, resp.CurrentPrice)
		assert.Equal(t, 100.0, resp.HighestClose)

		var alerts []entity.Alert
		require.NoError(t, db.Where("user_id = ?", user.ID).Find(&alerts).Error)
		require.Len(t, alerts, 1)
		assert.Equal(t, "MSFT", alerts[0].Symbol)

		// A further fall never duplicates the alert.
		_, err = svc.SetPrice(context.Background(), user.ID, position.ID, 80)
		require.NoError(t, err)
		require.NoError(t, db.Where("user_id = ?", user.ID).Find(&alerts).Error)
		assert.Len(t, alerts, 1)
	})

	t.Run("new_high_ratchets_threshold", func(t *testing.T) {
		svc, db, user := newPositionService(t)
		position := testutil.CreateTestPosition(t, db, user.ID, "MSFT")

		resp, err := svc.SetPrice(context.Background(), user.ID, position.ID, 120)
		require.NoError(t, err)
		assert.Equal(t, 120.0, resp.HighestClose)
		assert.InDelta(t, 108.0, resp.ThresholdPrice, 1e-9)
	})

	t.Run("rejects_non_positive", func(t *testing.T) {
		svc, db, user := newPositionService(t)
		position := testutil.CreateTestPosition(t, db, user.ID, "MSFT")

		_, err := svc.SetPrice(context.Background(), user.ID, position.ID, 0)
		require.ErrorIs(t, err, ErrInvalidPrice)

		var stored entity.Position
		require.NoError(t, db.First(&stored, position.ID).Error)
		assert.Equal(t, 100.0, stored.CurrentPrice)
	})

	t.Run("not_found", func(t *testing.T) {
		svc, _, user := newPositionService(t)

		_, err := svc.SetPrice(context.Background(), user.ID, 9999, 50)
		require.ErrorIs(t, err, ErrPositionNotFound)
	})

	t.Run("isolated_by_user", func(t *testing.T) {
		svc, db, user := newPositionService(t)
		other := testutil.CreateTestUser(t, db)
		position := testutil.CreateTestPosition(t, db, other.ID, "MSFT")

		_, err := svc.SetPrice(context.Background(), user.ID, position.ID, 95)
		require.ErrorIs(t, err, ErrPositionNotFound)
	})
}

func TestDeletePosition(t *testing.T) {
	svc, db, user := newPositionService(t)
	position := testutil.CreateTestPosition(t, db, user.ID, "NVDA")

	require.NoError(t, svc.Delete(context.Background(), user.ID, position.ID))

	positions, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, positions)

	err = svc.Delete(context.Background(), user.ID, position.ID)
	require.ErrorIs(t, err, ErrPositionNotFound)
}

func TestListPositions(t *testing.T) {
	svc, db, user := newPositionService(t)
	testutil.CreateTestPosition(t, db, user.ID, "NVDA")
	testutil.CreateTestPosition(t, db, user.ID, "AAPL")

	// Another user's holdings never leak into the listing.
	other := testutil.CreateTestUser(t, db)
	testutil.CreateTestPosition(t, db, other.ID, "TSLA")

	positions, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "AAPL", positions[0].Symbol)
	assert.Equal(t, "NVDA", positions[1].Symbol)
	assert.InDelta(t, 90.0, positions[0].ThresholdPrice, 1e-9)
	assert.InDelta(t, 10.0, positions[0].DistanceToThreshold, 1e-9)
	assert.WithinDuration(t, time.Now(), positions[0].DateAdded, time.Minute)
}

func TestSuggestVolatilityEndpointShape(t *testing.T) {
	svc, _, _ := newPositionService(t)

	resp := svc.SuggestVolatility([]float64{100, 95, 90, 96, 101})
	assert.True(t, resp.Found)
	assert.InDelta(t, 10.0, resp.TypicalVolatility, 1e-9)

	resp = svc.SuggestVolatility(nil)
	assert.False(t, resp.Found)
}
