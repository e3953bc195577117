package repository

import (
	"context"
	"testing"

	"golang-ratchet-tracker/internal/entity"
	"golang-ratchet-tracker/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateChecked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	repo := NewPositionsRepository(db)
	user := testutil.CreateTestUser(t, db)
	position := testutil.CreateTestPosition(t, db, user.ID, "AAPL")

	t.Run("version_match_writes_and_bumps", func(t *testing.T) {
		position.CurrentPrice = 95
		require.NoError(t, repo.UpdateChecked(context.Background(), position))
		assert.Equal(t, int64(2), position.Version)

		var stored entity.Position
		require.NoError(t, db.First(&stored, position.ID).Error)
		assert.Equal(t, 95.0, stored.CurrentPrice)
		assert.Equal(t, int64(2), stored.Version)
	})

	t.Run("stale_version_is_rejected", func(t *testing.T) {
		// Simulate a client edit landing between our read and write.
		require.NoError(t, db.Model(&entity.Position{}).
			Where("id = ?", position.ID).
			Update("version", position.Version+1).Error)

		position.CurrentPrice = 80
		err := repo.UpdateChecked(context.Background(), position)
		require.ErrorIs(t, err, ErrStaleUpdate)

		var stored entity.Position
		require.NoError(t, db.First(&stored, position.ID).Error)
		assert.Equal(t, 95.0, stored.CurrentPrice)
	})
}

func TestGetAllOrdersByUserAndSymbol(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	repo := NewPositionsRepository(db)
	u1 := testutil.CreateTestUser(t, db)
	u2 := testutil.CreateTestUser(t, db)
	testutil.CreateTestPosition(t, db, u2.ID, "AAPL")
	testutil.CreateTestPosition(t, db, u1.ID, "NVDA")
	testutil.CreateTestPosition(t, db, u1.ID, "AAPL")

	positions, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.Equal(t, u1.ID, positions[0].UserID)
	assert.Equal(t, "AAPL", positions[0].Symbol)
	assert.Equal(t, "NVDA", positions[1].Symbol)
	assert.Equal(t, u2.ID, positions[2].UserID)
}
