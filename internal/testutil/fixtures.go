package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang-ratchet-tracker/internal/entity"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()

	email := fmt.Sprintf("user%d@test.com", nextID())
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &entity.User{
		Email:            email,
		PasswordHash:     string(hash),
		NotifyEmail:      email,
		SummaryFrequency: entity.SummaryFrequencyNone,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPosition creates a doubled position with sane defaults: entry 50,
// current 100, 5% typical volatility at 2x (threshold 90).
func CreateTestPosition(t *testing.T, db *gorm.DB, userID uint, symbol string) *entity.Position {
	t.Helper()

	position := &entity.Position{
		UserID:               userID,
		Symbol:               symbol,
		CompanyName:          symbol,
		EntryPrice:           50,
		CurrentPrice:         100,
		HighestClose:         100,
		HighestCloseDate:     time.Now(),
		TypicalVolatility:    5,
		VolatilityMultiplier: 2,
		Version:              1,
	}
	if err := db.Create(position).Error; err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return position
}
