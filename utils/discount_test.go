package utils

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/proplayhub/backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DiscountCode{}, &models.SubscriptionPackage{}, &models.PackageAddon{}))
	return db
}

func TestValidateDiscountCode(t *testing.T) {
	db := newTestDB(t)
	pkg := &models.SubscriptionPackage{Name: "Game Pass Ultimate", Slug: "game-pass-ultimate", Category: models.CategoryXbox}

	limit := 1
	codes := []models.DiscountCode{
		{Code: "WELCOME10", DiscountPercent: 10, ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: true},
		{Code: "STALE", DiscountPercent: 10, ExpiryDate: time.Now().Add(-time.Hour), IsActive: true},
		{Code: "DISABLED", DiscountPercent: 10, ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: false},
		{Code: "USEDUP", DiscountPercent: 10, ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: true, UsageLimit: &limit, UsedCount: 1},
		{Code: "PCONLY", DiscountPercent: 10, ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: true, ApplicableCategories: []string{models.CategoryPC}},
		{Code: "OTHERPKG", DiscountPercent: 10, ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: true, ApplicablePackages: []string{"ea-play"}},
	}
	require.NoError(t, db.Create(&codes).Error)

	t.Run("valid code normalizes case", func(t *testing.T) {
		code, appErr := ValidateDiscountCode(db, "  welcome10 ", pkg)
		require.Nil(t, appErr)
		assert.Equal(t, "WELCOME10", code.Code)
		assert.Equal(t, 10, code.DiscountPercent)
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		_, appErr := ValidateDiscountCode(db, "NOPE", pkg)
		require.NotNil(t, appErr)
		assert.Equal(t, 404, appErr.Status)
	})

	t.Run("expired code is rejected even when still flagged active", func(t *testing.T) {
		_, appErr := ValidateDiscountCode(db, "STALE", pkg)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.Status)
		assert.Contains(t, appErr.Message, "expired")
	})

	t.Run("inactive code is rejected", func(t *testing.T) {
		_, appErr := ValidateDiscountCode(db, "DISABLED", pkg)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.Status)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		_, appErr := ValidateDiscountCode(db, "USEDUP", pkg)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.Status)
		assert.Contains(t, appErr.Message, "limit")
	})

	t.Run("category restriction", func(t *testing.T) {
		_, appErr := ValidateDiscountCode(db, "PCONLY", pkg)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.Status)

		pcPkg := &models.SubscriptionPackage{Slug: "steam-deck-club", Category: models.CategoryPC}
		code, appErr := ValidateDiscountCode(db, "PCONLY", pcPkg)
		require.Nil(t, appErr)
		assert.Equal(t, "PCONLY", code.Code)
	})

	t.Run("package restriction", func(t *testing.T) {
		_, appErr := ValidateDiscountCode(db, "OTHERPKG", pkg)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.Status)
	})

	t.Run("empty code", func(t *testing.T) {
		_, appErr := ValidateDiscountCode(db, "   ", pkg)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.Status)
	})
}
