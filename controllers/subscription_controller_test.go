package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

func setupCheckoutTest(t *testing.T) (*gorm.DB, models.User, models.SubscriptionPackage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	require.NoError(t, db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_subscriptions_user_slug_active
		ON subscriptions (user_id, package_slug)
		WHERE status = 'active' AND deleted_at IS NULL
	`).Error)
	config.DB = db

	user := models.User{Username: "gamer42", Email: "gamer42@example.com", Password: "x", IsVerified: true}
	require.NoError(t, db.Create(&user).Error)

	pkg := models.SubscriptionPackage{
		Name:            "Game Pass Ultimate",
		Slug:            "game-pass-ultimate",
		Category:        models.CategoryXbox,
		BasePrice:       29.99,
		Period:          "monthly",
		DiscountPercent: 15,
		IsActive:        true,
		Addons: []models.PackageAddon{
			{Key: "cloud_saves", Name: "Cloud Saves", Price: 2.99},
			{Key: "coaching", Name: "Pro Coaching", Price: 9.99},
		},
	}
	require.NoError(t, db.Create(&pkg).Error)

	return db, user, pkg
}

func TestCreateSubscriptionPricing(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	code := models.DiscountCode{
		Code: "WELCOME10", DiscountPercent: 10,
		ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: true,
	}
	require.NoError(t, db.Create(&code).Error)

	// 29.99 -15% = 25.49, -10% code = 22.94
	sub, err := createSubscriptionTx(db, &user, &pkg, nil, "WELCOME10", "")
	require.NoError(t, err)
	assert.Equal(t, 22.94, sub.PricePerPeriod)
	assert.Equal(t, "WELCOME10", sub.DiscountCode)
	assert.Equal(t, 10, sub.DiscountPercent)
	assert.Equal(t, 2.55, sub.DiscountAmount)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "game-pass-ultimate", sub.PackageSlug)

	var reloaded models.DiscountCode
	require.NoError(t, db.First(&reloaded, code.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)

	var pkgReloaded models.SubscriptionPackage
	require.NoError(t, db.First(&pkgReloaded, pkg.ID).Error)
	assert.Equal(t, 1, pkgReloaded.SalesCount)
}

func TestCreateSubscriptionWithAddons(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	// (25.49 + 2.99 + 9.99) = 38.47, no code
	sub, err := createSubscriptionTx(db, &user, &pkg, []string{"cloud_saves", "coaching"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 38.47, sub.PricePerPeriod)
	require.Len(t, sub.PurchasedAddons, 2)

	var count int64
	db.Model(&models.SubscriptionAddon{}).Where("subscription_id = ?", sub.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestCreateSubscriptionUnknownAddon(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	_, err := createSubscriptionTx(db, &user, &pkg, []string{"vip_skin"}, "", "")
	require.Error(t, err)
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	var count int64
	db.Model(&models.Subscription{}).Count(&count)
	assert.Equal(t, int64(0), count, "failed checkout must not leave rows behind")
}

func TestCreateSubscriptionDuplicateActive(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	_, err := createSubscriptionTx(db, &user, &pkg, nil, "", "")
	require.NoError(t, err)

	_, err = createSubscriptionTx(db, &user, &pkg, nil, "", "")
	require.Error(t, err)
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)

	var count int64
	db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var pkgReloaded models.SubscriptionPackage
	require.NoError(t, db.First(&pkgReloaded, pkg.ID).Error)
	assert.Equal(t, 1, pkgReloaded.SalesCount, "rejected checkout must not bump sales")
}

func TestCreateSubscriptionAfterCancel(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	first, err := createSubscriptionTx(db, &user, &pkg, nil, "", "")
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, db.Model(first).Updates(map[string]interface{}{
		"status":       models.SubscriptionStatusCancelled,
		"cancelled_at": now,
	}).Error)

	second, err := createSubscriptionTx(db, &user, &pkg, nil, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateSubscriptionUsageLimit(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	limit := 1
	code := models.DiscountCode{
		Code: "ONCE", DiscountPercent: 10,
		ExpiryDate: time.Now().Add(24 * time.Hour), IsActive: true, UsageLimit: &limit,
	}
	require.NoError(t, db.Create(&code).Error)

	_, err := createSubscriptionTx(db, &user, &pkg, nil, "ONCE", "")
	require.NoError(t, err)

	other := models.User{Username: "rival", Email: "rival@example.com", Password: "x", IsVerified: true}
	require.NoError(t, db.Create(&other).Error)

	_, err = createSubscriptionTx(db, &other, &pkg, nil, "ONCE", "")
	require.Error(t, err)
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "limit")
}

func authRouter(user models.User) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user", user)
	})
	return r
}

func TestCancelSubscriptionHandler(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	sub, err := createSubscriptionTx(db, &user, &pkg, nil, "", "")
	require.NoError(t, err)

	r := authRouter(user)
	r.POST("/subscriptions/:id/cancel", CancelSubscription)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/subscriptions/%d/cancel", sub.ID), nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.Subscription
	require.NoError(t, db.First(&reloaded, sub.ID).Error)
	assert.Equal(t, models.SubscriptionStatusCancelled, reloaded.Status)
	require.NotNil(t, reloaded.CancelledAt)

	// cancelled is terminal
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/subscriptions/%d/cancel", sub.ID), nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelSubscriptionWrongUser(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	sub, err := createSubscriptionTx(db, &user, &pkg, nil, "", "")
	require.NoError(t, err)

	other := models.User{Username: "rival", Email: "rival@example.com", Password: "x"}
	require.NoError(t, db.Create(&other).Error)

	r := authRouter(other)
	r.POST("/subscriptions/:id/cancel", CancelSubscription)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/subscriptions/%d/cancel", sub.ID), nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpgradeAddonsHandler(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	sub, err := createSubscriptionTx(db, &user, &pkg, []string{"cloud_saves"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 28.48, sub.PricePerPeriod) // 25.49 + 2.99

	r := authRouter(user)
	r.POST("/subscriptions/upgrade", UpgradeAddons)

	// cloud_saves is already owned, only coaching may be charged
	body, _ := json.Marshal(UpgradeAddonsRequest{
		SubscriptionID: sub.ID,
		Addons:         []string{"cloud_saves", "coaching"},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/subscriptions/upgrade", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.Subscription
	require.NoError(t, db.Preload("PurchasedAddons").First(&reloaded, sub.ID).Error)
	assert.Equal(t, 38.47, reloaded.PricePerPeriod) // +9.99, cloud_saves not re-charged
	assert.Len(t, reloaded.PurchasedAddons, 2)

	// a second identical upgrade has nothing left to add
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/subscriptions/upgrade", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, db.Preload("PurchasedAddons").First(&reloaded, sub.ID).Error)
	assert.Equal(t, 38.47, reloaded.PricePerPeriod)
	assert.Len(t, reloaded.PurchasedAddons, 2)
}

func TestUpgradeAddonsCancelledSubscription(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	sub, err := createSubscriptionTx(db, &user, &pkg, nil, "", "")
	require.NoError(t, err)
	require.NoError(t, db.Model(sub).UpdateColumn("status", models.SubscriptionStatusCancelled).Error)

	r := authRouter(user)
	r.POST("/subscriptions/upgrade", UpgradeAddons)

	body, _ := json.Marshal(UpgradeAddonsRequest{SubscriptionID: sub.ID, Addons: []string{"coaching"}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/subscriptions/upgrade", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
