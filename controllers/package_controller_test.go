package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
)

func setupCatalogTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	config.DB = db

	packages := []models.SubscriptionPackage{
		{Name: "Game Pass Ultimate", Slug: "game-pass-ultimate", Category: models.CategoryXbox, BasePrice: 29.99, DiscountPercent: 15, IsActive: true, SalesCount: 50},
		{Name: "EA Play", Slug: "ea-play", Category: models.CategoryPC, BasePrice: 4.99, IsActive: true, SalesCount: 120},
		{Name: "Winter Mega Deal", Slug: "winter-mega-deal", Category: models.CategoryStreaming, BasePrice: 9.99, DiscountLabel: "50% OFF", IsSeasonalOffer: true, IsActive: true, SalesCount: 5},
		{Name: "Hidden", Slug: "hidden", Category: models.CategoryPC, BasePrice: 1.00, IsActive: false},
	}
	require.NoError(t, db.Create(&packages).Error)
	return db
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pagedEnvelope struct {
	Status string `json:"status"`
	Data   []struct {
		Package models.SubscriptionPackage `json:"package"`
	} `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func TestGetPackagesFiltersAndSorts(t *testing.T) {
	setupCatalogTest(t)

	r := gin.New()
	r.GET("/packages", GetPackages)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp pagedEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Pagination.Total, "inactive packages stay hidden")
	require.NotEmpty(t, resp.Data)
	assert.Equal(t, "ea-play", resp.Data[0].Package.Slug, "default sort is by popularity")

	// category filter
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages?category=Xbox", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp = pagedEnvelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "game-pass-ultimate", resp.Data[0].Package.Slug)

	// invalid category
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages?category=Atari", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// seasonal filter
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages?seasonal=true", nil))
	resp = pagedEnvelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "winter-mega-deal", resp.Data[0].Package.Slug)
}

func TestGetPackageBySlugIncludesPricing(t *testing.T) {
	setupCatalogTest(t)

	r := gin.New()
	r.GET("/packages/:slug", GetPackageBySlug)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages/game-pass-ultimate", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var data struct {
		Pricing struct {
			BasePrice       float64 `json:"base_price"`
			DiscountPercent int     `json:"discount_percent"`
			DiscountAmount  float64 `json:"discount_amount"`
			FinalPrice      float64 `json:"final_price"`
		} `json:"pricing"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 29.99, data.Pricing.BasePrice)
	assert.Equal(t, 15, data.Pricing.DiscountPercent)
	assert.Equal(t, 4.50, data.Pricing.DiscountAmount)
	assert.Equal(t, 25.49, data.Pricing.FinalPrice)
}

func TestGetPackageBySlugLabelOnlyDiscount(t *testing.T) {
	setupCatalogTest(t)

	r := gin.New()
	r.GET("/packages/:slug", GetPackageBySlug)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages/winter-mega-deal", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var data struct {
		Pricing struct {
			DiscountPercent int     `json:"discount_percent"`
			FinalPrice      float64 `json:"final_price"`
		} `json:"pricing"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 50, data.Pricing.DiscountPercent, "percent parsed from the display label")
	assert.Equal(t, 5.00, data.Pricing.FinalPrice)
}

func TestGetPackageBySlugNotFound(t *testing.T) {
	setupCatalogTest(t)

	r := gin.New()
	r.GET("/packages/:slug", GetPackageBySlug)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages/hidden", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "inactive packages are invisible")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/packages/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
