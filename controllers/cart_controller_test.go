package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proplayhub/backend/models"
)

func postJSON(t *testing.T, body interface{}) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestAddToCartAndDuplicate(t *testing.T) {
	_, user, _ := setupCheckoutTest(t)

	r := authRouter(user)
	r.POST("/cart/add", AddToCart)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/add", postJSON(t, AddToCartRequest{PackageSlug: "game-pass-ultimate", Addons: []string{"cloud_saves"}}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// same package again is a conflict, not a quantity bump
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/cart/add", postJSON(t, AddToCartRequest{PackageSlug: "game-pass-ultimate"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddToCartUnknownAddon(t *testing.T) {
	_, user, _ := setupCheckoutTest(t)

	r := authRouter(user)
	r.POST("/cart/add", AddToCart)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/add", postJSON(t, AddToCartRequest{PackageSlug: "game-pass-ultimate", Addons: []string{"vip_skin"}}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCartTotals(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	require.NoError(t, db.Create(&models.CartItem{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		SelectedAddons: []string{"cloud_saves"},
	}).Error)

	r := authRouter(user)
	r.GET("/cart", GetCart)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var data struct {
		Items []struct {
			Total float64 `json:"total"`
		} `json:"items"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Items, 1)
	// 25.49 discounted package + 2.99 addon
	assert.Equal(t, 28.48, data.Items[0].Total)
	assert.Equal(t, 28.48, data.Total)
}

func TestRemoveAndClearCart(t *testing.T) {
	db, user, pkg := setupCheckoutTest(t)

	item := models.CartItem{UserID: user.ID, PackageID: pkg.ID}
	require.NoError(t, db.Create(&item).Error)

	r := authRouter(user)
	r.DELETE("/cart/:id", RemoveFromCart)
	r.DELETE("/cart", ClearCart)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/%d", item.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	// already gone
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/%d", item.ID), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, PackageID: pkg.ID}).Error)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
