package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/config"
	"github.com/proplayhub/backend/models"
	"github.com/proplayhub/backend/utils"
)

// AddToCartRequest represents the add-to-cart request body
type AddToCartRequest struct {
	PackageSlug string   `json:"package_slug" binding:"required"`
	Addons      []string `json:"addons"`
}

// AddToCart puts a package in the user's cart. One row per package; adding
// the same package twice is a conflict, not a quantity bump.
func AddToCart(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.PackageSlug))

	var pkg models.SubscriptionPackage
	if err := config.DB.Preload("Addons").Where("slug = ? AND is_active = ?", slug, true).First(&pkg).Error; err != nil {
		utils.NotFound(c, "Package not found")
		return
	}

	// validate addon keys up front so the cart never holds unknown keys
	if _, _, appErr := utils.ResolveAddons(&pkg, req.Addons); appErr != nil {
		utils.RespondWithError(c, appErr)
		return
	}

	var existing int64
	config.DB.Model(&models.CartItem{}).Where("user_id = ? AND package_id = ?", user.ID, pkg.ID).Count(&existing)
	if existing > 0 {
		utils.Conflict(c, "Package is already in your cart", nil)
		return
	}

	item := models.CartItem{
		UserID:         user.ID,
		PackageID:      pkg.ID,
		SelectedAddons: req.Addons,
	}
	if err := config.DB.Create(&item).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			utils.Conflict(c, "Package is already in your cart", nil)
			return
		}
		utils.LogError("Failed to add to cart for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to add to cart", nil)
		return
	}
	item.Package = pkg

	utils.LogInfo("User %d added package %s to cart", user.ID, pkg.Slug)
	utils.Created(c, "Added to cart", gin.H{"item": cartItemWithPricing(&item)})
}

// GetCart returns the cart with a per-item and overall price breakdown
func GetCart(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var items []models.CartItem
	if err := config.DB.Preload("Package").Preload("Package.Addons").
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		utils.LogError("Failed to fetch cart for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch cart", nil)
		return
	}

	var totalCents int64
	priced := make([]gin.H, 0, len(items))
	for i := range items {
		entry := cartItemWithPricing(&items[i])
		priced = append(priced, entry)
		totalCents += utils.Cents(entry["total"].(float64))
	}

	utils.Success(c, "Cart retrieved successfully", gin.H{
		"items": priced,
		"total": utils.Amount(totalCents),
	})
}

// UpdateCartItemRequest represents the cart item update body
type UpdateCartItemRequest struct {
	Addons []string `json:"addons" binding:"required"`
}

// UpdateCartItem replaces the selected addon keys on a cart item
func UpdateCartItem(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid cart item ID", nil)
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var item models.CartItem
	if err := config.DB.Preload("Package").Preload("Package.Addons").
		Where("id = ? AND user_id = ?", id, user.ID).First(&item).Error; err != nil {
		utils.NotFound(c, "Cart item not found")
		return
	}

	if _, _, appErr := utils.ResolveAddons(&item.Package, req.Addons); appErr != nil {
		utils.RespondWithError(c, appErr)
		return
	}

	item.SelectedAddons = req.Addons
	if err := config.DB.Save(&item).Error; err != nil {
		utils.LogError("Failed to update cart item %d: %v", item.ID, err)
		utils.InternalServerError(c, "Failed to update cart item", nil)
		return
	}

	utils.Success(c, "Cart item updated", gin.H{"item": cartItemWithPricing(&item)})
}

// RemoveFromCart deletes a single cart item
func RemoveFromCart(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid cart item ID", nil)
		return
	}

	result := config.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.CartItem{})
	if result.Error != nil {
		utils.LogError("Failed to remove cart item %d: %v", id, result.Error)
		utils.InternalServerError(c, "Failed to remove cart item", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Cart item not found")
		return
	}

	utils.Success(c, "Removed from cart", nil)
}

// ClearCart empties the user's cart
func ClearCart(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	if err := config.DB.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		utils.LogError("Failed to clear cart for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}

	utils.Success(c, "Cart cleared", nil)
}

// cartItemWithPricing decorates a cart item with its computed totals. Addon
// keys that fell out of the catalog since the item was added are priced at
// zero and flagged so the client can surface it.
func cartItemWithPricing(item *models.CartItem) gin.H {
	preview := utils.PreviewPackagePrice(&item.Package)
	totalCents := utils.Cents(preview.FinalPrice)

	addons := make([]gin.H, 0, len(item.SelectedAddons))
	for _, key := range item.SelectedAddons {
		addon, ok := item.Package.FindAddon(key)
		if !ok {
			addons = append(addons, gin.H{"key": key, "available": false, "price": 0.0})
			continue
		}
		addons = append(addons, gin.H{"key": addon.Key, "name": addon.Name, "available": true, "price": addon.Price})
		totalCents += utils.Cents(addon.Price)
	}

	return gin.H{
		"id":      item.ID,
		"package": item.Package,
		"pricing": preview,
		"addons":  addons,
		"total":   utils.Amount(totalCents),
	}
}
